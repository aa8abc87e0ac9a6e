// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrNoRows is returned when the file has no data rows.
	ErrNoRows = errors.New("file is empty")
)

// Required headers, matched exactly.
var (
	DefectColumns    = []string{"defect_id", "status", "RCA"}
	ExecutionColumns = []string{"test_case_name", "status", "attachment"}
)

type record struct {
	line  int
	cells []string
}

type table struct {
	columns map[string]int
	records []record
}

func (t *table) value(rec record, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(rec.cells) {
		return ""
	}
	return rec.cells[i]
}

// ReadDefectRows reads a defect closure file (CSV or XLSX).
func ReadDefectRows(path string) ([]DefectRow, error) {
	t, err := readTable(path, DefectColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]DefectRow, 0, len(t.records))
	for _, rec := range t.records {
		rows = append(rows, DefectRow{
			Line:     rec.line,
			DefectID: t.value(rec, "defect_id"),
			Status:   t.value(rec, "status"),
			RCA:      t.value(rec, "RCA"),
		})
	}
	return rows, nil
}

// ReadExecutionRows reads a test execution file (CSV or XLSX).
func ReadExecutionRows(path string) ([]ExecutionRow, error) {
	t, err := readTable(path, ExecutionColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]ExecutionRow, 0, len(t.records))
	for _, rec := range t.records {
		rows = append(rows, ExecutionRow{
			Line:         rec.line,
			TestCaseName: t.value(rec, "test_case_name"),
			Status:       t.value(rec, "status"),
			Attachment:   t.value(rec, "attachment"),
		})
	}
	return rows, nil
}

// CleanPath undoes the decoration terminals add to dragged-in paths: surrounding
// whitespace, a leading PowerShell "& " and quotes.
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "& ")
	path = strings.Trim(path, `"`)
	return strings.Trim(path, "'")
}

// IsSpreadsheet reports whether path is read as XLSX rather than CSV.
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

func readTable(path string, required []string) (*table, error) {
	var (
		raw []record
		err error
	)
	if IsSpreadsheet(path) {
		raw, err = readSpreadsheet(path)
	} else {
		raw, err = readCSVFile(path)
	}
	if err != nil {
		return nil, err
	}
	return buildTable(raw, required)
}

func buildTable(raw []record, required []string) (*table, error) {
	if len(raw) < 2 {
		return nil, ErrNoRows
	}

	t := &table{columns: make(map[string]int, len(raw[0].cells))}
	for i, name := range raw[0].cells {
		t.columns[name] = i
	}

	var missing []string
	for _, column := range required {
		if _, ok := t.columns[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: need %s, missing %s", ErrMissingColumns,
			strings.Join(required, ","), strings.Join(missing, ","))
	}

	// Rows with empty cells stay so that planning can report them. Only
	// workbook rows with no cells at all are dropped.
	for _, rec := range raw[1:] {
		if len(rec.cells) > 0 {
			t.records = append(t.records, rec)
		}
	}
	if len(t.records) == 0 {
		return nil, ErrNoRows
	}
	return t, nil
}

func readCSVFile(path string) ([]record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readCSV(file)
}

// readCSV decodes UTF-8 CSV, dropping a leading byte order mark.
func readCSV(r io.Reader) ([]record, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	var records []record
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
	return records, nil
}

// readSpreadsheet reads the first sheet of a workbook.
func readSpreadsheet(path string) ([]record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	records := make([]record, 0, len(rows))
	for i, cells := range rows {
		records = append(records, record{line: i + 1, cells: cells})
	}
	return records, nil
}
