// SPDX-License-Identifier: Apache-2.0

package batch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadDefectRows(t *testing.T) {
	path := writeFile(t, "defects.csv", "\ufeffdefect_id,status,RCA,notes\n"+
		"101,close,Code: Bug,first\n"+
		"\n"+
		"102,Close,\"Test: Duplicate Defect\",\n"+
		"103,open,Infra Issues\n")

	rows, err := batch.ReadDefectRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, batch.DefectRow{Line: 2, DefectID: "101", Status: "close", RCA: "Code: Bug"}, rows[0])
	assert.Equal(t, batch.DefectRow{Line: 4, DefectID: "102", Status: "Close", RCA: "Test: Duplicate Defect"}, rows[1])
	assert.Equal(t, 5, rows[2].Line)
}

func TestReadRowsKeepsValuesLiteral(t *testing.T) {
	path := writeFile(t, "runs.csv", "test_case_name,status,attachment\n"+
		" Login works ,passed, ./proof.png\n")

	rows, err := batch.ReadExecutionRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, " Login works ", rows[0].TestCaseName)
	assert.Equal(t, "passed", rows[0].Status)
	assert.Equal(t, " ./proof.png", rows[0].Attachment)
}

func TestReadRowsKeepsEmptyCellRows(t *testing.T) {
	path := writeFile(t, "defects.csv", "defect_id,status,RCA\n,,\n101,close,Code: Bug\n")

	rows, err := batch.ReadDefectRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, batch.DefectRow{Line: 2}, rows[0])

	plan := batch.PlanDefectClosures(rows, nil)
	skipped := plan.Skipped()
	require.Len(t, skipped, 2)
	assert.Equal(t, 2, skipped[0].Row.Line)
	assert.Equal(t, batch.ReasonInvalidStatus, skipped[0].Reason)
}

func TestReadRowsFileProblems(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty file", content: "", wantErr: batch.ErrNoRows},
		{name: "header only", content: "defect_id,status,RCA\n", wantErr: batch.ErrNoRows},
		{name: "only blank lines", content: "defect_id,status,RCA\n\n\n", wantErr: batch.ErrNoRows},
		{name: "missing column", content: "defect_id,status\n1,close\n", wantErr: batch.ErrMissingColumns},
		{name: "case sensitive header", content: "defect_id,status,rca\n1,close,x\n", wantErr: batch.ErrMissingColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := batch.ReadDefectRows(writeFile(t, "in.csv", tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	_, err := batch.ReadDefectRows(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReadExecutionRowsFromWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"test_case_name", "status", "attachment"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Login works", "Passed", "proof.png"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Logout works", "Passed"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := batch.ReadExecutionRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, batch.ExecutionRow{Line: 2, TestCaseName: "Login works", Status: "Passed", Attachment: "proof.png"}, rows[0])
	assert.Equal(t, "", rows[1].Attachment)
	assert.Equal(t, 3, rows[1].Line)
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		`  /tmp/defects.csv  `:          "/tmp/defects.csv",
		`& 'C:\Users\qa\defects.csv'`:   `C:\Users\qa\defects.csv`,
		`"C:\Users\qa\my defects.csv"`:  `C:\Users\qa\my defects.csv`,
		`& "C:\Users\qa\defects.xlsx" `: `C:\Users\qa\defects.xlsx`,
		``:                              ``,
	}
	for input, want := range tests {
		assert.Equal(t, want, batch.CleanPath(input), input)
	}
}
