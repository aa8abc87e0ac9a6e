// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StatusClose is the machine status of a closed defect.
const StatusClose = "close"

// StatusPassed is the only execution result this tool submits.
const StatusPassed = "Passed"

// CustomField is one labelled custom value attached to a defect.
type CustomField struct {
	Label string
	Value string
}

// Comment is one entry of a defect's comment history.
type Comment struct {
	Date        string
	CommentedBy string
	Status      string
	Text        string
}

// Defect is a snapshot of a remote defect. Fields keeps the payload exactly as
// received so an update can send back everything it did not change.
type Defect struct {
	ID            ID
	Status        string
	DisplayStatus string
	Description   string
	Severity      string
	Priority      string
	Type          string
	OS            string
	Devices       string
	CreatedOn     string
	Aging         string
	BuildName     string
	ModuleName    string
	CycleName     string
	CustomFields  []CustomField
	Comments      []Comment

	Fields map[string]any
}

// NewDefect builds a Defect from a decoded payload.
func NewDefect(fields map[string]any) Defect {
	d := Defect{
		ID:            ID(textValue(fields["id"])),
		Status:        textValue(fields["status"]),
		DisplayStatus: textValue(fields["uc_status"]),
		Description:   textValue(fields["description"]),
		Severity:      textValue(fields["uc_severity"]),
		Priority:      textValue(fields["uc_priority"]),
		Type:          textValue(fields["uc_defect_type"]),
		OS:            textValue(fields["uc_os_type"]),
		Devices:       textValue(fields["uc_devices"]),
		CreatedOn:     textValue(fields["created_on"]),
		Aging:         textValue(fields["defect_aging"]),
		BuildName:     textValue(fields["build_name"]),
		ModuleName:    textValue(fields["module_name"]),
		CycleName:     textValue(fields["cycle_name"]),
		Fields:        fields,
	}

	for _, item := range objectList(fields["custom_fields"]) {
		d.CustomFields = append(d.CustomFields, CustomField{
			Label: textValue(item["custom_field_label"]),
			Value: textValue(item["custom_field_value"]),
		})
	}
	for _, item := range objectList(fields["bug_comments"]) {
		d.Comments = append(d.Comments, Comment{
			Date:        textValue(item["date"]),
			CommentedBy: textValue(item["commented_by"]),
			Status:      textValue(item["status"]),
			Text:        textValue(item["comment"]),
		})
	}

	return d
}

// IsClosed reports whether the defect is already closed.
func (d *Defect) IsClosed() bool {
	return strings.EqualFold(d.Status, StatusClose)
}

// Field returns any payload field rendered as text.
func (d *Defect) Field(key string) string {
	return textValue(d.Fields[key])
}

// UnmarshalJSON decodes a defect payload while keeping every field.
func (d *Defect) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	*d = NewDefect(fields)
	return nil
}

// MarshalJSON writes the original payload.
func (d Defect) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Fields)
}

// Cycle is a named group of test cases.
type Cycle struct {
	ID     ID
	Name   string
	Status string

	Fields map[string]any
}

// NewCycle builds a Cycle from a decoded payload.
func NewCycle(fields map[string]any) Cycle {
	return Cycle{
		ID:     ID(textValue(fields["id"])),
		Name:   textValue(fields["cycle_name"]),
		Status: textValue(fields["status"]),
		Fields: fields,
	}
}

// TestCase is a test case as listed inside a cycle.
type TestCase struct {
	TestCaseID    ID
	Name          string
	Status        string
	Summary       string
	BuildID       ID
	ScenarioID    ID
	HasAttachment bool
	ExecutedBy    string

	Fields map[string]any
}

// NewTestCase builds a TestCase from a decoded payload.
func NewTestCase(fields map[string]any) TestCase {
	executedBy := textValue(fields["executed_by"])
	if _, ok := fields["executed_by"]; !ok {
		executedBy = "-"
	}

	return TestCase{
		TestCaseID:    ID(textValue(fields["testcase_id"])),
		Name:          textValue(fields["tc_name"]),
		Status:        textValue(fields["status"]),
		Summary:       textValue(fields["summary"]),
		BuildID:       ID(textValue(fields["build_id"])),
		ScenarioID:    ID(textValue(fields["testscenario_id"])),
		HasAttachment: textValue(fields["attachments_exist"]) == "1",
		ExecutedBy:    executedBy,
		Fields:        fields,
	}
}

// PlainFields converts json.Number values to int64 or float64 so the payload
// renders naturally as YAML.
func PlainFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return PlainFields(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// decodeObject decodes a JSON object keeping numbers as json.Number.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// textValue renders a scalar payload value. Nil becomes the empty string.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func objectList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// FilterCycles keeps cycles whose name contains term, ignoring case.
func FilterCycles(cycles []Cycle, term string) []Cycle {
	term = strings.ToLower(term)
	var out []Cycle
	for _, c := range cycles {
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterTestCases keeps test cases whose name contains term, ignoring case.
func FilterTestCases(cases []TestCase, term string) []TestCase {
	term = strings.ToLower(term)
	var out []TestCase
	for _, tc := range cases {
		if strings.Contains(strings.ToLower(tc.Name), term) {
			out = append(out, tc)
		}
	}
	return out
}
