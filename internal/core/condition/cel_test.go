// SPDX-License-Identifier: Apache-2.0

package condition_test

import (
	"testing"

	"github.com/nischay/kualitee-cli/internal/core/condition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELEvaluator(t *testing.T) {
	// Create a new evaluator
	evaluator, err := condition.NewCELEvaluator()
	require.NoError(t, err, "Error creating CEL evaluator")

	defect := map[string]interface{}{
		"id":          int64(265744),
		"status":      "open",
		"uc_severity": "High",
		"tags":        []interface{}{"login", "sso"},
		"aging":       int64(12),
	}

	tests := []struct {
		name       string
		expression string
		item       map[string]interface{}
		expected   bool
		wantErr    bool
	}{
		{
			name:       "simple comparison - true",
			expression: "item.status == 'open'",
			item:       defect,
			expected:   true,
		},
		{
			name:       "simple comparison - false",
			expression: "item.status == 'close'",
			item:       defect,
			expected:   false,
		},
		{
			name:       "logical AND - true",
			expression: "item.status == 'open' && item.uc_severity == 'High'",
			item:       defect,
			expected:   true,
		},
		{
			name:       "logical OR - false",
			expression: "item.status == 'close' || item.uc_severity == 'Low'",
			item:       defect,
			expected:   false,
		},
		{
			name:       "numeric comparison",
			expression: "item.aging > 10",
			item:       defect,
			expected:   true,
		},
		{
			name:       "list membership",
			expression: "'sso' in item.tags",
			item:       defect,
			expected:   true,
		},
		{
			name:       "string functions",
			expression: "item.uc_severity.startsWith('Hi')",
			item:       defect,
			expected:   true,
		},
		{
			name:       "has guards optional fields",
			expression: "has(item.module_name) && item.module_name == 'Auth'",
			item:       defect,
			expected:   false,
		},
		{
			name:       "invalid expression",
			expression: "item.status = 'open'", // Invalid syntax (= instead of ==)
			item:       defect,
			wantErr:    true,
		},
		{
			name:       "non-boolean result",
			expression: "item.status",
			item:       defect,
			wantErr:    true,
		},
		{
			name:       "missing field",
			expression: "item.nonexistent_field == 'value'",
			item:       defect,
			wantErr:    true,
		},
		{
			name:       "unknown variable",
			expression: "findings.status == 'open'",
			item:       defect,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := evaluate(evaluator, tt.expression, tt.item)

			if tt.wantErr {
				assert.Error(t, err, "Expected error for expression: %s", tt.expression)
			} else {
				assert.NoError(t, err, "Unexpected error for expression: %s", tt.expression)
				assert.Equal(t, tt.expected, result, "Unexpected result for expression: %s", tt.expression)
			}
		})
	}
}

func TestCELEvaluatorWithNilRecord(t *testing.T) {
	evaluator, err := condition.NewCELEvaluator()
	require.NoError(t, err, "Error creating CEL evaluator")

	_, err = evaluate(evaluator, "item.status == 'open'", nil)
	assert.Error(t, err, "Expected error for nil record")
}

func evaluate(evaluator *condition.CELEvaluator, expression string, item map[string]interface{}) (bool, error) {
	cond, err := evaluator.Compile(expression)
	if err != nil {
		return false, err
	}
	return cond.Match(item)
}

type cycle struct {
	name   string
	status string
}

func cycleFields(c cycle) map[string]interface{} {
	fields := map[string]interface{}{"cycle_name": c.name}
	if c.status != "" {
		fields["status"] = c.status
	}
	return fields
}

func TestFilter(t *testing.T) {
	cycles := []cycle{
		{name: "Sprint 1", status: "Closed"},
		{name: "Sprint 2", status: "Active"},
		{name: "Regression"},
		{name: "Sprint 3", status: "Active"},
	}

	got, err := condition.Filter("item.status == 'Active'", cycles, cycleFields)
	require.NoError(t, err)
	assert.Equal(t, []cycle{cycles[1], cycles[3]}, got)

	got, err = condition.Filter("   ", cycles, cycleFields)
	require.NoError(t, err)
	assert.Equal(t, cycles, got)

	got, err = condition.Filter("item.cycle_name.contains('Sprint') && item.status != 'Active'", cycles, cycleFields)
	require.NoError(t, err)
	assert.Equal(t, []cycle{cycles[0]}, got)

	_, err = condition.Filter("item.status ==", cycles, cycleFields)
	assert.Error(t, err)
}
