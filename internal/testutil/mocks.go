// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"

	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/stretchr/testify/mock"
)

// MockDefectAPI mocks the defect operations of the Kualitee gateway.
type MockDefectAPI struct {
	mock.Mock
}

// ListDefects mocks the ListDefects method
func (m *MockDefectAPI) ListDefects(ctx context.Context) []kualitee.Defect {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return []kualitee.Defect{}
	}
	return args.Get(0).([]kualitee.Defect)
}

// GetDefect mocks the GetDefect method
func (m *MockDefectAPI) GetDefect(ctx context.Context, defectID string) *kualitee.Defect {
	args := m.Called(ctx, defectID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*kualitee.Defect)
}

// GetDefects answers from GetDefect expectations unless GetDefects itself was
// given an expectation.
func (m *MockDefectAPI) GetDefects(ctx context.Context, defectIDs []string, limit int) map[string]*kualitee.Defect {
	for _, call := range m.ExpectedCalls {
		if call.Method == "GetDefects" {
			args := m.Called(ctx, defectIDs, limit)
			return args.Get(0).(map[string]*kualitee.Defect)
		}
	}

	out := make(map[string]*kualitee.Defect, len(defectIDs))
	for _, id := range defectIDs {
		out[id] = m.GetDefect(ctx, id)
	}
	return out
}

// UpdateDefect mocks the UpdateDefect method
func (m *MockDefectAPI) UpdateDefect(ctx context.Context, defectID, status, rca string, snapshot *kualitee.Defect) bool {
	args := m.Called(ctx, defectID, status, rca, snapshot)
	return args.Bool(0)
}

// MockCycleAPI mocks the test cycle operations of the Kualitee gateway.
type MockCycleAPI struct {
	mock.Mock
}

// ListCycles mocks the ListCycles method
func (m *MockCycleAPI) ListCycles(ctx context.Context) []kualitee.Cycle {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return []kualitee.Cycle{}
	}
	return args.Get(0).([]kualitee.Cycle)
}

// ListTestCases mocks the ListTestCases method
func (m *MockCycleAPI) ListTestCases(ctx context.Context, cycleID kualitee.ID) []kualitee.TestCase {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return []kualitee.TestCase{}
	}
	return args.Get(0).([]kualitee.TestCase)
}

// ExecuteTestCase mocks the ExecuteTestCase method
func (m *MockCycleAPI) ExecuteTestCase(ctx context.Context, caseID, buildID, cycleID, scenarioID kualitee.ID) (kualitee.ID, bool) {
	args := m.Called(ctx, caseID, buildID, cycleID, scenarioID)
	return args.Get(0).(kualitee.ID), args.Bool(1)
}

// UploadAttachment mocks the UploadAttachment method
func (m *MockCycleAPI) UploadAttachment(ctx context.Context, caseID, cycleID, executionID kualitee.ID, filePath string) bool {
	args := m.Called(ctx, caseID, cycleID, executionID, filePath)
	return args.Bool(0)
}

// Defect builds a defect snapshot the way the gateway would decode it.
func Defect(id, status string) *kualitee.Defect {
	d := kualitee.NewDefect(map[string]any{
		"id":          id,
		"status":      status,
		"uc_status":   status,
		"description": "Defect " + id,
	})
	return &d
}

// TestCase builds a listed test case.
func TestCase(id, name string) kualitee.TestCase {
	return kualitee.NewTestCase(map[string]any{
		"testcase_id":     id,
		"tc_name":         name,
		"status":          "Not Executed",
		"summary":         "Checks " + name,
		"build_id":        "7",
		"testscenario_id": "3",
	})
}
