// SPDX-License-Identifier: Apache-2.0

package navigator_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/nischay/kualitee-cli/internal/navigator"
	"github.com/nischay/kualitee-cli/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	defects *testutil.MockDefectAPI
	cycles  *testutil.MockCycleAPI
	out     *bytes.Buffer
}

func newHarness() *harness {
	return &harness{
		defects: new(testutil.MockDefectAPI),
		cycles:  new(testutil.MockCycleAPI),
		out:     new(bytes.Buffer),
	}
}

// run drives the navigator with one answer per line.
func (h *harness) run(t *testing.T, answers ...string) string {
	t.Helper()
	nav := navigator.New(navigator.Options{
		Defects: h.defects,
		Cycles:  h.cycles,
		In:      strings.NewReader(strings.Join(answers, "\n") + "\n"),
		Out:     h.out,
	})
	require.NoError(t, nav.Run(context.Background()))
	return h.out.String()
}

func TestExitFromMainMenu(t *testing.T) {
	h := newHarness()

	out := h.run(t, "0")

	assert.Contains(t, out, navigator.AppTitle)
	assert.Contains(t, out, "1. Test Cycle Management")
	assert.Contains(t, out, "Goodbye!")
}

func TestInvalidChoiceStaysInMenu(t *testing.T) {
	h := newHarness()

	out := h.run(t, "7", "0")

	assert.Contains(t, out, "Invalid choice")
	assert.Equal(t, 2, strings.Count(out, "Select Module"))
}

func TestEndOfInputExits(t *testing.T) {
	h := newHarness()

	out := h.run(t, "2")

	assert.Contains(t, out, "Defect Management Menu")
	assert.Contains(t, out, "Goodbye!")
}

func TestSearchDefect(t *testing.T) {
	h := newHarness()
	d := kualitee.NewDefect(map[string]any{
		"id":          "101",
		"status":      "open",
		"uc_status":   "Open",
		"description": "Login button does nothing",
		"uc_severity": "High",
		"custom_fields": []any{
			map[string]any{"custom_field_label": "RCA", "custom_field_value": "Code: Bug"},
			map[string]any{"custom_field_label": "Hidden", "custom_field_value": ""},
		},
		"bug_comments": []any{
			map[string]any{"date": "2024-05-01", "commented_by": "qa.lead", "status": "Open", "comment": "Reproduced"},
		},
	})
	h.defects.On("GetDefect", mock.Anything, "101").Return(&d)
	h.defects.On("GetDefect", mock.Anything, "404").Return(nil)

	out := h.run(t, "2", "1", "101", "", "1", "404", "", "1", "", "0", "0")

	assert.Contains(t, out, "Defect #101")
	assert.Contains(t, out, "Login button does nothing")
	assert.Contains(t, out, "Severity: High")
	assert.Contains(t, out, "RCA: Code: Bug")
	assert.NotContains(t, out, "Hidden")
	assert.Contains(t, out, "[2024-05-01] qa.lead → Open")
	assert.Contains(t, out, "Reproduced")
	assert.Contains(t, out, "No defect found with ID: 404")
	h.defects.AssertExpectations(t)
}

func TestUpdateSingleDefect(t *testing.T) {
	h := newHarness()
	d := testutil.Defect("101", "open")
	h.defects.On("GetDefect", mock.Anything, "101").Return(d)
	h.defects.On("UpdateDefect", mock.Anything, "101", "close", "Code: Bug", d).Return(true).Once()

	out := h.run(t, "2", "2", "101", "abc", "29", "2", "y", "", "0", "0")

	assert.Contains(t, out, "Invalid input. Please enter a number.")
	assert.Contains(t, out, "Please enter a number between 1 and 28")
	assert.Contains(t, out, "Selected RCA: Code: Bug")
	assert.Contains(t, out, "Defect 101 updated successfully!")
	h.defects.AssertExpectations(t)
}

func TestUpdateSingleDefectDeclined(t *testing.T) {
	h := newHarness()
	h.defects.On("GetDefect", mock.Anything, "101").Return(testutil.Defect("101", "open"))

	out := h.run(t, "2", "2", "101", "5", "yes", "", "0", "0")

	assert.Contains(t, out, "Update cancelled")
	h.defects.AssertNotCalled(t, "UpdateDefect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSingleDefectAlreadyClosed(t *testing.T) {
	h := newHarness()
	h.defects.On("GetDefect", mock.Anything, "101").Return(testutil.Defect("101", "Close"))

	out := h.run(t, "2", "2", "101", "", "0", "0")

	assert.Contains(t, out, "already closed")
	assert.NotContains(t, out, "Select Root Cause Analysis")
}

func TestBulkDefectClosure(t *testing.T) {
	h := newHarness()
	open := testutil.Defect("265744", "open")
	h.defects.On("GetDefect", mock.Anything, "265744").Return(open)
	h.defects.On("GetDefect", mock.Anything, "265745").Return(testutil.Defect("265745", "close"))
	h.defects.On("GetDefect", mock.Anything, "999999").Return(nil)
	h.defects.On("UpdateDefect", mock.Anything, "265744", "close", "Code: Bug", open).Return(true).Once()

	path := filepath.Join(t.TempDir(), "defects.csv")
	require.NoError(t, os.WriteFile(path, []byte("defect_id,status,RCA\n"+
		"265744,close,Code: Bug\n"+
		"265745,close,Code: Bug\n"+
		"999999,close,Code: Bug\n"), 0644))

	out := h.run(t, "2", "3", `"`+path+`"`, "yes", "", "0", "0")

	assert.Contains(t, out, "Will Update")
	assert.Contains(t, out, "Skip: already closed")
	assert.Contains(t, out, "Skip: not found")
	assert.Contains(t, out, "1 to update")
	assert.Contains(t, out, "2 to skip")
	assert.Contains(t, out, "Updating 265744... ✓")
	assert.Contains(t, out, "Success: 1")
	assert.Contains(t, out, "Failed: 0")
	assert.Contains(t, out, "Skipped: 2")
	assert.Contains(t, out, "Run ID: ")
	h.defects.AssertExpectations(t)
}

func TestBulkDefectClosureRequiresYes(t *testing.T) {
	h := newHarness()
	h.defects.On("GetDefect", mock.Anything, "1").Return(testutil.Defect("1", "open"))

	path := filepath.Join(t.TempDir(), "defects.csv")
	require.NoError(t, os.WriteFile(path, []byte("defect_id,status,RCA\n1,close,x\n"), 0644))

	out := h.run(t, "2", "3", path, "y", "", "0", "0")

	assert.Contains(t, out, "Update cancelled")
	h.defects.AssertNotCalled(t, "UpdateDefect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkDefectClosureBadFile(t *testing.T) {
	h := newHarness()
	path := filepath.Join(t.TempDir(), "defects.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,state\n1,close\n"), 0644))

	out := h.run(t, "2", "3", path, "", "0", "0")

	assert.Contains(t, out, "missing required columns")
	assert.NotContains(t, out, "Preview:")
}

func cycleFixtures(h *harness) {
	h.cycles.On("ListCycles", mock.Anything).Return([]kualitee.Cycle{
		kualitee.NewCycle(map[string]any{"id": "55", "cycle_name": "Sprint 12", "status": "Active"}),
		kualitee.NewCycle(map[string]any{"id": "56", "cycle_name": "Regression", "status": "Closed"}),
	})
	h.cycles.On("ListTestCases", mock.Anything, kualitee.ID("55")).Return([]kualitee.TestCase{
		testutil.TestCase("101", "Login works"),
		testutil.TestCase("102", "Logout works"),
	})
}

func TestBulkExecution(t *testing.T) {
	h := newHarness()
	cycleFixtures(h)

	dir := t.TempDir()
	proof := filepath.Join(dir, "proof.png")
	require.NoError(t, os.WriteFile(proof, []byte("png"), 0644))
	missing := filepath.Join(dir, "missing.png")
	csvPath := filepath.Join(dir, "runs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("test_case_name,status,attachment\n"+
		"Login works,Passed,"+proof+"\n"+
		"Logout works,Passed,"+missing+"\n"), 0644))

	h.cycles.On("ExecuteTestCase", mock.Anything, kualitee.ID("101"), kualitee.ID("7"), kualitee.ID("55"), kualitee.ID("3")).
		Return(kualitee.ID("9001"), true).Once()
	h.cycles.On("UploadAttachment", mock.Anything, kualitee.ID("101"), kualitee.ID("55"), kualitee.ID("9001"), proof).
		Return(true).Once()

	out := h.run(t, "1", "1", "1", "2", csvPath, "yes", "", "9", "9", "0", "0")

	assert.Contains(t, out, "Sprint 12")
	assert.Contains(t, out, "Login works")
	assert.Contains(t, out, "Will Execute")
	assert.Contains(t, out, "Skip: file not found")
	assert.Contains(t, out, "Processing: Login works...")
	assert.Contains(t, out, "Executed & uploaded")
	assert.Contains(t, out, "Success: 1")
	assert.Contains(t, out, "Skipped: 1")
	h.cycles.AssertExpectations(t)
}

func TestExecuteSingleTest(t *testing.T) {
	h := newHarness()
	cycleFixtures(h)

	proof := filepath.Join(t.TempDir(), "proof.pdf")
	require.NoError(t, os.WriteFile(proof, []byte("pdf"), 0644))

	h.cycles.On("ExecuteTestCase", mock.Anything, kualitee.ID("102"), kualitee.ID("7"), kualitee.ID("55"), kualitee.ID("3")).
		Return(kualitee.ID("9002"), true).Once()
	h.cycles.On("UploadAttachment", mock.Anything, kualitee.ID("102"), kualitee.ID("55"), kualitee.ID("9002"), proof).
		Return(false).Once()

	out := h.run(t, "1", "1", "1", "1", "2", "& '"+proof+"'", "", "9", "9", "0", "0")

	assert.Contains(t, out, "Test executed successfully!")
	assert.Contains(t, out, "Execution ID: 9002")
	assert.Contains(t, out, "Attachment upload failed")
	h.cycles.AssertExpectations(t)
}

func TestExecuteSingleRejectsFileType(t *testing.T) {
	h := newHarness()
	cycleFixtures(h)

	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("txt"), 0644))

	out := h.run(t, "1", "1", "1", "1", "1", notes, "", "9", "9", "0", "0")

	assert.Contains(t, out, "invalid file type")
	h.cycles.AssertNotCalled(t, "ExecuteTestCase", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteSingleBlankPathCancels(t *testing.T) {
	h := newHarness()
	cycleFixtures(h)

	out := h.run(t, "1", "1", "1", "1", "1", "  ", "9", "9", "0", "0")

	assert.Contains(t, out, "blank to cancel")
	assert.NotContains(t, out, "file not found")
	assert.NotContains(t, out, "Executing test")
	h.cycles.AssertNotCalled(t, "ExecuteTestCase", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMainMenuShortcutFromCycleScreen(t *testing.T) {
	h := newHarness()
	cycleFixtures(h)

	out := h.run(t, "1", "1", "1", "0", "0")

	assert.Equal(t, 2, strings.Count(out, "Select Module"))
	h.cycles.AssertNumberOfCalls(t, "ListCycles", 1)
	h.cycles.AssertNumberOfCalls(t, "ListTestCases", 1)
}

func TestSearchAndFilterTestCases(t *testing.T) {
	h := newHarness()
	cycleFixtures(h)

	out := h.run(t,
		"1", "2", "sprint", "1",
		"3", "LOGOUT", "",
		"4", "item.tc_name.startsWith('Login')", "",
		"4", "item.tc_name ==", "",
		"0", "0")

	assert.Contains(t, out, "Search Results for 'sprint'")
	assert.NotContains(t, out, "Regression")
	assert.Contains(t, out, "Search Results for 'LOGOUT'")
	assert.Contains(t, out, "Filter Results")
	assert.Contains(t, out, "Found 1 test case(s)")
	assert.Contains(t, out, "error parsing expression")
}

func TestDoubleInterruptExits(t *testing.T) {
	h := newHarness()
	reader, writer := io.Pipe()
	defer writer.Close()

	interrupts := make(chan os.Signal)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	nav := navigator.New(navigator.Options{
		Defects:    h.defects,
		Cycles:     h.cycles,
		In:         reader,
		Out:        h.out,
		Interrupts: interrupts,
		Now:        func() time.Time { return now },
	})

	done := make(chan error, 1)
	go func() { done <- nav.Run(context.Background()) }()

	interrupts <- os.Interrupt
	interrupts <- os.Interrupt

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("navigator did not exit after two interrupts")
	}
	assert.Contains(t, h.out.String(), "Going back... (Press Ctrl+C again to exit)")
	assert.Contains(t, h.out.String(), "Goodbye!")
}
