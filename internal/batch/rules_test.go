// SPDX-License-Identifier: Apache-2.0

package batch_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/nischay/kualitee-cli/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDefectClosures(t *testing.T) {
	defects := map[string]*kualitee.Defect{
		"1": testutil.Defect("1", "open"),
		"2": testutil.Defect("2", "Close"),
		"3": nil,
		"5": testutil.Defect("5", "reopen"),
	}
	rows := []batch.DefectRow{
		{Line: 2, DefectID: "1", Status: "CLOSE", RCA: "Code: Bug"},
		{Line: 3, DefectID: "2", Status: "close", RCA: "x"},
		{Line: 4, DefectID: "3", Status: "close"},
		{Line: 5, DefectID: "4", Status: "close"},
		{Line: 6, DefectID: "5", Status: "open"},
		{Line: 7, DefectID: "5", Status: " close"},
		{Line: 8, DefectID: "5", Status: "close", RCA: "anything goes"},
	}

	plan := batch.PlanDefectClosures(rows, defects)

	require.Len(t, plan.Decisions, len(rows))
	want := []struct {
		eligible bool
		reason   batch.Reason
	}{
		{true, ""},
		{false, batch.ReasonAlreadyClosed},
		{false, batch.ReasonNotFound},
		{false, batch.ReasonNotFound},
		{false, batch.ReasonInvalidStatus},
		{false, batch.ReasonInvalidStatus},
		{true, ""},
	}
	for i, d := range plan.Decisions {
		assert.Equal(t, rows[i], d.Row, "decisions keep input order")
		assert.Equal(t, want[i].eligible, d.Eligible, "row %d", i)
		assert.Equal(t, want[i].reason, d.Reason, "row %d", i)
	}

	for _, d := range plan.Eligible() {
		require.NotNil(t, d.Target)
		assert.False(t, d.Target.IsClosed())
	}
	assert.Equal(t, []int{2, 8}, lines(plan.Eligible()))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, lines(plan.Skipped()))
}

func TestPlanDefectClosuresInvalidStatusWins(t *testing.T) {
	plan := batch.PlanDefectClosures([]batch.DefectRow{{DefectID: "9", Status: "resolved"}}, nil)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, batch.ReasonInvalidStatus, plan.Decisions[0].Reason)
	assert.Contains(t, plan.Decisions[0].Detail, "resolved")
}

func TestDecisionSkipText(t *testing.T) {
	plan := batch.PlanDefectClosures([]batch.DefectRow{
		{DefectID: "1", Status: "close"},
		{DefectID: "2", Status: "close"},
	}, map[string]*kualitee.Defect{"2": testutil.Defect("2", "close")})

	assert.Equal(t, "Skip: not found", plan.Decisions[0].SkipText())
	assert.Equal(t, "Skip: already closed", plan.Decisions[1].SkipText())

	missing := batch.PlanExecutions([]batch.ExecutionRow{
		{TestCaseName: "Login works", Status: "Passed", Attachment: "nowhere.png"},
	}, nil, statOnly(t))
	assert.Equal(t, "Skip: file not found (nowhere.png)", missing.Decisions[0].SkipText())
}

func TestDefectIDs(t *testing.T) {
	ids := batch.DefectIDs([]batch.DefectRow{{DefectID: "3"}, {DefectID: "1"}, {DefectID: "3"}})
	assert.Equal(t, []string{"3", "1", "3"}, ids)
}

// statOnly returns a stat function that sees only the given names, all backed by
// a real regular file.
func statOnly(t *testing.T, names ...string) batch.StatFunc {
	t.Helper()
	backing := filepath.Join(t.TempDir(), "backing")
	require.NoError(t, os.WriteFile(backing, []byte("x"), 0644))

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return func(name string) (fs.FileInfo, error) {
		if !known[name] {
			return nil, fs.ErrNotExist
		}
		return os.Stat(backing)
	}
}

func TestPlanExecutions(t *testing.T) {
	cases := []kualitee.TestCase{
		testutil.TestCase("101", "Login works"),
		testutil.TestCase("102", "Logout works"),
		testutil.TestCase("103", "Twin"),
		testutil.TestCase("104", "Twin"),
	}
	stat := statOnly(t, "proof.png", "notes.txt", "twin.png")

	rows := []batch.ExecutionRow{
		{Line: 2, TestCaseName: "Login works", Status: "Passed", Attachment: "proof.png"},
		{Line: 3, TestCaseName: "Login works", Status: "passed", Attachment: "proof.png"},
		{Line: 4, TestCaseName: "Missing", Status: "Passed", Attachment: "proof.png"},
		{Line: 5, TestCaseName: "Logout works", Status: "Passed", Attachment: "notes.txt"},
		{Line: 6, TestCaseName: "Twin", Status: "Passed", Attachment: "twin.png"},
		{Line: 7, TestCaseName: "Logout works", Status: "Passed", Attachment: "gone.png"},
	}

	plan := batch.PlanExecutions(rows, cases, stat)

	require.Len(t, plan.Decisions, len(rows))
	reasons := make([]batch.Reason, len(plan.Decisions))
	for i, d := range plan.Decisions {
		reasons[i] = d.Reason
	}
	assert.Equal(t, []batch.Reason{
		"",
		batch.ReasonInvalidStatus,
		batch.ReasonTestCaseNotFound,
		batch.ReasonInvalidFileType,
		batch.ReasonTestCaseNotFound,
		batch.ReasonFileNotFound,
	}, reasons)

	eligible := plan.Eligible()
	require.Len(t, eligible, 1)
	assert.Equal(t, kualitee.ID("101"), eligible[0].Target.Case.TestCaseID)
	assert.Equal(t, "proof.png", eligible[0].Target.Attachment)

	assert.Contains(t, plan.Decisions[4].Detail, "2 test cases")
	assert.Equal(t, "txt", plan.Decisions[3].Detail)
}

func TestPlanExecutionsRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	rows := []batch.ExecutionRow{{TestCaseName: "Login works", Status: "Passed", Attachment: dir}}

	plan := batch.PlanExecutions(rows, []kualitee.TestCase{testutil.TestCase("1", "Login works")}, nil)

	assert.Equal(t, batch.ReasonFileNotFound, plan.Decisions[0].Reason)
}

// A missing attachment is reported the same way whether or not the test case exists.
func TestScenarioMissingAttachment(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "never-created.png")
	cases := []kualitee.TestCase{testutil.TestCase("101", "Login works")}

	for _, name := range []string{"Login works", "Unknown case"} {
		plan := batch.PlanExecutions([]batch.ExecutionRow{
			{Line: 2, TestCaseName: name, Status: "Passed", Attachment: missing},
		}, cases, nil)

		require.Len(t, plan.Decisions, 1)
		assert.False(t, plan.Decisions[0].Eligible)
		assert.Equal(t, batch.ReasonFileNotFound, plan.Decisions[0].Reason, name)
	}
}

func lines[R batch.Row, T any](decisions []batch.Decision[R, T]) []int {
	out := make([]int, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, d.Row.LineNumber())
	}
	return out
}
