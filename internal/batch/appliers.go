// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"

	"github.com/nischay/kualitee-cli/internal/kualitee"
)

// DefectUpdater is the part of the gateway DefectCloser needs.
type DefectUpdater interface {
	UpdateDefect(ctx context.Context, defectID, status, rca string, snapshot *kualitee.Defect) bool
}

// TestRunner is the part of the gateway TestExecutionRunner needs.
type TestRunner interface {
	ExecuteTestCase(ctx context.Context, caseID, buildID, cycleID, scenarioID kualitee.ID) (kualitee.ID, bool)
	UploadAttachment(ctx context.Context, caseID, cycleID, executionID kualitee.ID, filePath string) bool
}

// DefectCloser closes each defect with the status and RCA text exactly as
// written in its row.
type DefectCloser struct {
	Updater DefectUpdater
}

func (c DefectCloser) Apply(ctx context.Context, d Decision[DefectRow, *kualitee.Defect]) Outcome {
	if c.Updater.UpdateDefect(ctx, d.Row.DefectID, d.Row.Status, d.Row.RCA, d.Target) {
		return Succeeded
	}
	return FailedAtExecution
}

// TestExecutionRunner marks each test case Passed and attaches its file. An
// execution whose upload fails stays recorded remotely.
type TestExecutionRunner struct {
	Runner  TestRunner
	CycleID kualitee.ID
}

func (r TestExecutionRunner) Apply(ctx context.Context, d Decision[ExecutionRow, ExecutionTarget]) Outcome {
	tc := d.Target.Case

	executionID, ok := r.Runner.ExecuteTestCase(ctx, tc.TestCaseID, tc.BuildID, r.CycleID, tc.ScenarioID)
	if !ok {
		return FailedAtExecution
	}
	if !r.Runner.UploadAttachment(ctx, tc.TestCaseID, r.CycleID, executionID, d.Target.Attachment) {
		return FailedAtAttachment
	}
	return Succeeded
}
