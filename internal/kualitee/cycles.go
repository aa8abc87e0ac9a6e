// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"context"
)

// ListCycles returns the test cycles of the project.
func (c *Client) ListCycles(ctx context.Context) []Cycle {
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.postJSON(ctx, "/cycle/list", c.credentials(), &resp); err != nil {
		c.logger.Error("failed to list cycles", "error", err.Error())
		return []Cycle{}
	}
	if resp.Data == nil {
		c.logger.Warn("no cycles data in response")
	}

	cycles := make([]Cycle, 0, len(resp.Data))
	for _, fields := range resp.Data {
		cycles = append(cycles, NewCycle(fields))
	}
	return cycles
}

// ListTestCases returns the test cases scheduled in a cycle.
func (c *Client) ListTestCases(ctx context.Context, cycleID ID) []TestCase {
	body := c.credentials()
	body["cycle_id"] = cycleID
	body["length"] = c.opts.TestCaseListLength

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.postJSON(ctx, "/test_case_execution/list", body, &resp); err != nil {
		c.logger.Error("failed to list test cases", "cycle_id", cycleID, "error", err.Error())
		return []TestCase{}
	}
	if resp.Data == nil {
		c.logger.Warn("no test cases data in response", "cycle_id", cycleID)
	}

	cases := make([]TestCase, 0, len(resp.Data))
	for _, fields := range resp.Data {
		cases = append(cases, NewTestCase(fields))
	}
	return cases
}

// ExecuteTestCase records a Passed execution and returns its id. ok is false when
// the server rejects the call or omits the execution id.
func (c *Client) ExecuteTestCase(ctx context.Context, caseID, buildID, cycleID, scenarioID ID) (ID, bool) {
	body := c.credentials()
	body["cycle_id"] = cycleID
	body["build_id"] = buildID
	body["tc_id"] = caseID
	body["status"] = StatusPassed
	body["execute"] = "yes"
	body["testscenario_id"] = scenarioID

	var resp struct {
		Status          *Flag `json:"status"`
		Message         any   `json:"message"`
		ExecutedResults []struct {
			ID ID `json:"id"`
		} `json:"executed_results"`
	}
	if err := c.postJSON(ctx, "/test_case_execution/execute", body, &resp); err != nil {
		c.logger.Error("test execution request failed", "testcase_id", caseID, "error", err.Error())
		return "", false
	}
	if resp.Status == nil || !bool(*resp.Status) {
		c.logger.Error("test execution failed", "testcase_id", caseID, "message", resp.Message)
		return "", false
	}
	if len(resp.ExecutedResults) == 0 || resp.ExecutedResults[0].ID.IsZero() {
		c.logger.Error("no execution results in response", "testcase_id", caseID)
		return "", false
	}

	executionID := resp.ExecutedResults[0].ID
	c.logger.Info("test executed", "testcase_id", caseID, "execution_id", executionID)
	return executionID, true
}
