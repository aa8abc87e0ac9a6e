// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"fmt"
	"strconv"
	"strings"
)

// RCAOptions is the fixed list of root causes accepted when closing a defect
// interactively.
var RCAOptions = []string{
	"Application Issues:",
	"Code: Bug",
	"Code: Deployment Issue",
	"Code: Misalignment b/w Prod & Test Lab",
	"Code: Missed during deployment",
	"Configuration: Bug",
	"Configuration: Change",
	"Configuration: Missed",
	"Database issue",
	"Design Issue: Code Change",
	"Design Issue: Design Change",
	"Environment Issues",
	"Infra Issues",
	"Intermittent Connectivity Issues",
	"Production BAU",
	"Req. - NA / OOS",
	"Requirements: Missed",
	"Requirements: New/Change",
	"Retrofit Issue",
	"Service Request (Not Defect)",
	"Test Data: Incorrect test data provided to test team",
	"Test: Duplicate Defect",
	"Test: Incorrect test data used for test",
	"Test: Missed by E2E team",
	"Test: Test Case Error",
	"Test: Test Data issue",
	"Test: Test Device Issue",
	"Test: Test User Error",
}

// ResolveRCA accepts either a 1-based option number or the exact option text.
func ResolveRCA(input string) (string, error) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(RCAOptions) {
			return "", fmt.Errorf("RCA option must be between 1 and %d", len(RCAOptions))
		}
		return RCAOptions[n-1], nil
	}
	for _, option := range RCAOptions {
		if option == input {
			return option, nil
		}
	}
	return "", fmt.Errorf("unknown RCA option %q", input)
}
