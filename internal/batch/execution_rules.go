// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/nischay/kualitee-cli/internal/kualitee"
)

// StatFunc reports file information; os.Stat in production.
type StatFunc func(name string) (fs.FileInfo, error)

// PlanExecutions decides which rows can be executed. Attachment paths are
// checked with stat, which defaults to os.Stat when nil.
func PlanExecutions(rows []ExecutionRow, cases []kualitee.TestCase, stat StatFunc) ExecutionPlan {
	if stat == nil {
		stat = os.Stat
	}

	byName := make(map[string][]kualitee.TestCase, len(cases))
	for _, tc := range cases {
		byName[tc.Name] = append(byName[tc.Name], tc)
	}

	var plan ExecutionPlan
	plan.Decisions = make([]Decision[ExecutionRow, ExecutionTarget], 0, len(rows))

	for _, row := range rows {
		if row.Status != kualitee.StatusPassed {
			plan.skip(row, ReasonInvalidStatus, fmt.Sprintf("%q, must be %q", row.Status, kualitee.StatusPassed))
			continue
		}

		info, err := stat(row.Attachment)
		if err != nil || !info.Mode().IsRegular() {
			plan.skip(row, ReasonFileNotFound, row.Attachment)
			continue
		}

		matches := byName[row.TestCaseName]
		if len(matches) != 1 {
			detail := "no test case with this name"
			if len(matches) > 1 {
				detail = fmt.Sprintf("%d test cases share this name", len(matches))
			}
			plan.skip(row, ReasonTestCaseNotFound, detail)
			continue
		}

		if !kualitee.AllowedExtension(row.Attachment) {
			plan.skip(row, ReasonInvalidFileType, kualitee.Extension(row.Attachment))
			continue
		}

		plan.accept(row, ExecutionTarget{Case: matches[0], Attachment: row.Attachment})
	}

	return plan
}
