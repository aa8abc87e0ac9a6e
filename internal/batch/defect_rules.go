// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"
	"strings"

	"github.com/nischay/kualitee-cli/internal/kualitee"
)

// DefectIDs returns the target ids of rows in input order.
func DefectIDs(rows []DefectRow) []string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.DefectID
	}
	return ids
}

// PlanDefectClosures decides which rows can close their defect. defects maps ids
// to fetched snapshots; a missing or nil entry means the defect was not found.
func PlanDefectClosures(rows []DefectRow, defects map[string]*kualitee.Defect) DefectPlan {
	var plan DefectPlan
	plan.Decisions = make([]Decision[DefectRow, *kualitee.Defect], 0, len(rows))

	for _, row := range rows {
		if !strings.EqualFold(row.Status, kualitee.StatusClose) {
			plan.skip(row, ReasonInvalidStatus, fmt.Sprintf("%q, must be %q", row.Status, kualitee.StatusClose))
			continue
		}

		defect := defects[row.DefectID]
		if defect == nil {
			plan.skip(row, ReasonNotFound, "")
			continue
		}

		if defect.IsClosed() {
			plan.skip(row, ReasonAlreadyClosed, "")
			continue
		}

		plan.accept(row, defect)
	}

	return plan
}
