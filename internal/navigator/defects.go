// SPDX-License-Identifier: Apache-2.0

package navigator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/core/format"
	"github.com/nischay/kualitee-cli/internal/kualitee"
)

const defectTitle = "Kualitee Defect Management"

func (n *Navigator) defectMenu(ctx context.Context) (Nav, error) {
	for {
		n.clear()
		n.println(n.ui.Panel(defectTitle))
		n.println("\n" + n.ui.label.Render("Defect Management Menu") + "\n")
		n.println("1. Search Defect by ID")
		n.println("2. Update Single Defect")
		n.println("3. Update Bulk Defects (CSV)")
		n.println("0. Back to Main Menu")

		choice, err := n.prompt.Ask("Enter your choice")
		if err != nil {
			return Stay, err
		}

		var s screen
		switch choice {
		case "1":
			s = n.searchDefect
		case "2":
			s = n.updateSingleDefect
		case "3":
			s = n.updateBulkDefects
		case "0":
			return Back, nil
		default:
			n.invalidChoice()
			continue
		}

		if nav, leave := n.submenu(ctx, s, n.defectLog); leave {
			return nav, nil
		}
	}
}

func (n *Navigator) searchDefect(ctx context.Context) (Nav, error) {
	defectID, err := n.prompt.Ask("Enter defect ID to search (blank to cancel)")
	if err != nil || defectID == "" {
		return Stay, err
	}

	n.println("\n" + n.ui.info.Render("Fetching defect details..."))
	defect := n.defects.GetDefect(ctx, defectID)
	if defect == nil {
		n.println(n.ui.warn.Render("No defect found with ID: " + defectID))
		return Stay, n.pause()
	}

	n.clear()
	n.println(n.ui.Panel(defectTitle))
	n.showDefect(defect)
	return Stay, n.pause()
}

func (n *Navigator) showDefect(d *kualitee.Defect) {
	n.println("\n" + n.ui.title.Render("Defect #"+d.ID.String()) + "\n")

	n.println(n.ui.heading.Render("Basic Information:"))
	n.println(n.ui.field("Title", format.Truncate(d.Description, titleWidth)))
	n.println(n.ui.field("Status", d.DisplayStatus))
	n.println(n.ui.field("Severity", d.Severity))
	n.println(n.ui.field("Priority", d.Priority))
	n.println(n.ui.field("Type", d.Type))
	n.println(n.ui.field("OS", d.OS))
	n.println(n.ui.field("Devices", d.Devices))
	n.println(n.ui.field("Created", d.CreatedOn))
	n.println(n.ui.field("Aging", d.Aging))

	n.println("\n" + n.ui.heading.Render("Build & Module:"))
	n.println(n.ui.field("Build", d.BuildName))
	n.println(n.ui.field("Module", d.ModuleName))
	n.println(n.ui.field("Cycle", d.CycleName))

	if len(d.CustomFields) > 0 {
		n.println("\n" + n.ui.heading.Render("Custom Fields:"))
		for _, f := range d.CustomFields {
			if f.Value == "" {
				continue
			}
			label := f.Label
			if label == "" {
				label = "Unknown"
			}
			n.println(n.ui.field(label, f.Value))
		}
	}

	if len(d.Comments) > 0 {
		n.println("\n" + n.ui.heading.Render("Comments History:"))
		for _, c := range d.Comments {
			n.println(fmt.Sprintf("  [%s] %s → %s", orNA(c.Date), orDefault(c.CommentedBy, "Unknown"), orNA(c.Status)))
			if c.Text != "" {
				n.println("    " + c.Text)
			}
		}
	}
}

func (n *Navigator) updateSingleDefect(ctx context.Context) (Nav, error) {
	defectID, err := n.prompt.Ask("Enter defect ID to update (blank to cancel)")
	if err != nil || defectID == "" {
		return Stay, err
	}

	n.println("\n" + n.ui.info.Render("Fetching defect details..."))
	defect := n.defects.GetDefect(ctx, defectID)
	if defect == nil {
		n.println(n.ui.warn.Render("No defect found with ID: " + defectID))
		return Stay, n.pause()
	}

	n.println("")
	n.println(n.ui.field("Current Status", defect.DisplayStatus))
	n.println(n.ui.field("Current RCA", defect.Field(n.rcaField)))
	n.println(n.ui.field("Description", defect.Description))

	if defect.IsClosed() {
		n.println("\n" + n.ui.warn.Render(iconWarn+" This defect is already closed. No update needed."))
		return Stay, n.pause()
	}

	rca, err := n.selectRCA()
	if err != nil || rca == "" {
		return Stay, err
	}
	n.println("\n" + n.ui.ok.Render("Selected RCA: "+rca))

	n.println("\n" + n.ui.warn.Render(fmt.Sprintf("About to close defect %s with RCA: %s", defectID, rca)))
	ok, err := n.confirm("Proceed? (y/n)", "y")
	if err != nil {
		return Stay, err
	}
	if !ok {
		n.println(n.ui.warn.Render("Update cancelled"))
		return Stay, n.pause()
	}

	n.println("\n" + n.ui.info.Render("Updating defect..."))
	if n.defects.UpdateDefect(ctx, defectID, kualitee.StatusClose, rca, defect) {
		n.println(n.ui.ok.Render(fmt.Sprintf("%s Defect %s updated successfully!", iconOK, defectID)))
	} else {
		n.println(n.ui.fail.Render(fmt.Sprintf("%s Failed to update defect %s", iconFail, defectID)))
	}
	return Stay, n.pause()
}

// selectRCA shows the fixed option list and asks until a valid number is given.
// A blank answer cancels and returns "".
func (n *Navigator) selectRCA() (string, error) {
	n.println("\n" + n.ui.title.Render("Select Root Cause Analysis (RCA):"))
	rows := make([][]string, len(kualitee.RCAOptions))
	for i, option := range kualitee.RCAOptions {
		rows[i] = []string{strconv.Itoa(i + 1), option}
	}
	n.println(n.ui.Table([]string{"#", "RCA Option"}, rows))

	label := fmt.Sprintf("Select RCA option (1-%d, blank to cancel)", len(kualitee.RCAOptions))
	for {
		answer, err := n.prompt.Ask(label)
		if err != nil || answer == "" {
			return "", err
		}
		if _, convErr := strconv.Atoi(answer); convErr != nil {
			n.println(n.ui.fail.Render("Invalid input. Please enter a number."))
			continue
		}
		rca, err := kualitee.ResolveRCA(answer)
		if err != nil {
			n.println(n.ui.fail.Render(fmt.Sprintf("Please enter a number between 1 and %d", len(kualitee.RCAOptions))))
			continue
		}
		return rca, nil
	}
}

func (n *Navigator) updateBulkDefects(ctx context.Context) (Nav, error) {
	n.println("\n" + n.ui.title.Render("Required CSV Format:"))
	n.println(n.ui.Table(batch.DefectColumns, [][]string{
		{"265744", "close", "Configuration: Bug"},
		{"265745", "close", "Code: Bug"},
		{"265746", "close", "Design Issue: Code Change"},
	}))
	n.println(n.ui.dim.Render("Note: Status must be 'close' (case-insensitive). Header row must be: defect_id,status,RCA. .xlsx files use the first sheet."))

	path, err := n.prompt.Ask("Enter CSV or XLSX file path (blank to cancel)")
	if err != nil || path == "" {
		return Stay, err
	}
	path = batch.CleanPath(path)

	rows, err := batch.ReadDefectRows(path)
	if err != nil {
		n.println(n.ui.fail.Render(fmt.Sprintf("Cannot use %s: %v", path, err)))
		return Stay, n.pause()
	}

	n.println("\n" + n.ui.info.Render(fmt.Sprintf("Fetching details for %d defects...", len(rows))))
	snapshots := n.defects.GetDefects(ctx, batch.DefectIDs(rows), n.fetchWorkers)
	plan := batch.PlanDefectClosures(rows, snapshots)

	n.println("\n" + n.ui.label.Render("Preview:"))
	n.println(n.ui.Table(
		[]string{"Defect ID", "Current Status", "New Status", "RCA", "Result"},
		defectPreviewRows(plan, n.ui),
	))
	eligible := plan.Eligible()
	n.println(fmt.Sprintf("\n%s, %s",
		n.ui.ok.Render(fmt.Sprintf("%d to update", len(eligible))),
		n.ui.fail.Render(fmt.Sprintf("%d to skip", len(plan.Decisions)-len(eligible)))))

	if len(eligible) == 0 {
		n.println(n.ui.warn.Render("No valid defects to update"))
		return Stay, n.pause()
	}

	ok, err := n.confirm("Proceed with bulk update? (yes/no)", "yes")
	if err != nil {
		return Stay, err
	}
	if !ok {
		n.println(n.ui.warn.Render("Update cancelled"))
		return Stay, n.pause()
	}

	n.println("\n" + n.ui.info.Render("Updating defects..."))
	runCtx, stop := n.prompt.Cancelable(ctx)
	report, runErr := batch.Run(runCtx, plan, batch.DefectCloser{Updater: n.defects}, batch.RunOptions{
		Confirmed: true,
		Logger:    n.defectLog,
		Progress: func(r batch.Result) {
			if r.Outcome.Failed() {
				n.println(fmt.Sprintf("  Updating %s... %s", r.Key, n.ui.fail.Render(iconFail)))
			} else {
				n.println(fmt.Sprintf("  Updating %s... %s", r.Key, n.ui.ok.Render(iconOK)))
			}
		},
	})
	interrupted := stop()

	n.showSummary(report)
	if interrupted {
		return n.interrupted(), nil
	}
	if runErr != nil {
		return Stay, runErr
	}
	return Stay, n.pause()
}

func defectPreviewRows(plan batch.DefectPlan, ui *styles) [][]string {
	rows := make([][]string, 0, len(plan.Decisions))
	for _, d := range plan.Eligible() {
		rows = append(rows, []string{
			d.Row.DefectID,
			orNA(d.Target.DisplayStatus),
			d.Row.Status,
			format.Truncate(d.Row.RCA, rcaWidth),
			ui.ok.Render("Will Update"),
		})
	}
	for _, d := range plan.Skipped() {
		rows = append(rows, []string{d.Row.DefectID, "-", "-", "-", ui.fail.Render(d.SkipText())})
	}
	return rows
}

func (n *Navigator) showSummary(report *batch.Report) {
	if report == nil {
		return
	}
	n.println("\n" + n.ui.label.Render("Summary:"))
	n.println(n.ui.ok.Render(fmt.Sprintf("%s Success: %d", iconOK, report.Succeeded)))
	n.println(n.ui.fail.Render(fmt.Sprintf("%s Failed: %d", iconFail, report.Failed)))
	n.println(n.ui.warn.Render(fmt.Sprintf("- Skipped: %d", report.Skipped)))
	n.println(n.ui.dim.Render("Run ID: " + report.RunID))
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
