// SPDX-License-Identifier: Apache-2.0

package navigator

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/core/condition"
	"github.com/nischay/kualitee-cli/internal/core/format"
	"github.com/nischay/kualitee-cli/internal/kualitee"
)

const (
	// menuBack and menuRoot are the fixed keys of every list screen.
	menuBack = "9"
	menuRoot = "0"
)

func (n *Navigator) cycleMenu(ctx context.Context) (Nav, error) {
	for {
		n.clear()
		n.println(n.ui.Panel(AppTitle))
		n.println("\n" + n.ui.label.Render("Test Cycle Management Menu") + "\n")
		n.println("1. Select Test Cycle")
		n.println("2. Search Cycles by Name")
		n.println("0. Back to Main Menu")

		choice, err := n.prompt.Ask("Enter your choice")
		if err != nil {
			return Stay, err
		}

		var s screen
		switch choice {
		case "1":
			s = n.selectCycle
		case "2":
			s = n.searchCycles
		case "0":
			return Back, nil
		default:
			n.invalidChoice()
			continue
		}

		if nav, leave := n.submenu(ctx, s, n.cycleLog); leave {
			return nav, nil
		}
	}
}

func (n *Navigator) selectCycle(ctx context.Context) (Nav, error) {
	n.println("\n" + n.ui.info.Render("Fetching cycles..."))
	cycles := n.cycles.ListCycles(ctx)
	if len(cycles) == 0 {
		n.println(n.ui.warn.Render("No cycles found"))
		return Back, n.pause()
	}
	return n.cycleList(ctx, "Test Cycles - Select by Number", cycles)
}

func (n *Navigator) searchCycles(ctx context.Context) (Nav, error) {
	term, err := n.prompt.Ask("Enter cycle name to search (blank to cancel)")
	if err != nil || term == "" {
		return Stay, err
	}

	n.println("\n" + n.ui.info.Render(fmt.Sprintf("Searching for cycles containing '%s'...", term)))
	cycles := n.cycles.ListCycles(ctx)
	if len(cycles) == 0 {
		n.println(n.ui.warn.Render("No cycles found"))
		return Back, n.pause()
	}

	matches := kualitee.FilterCycles(cycles, term)
	if len(matches) == 0 {
		n.println(n.ui.warn.Render(fmt.Sprintf("No cycles found matching '%s'", term)))
		return Back, n.pause()
	}
	return n.cycleList(ctx, fmt.Sprintf("Search Results for '%s' - Select by Number", term), matches)
}

// cycleList lets the user pick a cycle until they go back. When the list is long
// enough for 9 to be a cycle number, "b" is the only way back.
func (n *Navigator) cycleList(ctx context.Context, title string, cycles []kualitee.Cycle) (Nav, error) {
	for {
		n.clear()
		n.println(n.ui.Panel(AppTitle))
		n.println("\n" + n.ui.title.Render(title))

		rows := make([][]string, len(cycles))
		for i, c := range cycles {
			rows[i] = []string{strconv.Itoa(i + 1), c.ID.String(), c.Name, c.Status}
		}
		n.println(n.ui.Table([]string{"#", "Cycle ID", "Cycle Name", "Status"}, rows))
		n.println("\n" + n.ui.ok.Render(fmt.Sprintf("Total cycles: %d", len(cycles))))

		backKey := menuBack
		if len(cycles) >= 9 {
			backKey = "b"
		}
		n.println("\n" + backKey + ". Back")
		n.println(menuRoot + ". Main Menu")

		choice, err := n.prompt.Ask(fmt.Sprintf("Select cycle (1-%d)", len(cycles)))
		if err != nil {
			return Stay, err
		}

		switch {
		case choice == "" || choice == backKey || strings.EqualFold(choice, "b"):
			return Back, nil
		case choice == menuRoot:
			return Root, nil
		}

		index, convErr := strconv.Atoi(choice)
		if convErr != nil || index < 1 || index > len(cycles) {
			n.println(n.ui.fail.Render("Invalid selection"))
			if err := n.pause(); err != nil {
				return Stay, err
			}
			continue
		}

		selected := cycles[index-1]
		if nav, leave := n.submenu(ctx, func(ctx context.Context) (Nav, error) {
			return n.cycleScreen(ctx, selected)
		}, n.cycleLog); leave {
			return nav, nil
		}
	}
}

func (n *Navigator) cycleScreen(ctx context.Context, cycle kualitee.Cycle) (Nav, error) {
	for {
		n.clear()
		n.println(n.ui.Panel(AppTitle,
			n.ui.warn.Render("Cycle:")+" "+cycle.Name,
			n.ui.warn.Render("ID:")+" "+cycle.ID.String()))

		n.println("\n" + n.ui.info.Render("Loading test cases..."))
		cases := n.cycles.ListTestCases(ctx, cycle.ID)
		if len(cases) == 0 {
			n.println(n.ui.warn.Render("No test cases found in this cycle"))
			return Back, n.pause()
		}

		n.println("\n" + n.ui.title.Render("Test Cases"))
		n.println(n.ui.Table(
			[]string{"#", "Test ID", "Test Name", "Status", "Summary", "Attachment", "Executed By"},
			testCaseRows(cases),
		))
		n.println("\n" + n.ui.ok.Render(fmt.Sprintf("Total test cases: %d", len(cases))))

		n.println("\n" + n.ui.label.Render("Cycle Actions:") + "\n")
		n.println("1. Execute single test (select by number)")
		n.println("2. Execute all tests (requires CSV file)")
		n.println("3. Search test by name")
		n.println("4. Filter tests by expression")
		n.println(menuBack + ". Back")
		n.println(menuRoot + ". Main Menu")

		choice, err := n.prompt.Ask("Enter your choice")
		if err != nil {
			return Stay, err
		}

		var s screen
		switch choice {
		case "1":
			s = func(ctx context.Context) (Nav, error) { return n.executeSingle(ctx, cycle.ID, cases) }
		case "2":
			s = func(ctx context.Context) (Nav, error) { return n.executeFromFile(ctx, cycle.ID, cases) }
		case "3":
			s = func(ctx context.Context) (Nav, error) { return n.searchTestCases(cases) }
		case "4":
			s = func(ctx context.Context) (Nav, error) { return n.filterTestCases(cases) }
		case menuBack:
			return Back, nil
		case menuRoot:
			return Root, nil
		default:
			n.invalidChoice()
			continue
		}

		if nav, leave := n.submenu(ctx, s, n.cycleLog); leave {
			return nav, nil
		}
	}
}

func testCaseRows(cases []kualitee.TestCase) [][]string {
	rows := make([][]string, len(cases))
	for i, tc := range cases {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			tc.TestCaseID.String(),
			tc.Name,
			tc.Status,
			format.MiddleTruncate(tc.Summary, summaryWidth),
			yesNo(tc.HasAttachment),
			tc.ExecutedBy,
		}
	}
	return rows
}

func (n *Navigator) executeSingle(ctx context.Context, cycleID kualitee.ID, cases []kualitee.TestCase) (Nav, error) {
	n.println(n.ui.dim.Render("Enter 0 or leave blank to cancel"))
	choice, err := n.prompt.Ask(fmt.Sprintf("Select test to execute (1-%d)", len(cases)))
	if err != nil || choice == "" || choice == "0" {
		return Stay, err
	}

	index, convErr := strconv.Atoi(choice)
	if convErr != nil || index < 1 || index > len(cases) {
		n.println(n.ui.fail.Render("Invalid selection"))
		return Stay, n.pause()
	}
	tc := cases[index-1]

	n.println("\n" + n.ui.warn.Render("Allowed file types:") + " " + strings.Join(kualitee.AllowedExtensions, ", "))
	path, err := n.prompt.Ask("Enter attachment file path (blank to cancel)")
	path = batch.CleanPath(path)
	if err != nil || path == "" {
		return Stay, err
	}

	if err := kualitee.CheckAttachment(path); err != nil {
		n.println(n.ui.fail.Render(err.Error()))
		return Stay, n.pause()
	}

	n.println("\n" + n.ui.info.Render(fmt.Sprintf("Executing test: %s...", tc.Name)))
	executionID, ok := n.cycles.ExecuteTestCase(ctx, tc.TestCaseID, tc.BuildID, cycleID, tc.ScenarioID)
	if !ok {
		n.println("\n" + n.ui.fail.Render(iconFail+" Test execution failed"))
		return Stay, n.pause()
	}
	n.println(n.ui.ok.Render(iconOK + " Test executed successfully!"))
	n.println("Execution ID: " + executionID.String())

	n.println("\n" + n.ui.info.Render(fmt.Sprintf("Uploading attachment: %s...", filepath.Base(path))))
	if n.cycles.UploadAttachment(ctx, tc.TestCaseID, cycleID, executionID, path) {
		n.println(n.ui.ok.Render(iconOK + " Attachment uploaded successfully!"))
	} else {
		n.println(n.ui.fail.Render(iconFail + " Attachment upload failed"))
	}
	return Stay, n.pause()
}

func (n *Navigator) executeFromFile(ctx context.Context, cycleID kualitee.ID, cases []kualitee.TestCase) (Nav, error) {
	n.println("\n" + n.ui.warn.Render("Allowed file types:") + " " + strings.Join(kualitee.AllowedExtensions, ", "))
	n.println("\n" + n.ui.title.Render("Required CSV Format:"))
	n.println(n.ui.Table(batch.ExecutionColumns, [][]string{
		{"TC_Android_01", "Passed", `C:\Screenshots\test1.png`},
		{"TC_Android_02", "Passed", `C:\Screenshots\test2.jpg`},
		{"TC_Android_03", "Passed", `C:\Screenshots\test3.png`},
	}))
	n.println(n.ui.dim.Render("Note: Use exact test case names from the list above. Status must be 'Passed' (case-sensitive)"))

	path, err := n.prompt.Ask("Enter CSV or XLSX file path (blank to cancel)")
	if err != nil || path == "" {
		return Stay, err
	}
	path = batch.CleanPath(path)

	rows, err := batch.ReadExecutionRows(path)
	if err != nil {
		n.println(n.ui.fail.Render(fmt.Sprintf("Cannot use %s: %v", path, err)))
		return Stay, n.pause()
	}

	plan := batch.PlanExecutions(rows, cases, n.stat)

	n.println("\n" + n.ui.label.Render("Preview:"))
	n.println(n.ui.Table([]string{"Test Case Name", "Status", "Attachment", "File Size"}, n.executionPreviewRows(plan)))
	eligible := plan.Eligible()
	n.println(fmt.Sprintf("\n%s, %s",
		n.ui.ok.Render(fmt.Sprintf("%d to execute", len(eligible))),
		n.ui.fail.Render(fmt.Sprintf("%d to skip", len(plan.Decisions)-len(eligible)))))

	if len(eligible) == 0 {
		n.println(n.ui.warn.Render("Nothing to execute"))
		return Stay, n.pause()
	}

	ok, err := n.confirm("Proceed with execution? (y/n)", "y", "yes")
	if err != nil {
		return Stay, err
	}
	if !ok {
		n.println(n.ui.warn.Render("Cancelled"))
		return Stay, n.pause()
	}

	n.println("\n" + n.ui.label.Render("Executing tests:") + "\n")
	runCtx, stop := n.prompt.Cancelable(ctx)
	report, runErr := batch.Run(runCtx, plan, batch.TestExecutionRunner{Runner: n.cycles, CycleID: cycleID}, batch.RunOptions{
		Confirmed: true,
		Logger:    n.cycleLog,
		Progress: func(r batch.Result) {
			n.println(n.ui.info.Render(fmt.Sprintf("Processing: %s...", r.Key)))
			switch r.Outcome {
			case batch.Succeeded:
				n.println("  " + n.ui.ok.Render(iconOK+" Executed & uploaded"))
			case batch.FailedAtAttachment:
				n.println("  " + n.ui.warn.Render(iconOK+" Executed but upload failed"))
			default:
				n.println("  " + n.ui.fail.Render(iconFail+" Execution failed"))
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

func (n *Navigator) executionPreviewRows(plan batch.ExecutionPlan) [][]string {
	rows := make([][]string, 0, len(plan.Decisions))
	for _, d := range plan.Eligible() {
		size := ""
		if info, err := n.stat(d.Target.Attachment); err == nil {
			size = fmt.Sprintf("%.1f KB", float64(info.Size())/1024)
		}
		rows = append(rows, []string{
			d.Row.TestCaseName,
			n.ui.ok.Render("Will Execute"),
			filepath.Base(d.Target.Attachment),
			size,
		})
	}
	for _, d := range plan.Skipped() {
		rows = append(rows, []string{
			d.Row.TestCaseName,
			n.ui.fail.Render(d.SkipText()),
			d.Row.Attachment,
			"",
		})
	}
	return rows
}

func (n *Navigator) searchTestCases(cases []kualitee.TestCase) (Nav, error) {
	term, err := n.prompt.Ask("Enter test name to search (blank to cancel)")
	if err != nil || term == "" {
		return Stay, err
	}

	matches := kualitee.FilterTestCases(cases, term)
	if len(matches) == 0 {
		n.println(n.ui.warn.Render(fmt.Sprintf("No tests found matching '%s'", term)))
		return Stay, n.pause()
	}

	n.showTestCaseMatches(fmt.Sprintf("Search Results for '%s'", term), matches)
	return Stay, n.pause()
}

func (n *Navigator) filterTestCases(cases []kualitee.TestCase) (Nav, error) {
	n.println(n.ui.dim.Render("CEL over each test case as 'item', e.g. item.status == 'Not Executed' && item.attachments_exist == '0'"))
	expr, err := n.prompt.Ask("Enter filter expression (blank to cancel)")
	if err != nil || expr == "" {
		return Stay, err
	}

	matches, err := condition.Filter(expr, cases, func(tc kualitee.TestCase) map[string]interface{} {
		return kualitee.PlainFields(tc.Fields)
	})
	if err != nil {
		n.println(n.ui.fail.Render(err.Error()))
		return Stay, n.pause()
	}
	if len(matches) == 0 {
		n.println(n.ui.warn.Render("No tests match the expression"))
		return Stay, n.pause()
	}

	n.showTestCaseMatches("Filter Results", matches)
	return Stay, n.pause()
}

func (n *Navigator) showTestCaseMatches(title string, matches []kualitee.TestCase) {
	rows := make([][]string, len(matches))
	for i, tc := range matches {
		rows[i] = []string{strconv.Itoa(i + 1), tc.TestCaseID.String(), tc.Name, tc.Status}
	}
	n.println("\n" + n.ui.title.Render(title))
	n.println(n.ui.Table([]string{"#", "Test ID", "Test Name", "Status"}, rows))
	n.println("\n" + n.ui.ok.Render(fmt.Sprintf("Found %d test case(s)", len(matches))))
}
