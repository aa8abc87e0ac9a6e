// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nischay/kualitee-cli/internal/app"
	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/core/format"
	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/spf13/cobra"
)

func newExecuteCmd(rt *app.Runtime) *cobra.Command {
	var attachment string

	cmd := &cobra.Command{
		Use:   "execute [cycle-id] [test-case-name]",
		Short: "Mark one test case as passed and attach evidence",
		Long: `Mark one test case of a cycle as Passed and upload an attachment to the new
execution. The name must match exactly one test case of the cycle.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycleID := kualitee.ID(args[0])
			cases := rt.Cycles.ListTestCases(cmd.Context(), cycleID)

			plan := batch.PlanExecutions([]batch.ExecutionRow{{
				Line:         1,
				TestCaseName: args[1],
				Status:       kualitee.StatusPassed,
				Attachment:   attachment,
			}}, cases, rt.StatFunc())
			if skipped := plan.Skipped(); len(skipped) > 0 {
				return fmt.Errorf("cannot execute %q: %s", args[1], strings.TrimPrefix(skipped[0].SkipText(), "Skip: "))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Executing test: %s...\n", args[1])
			report, err := batch.Run(cmd.Context(), plan, batch.TestExecutionRunner{Runner: rt.Cycles, CycleID: cycleID}, batch.RunOptions{
				Confirmed: true,
				Logger:    rt.CycleLogger(),
			})
			if err != nil {
				return err
			}

			switch outcome := report.Results[0].Outcome; outcome {
			case batch.Succeeded:
				fmt.Fprintf(out, "✓ Executed and uploaded %s\n", filepath.Base(attachment))
				return nil
			case batch.FailedAtAttachment:
				return fmt.Errorf("test case %q was executed but the attachment upload failed", args[1])
			default:
				return fmt.Errorf("test case %q: %s", args[1], outcome)
			}
		},
	}

	cmd.Flags().StringVarP(&attachment, "attachment", "a", "", "evidence file to upload ("+strings.Join(kualitee.AllowedExtensions, ", ")+")")
	_ = cmd.MarkFlagRequired("attachment")
	return cmd
}

func newBulkExecuteCmd(rt *app.Runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "bulk-execute [cycle-id] [file]",
		Short: "Execute the test cases listed in a CSV or XLSX file",
		Long: `Mark every test case listed in a CSV or XLSX file with the columns
test_case_name,status,attachment as Passed and upload its attachment. Rows whose
status is not exactly "Passed", whose attachment is missing or not allowed, or
whose name does not match exactly one test case are skipped. A preview is shown
before anything is changed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycleID := kualitee.ID(args[0])
			rows, err := batch.ReadExecutionRows(args[1])
			if err != nil {
				return fmt.Errorf("cannot use %s: %w", args[1], err)
			}

			out := cmd.OutOrStdout()
			cases := rt.Cycles.ListTestCases(cmd.Context(), cycleID)
			plan := batch.PlanExecutions(rows, cases, rt.StatFunc())

			format.Table(out, []string{"Test Case Name", "Status", "Attachment", "File Size"}, previewRows(plan, rt.StatFunc()))
			eligible := len(plan.Eligible())
			app.PrintCounts(out, "execute", eligible, len(plan.Decisions)-eligible)
			if eligible == 0 {
				fmt.Fprintln(out, "Nothing to execute")
				return nil
			}

			if !yes {
				ok, err := app.Confirm(cmd.InOrStdin(), out, "Proceed with execution? (y/n)", "y", "yes")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := batch.Run(ctx, plan, batch.TestExecutionRunner{Runner: rt.Cycles, CycleID: cycleID}, batch.RunOptions{
				Confirmed: true,
				Logger:    rt.CycleLogger(),
				Progress:  func(r batch.Result) { printProgress(out, r) },
			})
			app.PrintReport(out, report)
			if err != nil {
				return fmt.Errorf("bulk execution interrupted: %w", err)
			}
			return app.ReportError(report)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func printProgress(out io.Writer, r batch.Result) {
	var status string
	switch r.Outcome {
	case batch.Succeeded:
		status = format.Colorize(out, text.FgGreen, "✓ Executed & uploaded")
	case batch.FailedAtAttachment:
		status = format.Colorize(out, text.FgYellow, "✓ Executed but upload failed")
	default:
		status = format.Colorize(out, text.FgRed, "✗ Execution failed")
	}
	fmt.Fprintf(out, "  %s... %s\n", r.Key, status)
}

func previewRows(plan batch.ExecutionPlan, stat batch.StatFunc) [][]string {
	rows := make([][]string, 0, len(plan.Decisions))
	for _, d := range plan.Eligible() {
		size := ""
		if info, err := stat(d.Target.Attachment); err == nil {
			size = fmt.Sprintf("%.1f KB", float64(info.Size())/1024)
		}
		rows = append(rows, []string{d.Row.TestCaseName, "Will Execute", filepath.Base(d.Target.Attachment), size})
	}
	for _, d := range plan.Skipped() {
		rows = append(rows, []string{d.Row.TestCaseName, d.SkipText(), d.Row.Attachment, ""})
	}
	return rows
}
