// SPDX-License-Identifier: Apache-2.0

package defect

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nischay/kualitee-cli/internal/app"
	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/core/format"
	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/spf13/cobra"
)

func newCloseCmd(rt *app.Runtime) *cobra.Command {
	var (
		rcaInput string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "close [defect-id]",
		Short: "Close a defect with a root cause",
		Long: `Close a single defect. --rca takes an option number (see rca-options) or the
exact option text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defectID := args[0]
			rca, err := kualitee.ResolveRCA(rcaInput)
			if err != nil {
				return err
			}

			d := rt.Defects.GetDefect(cmd.Context(), defectID)
			if d == nil {
				return fmt.Errorf("no defect found with ID: %s", defectID)
			}

			out := cmd.OutOrStdout()
			if d.IsClosed() {
				fmt.Fprintf(out, "Defect %s is already closed. No update needed.\n", defectID)
				return nil
			}

			if !yes {
				fmt.Fprintf(out, "About to close defect %s (currently %s) with RCA: %s\n", defectID, d.DisplayStatus, rca)
				ok, err := app.Confirm(cmd.InOrStdin(), out, "Proceed? (y/n)", "y")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Update cancelled")
					return nil
				}
			}

			if !rt.Defects.UpdateDefect(cmd.Context(), defectID, kualitee.StatusClose, rca, d) {
				return fmt.Errorf("failed to update defect %s", defectID)
			}
			fmt.Fprintf(out, "Defect %s updated successfully\n", defectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&rcaInput, "rca", "", "root cause: option number or exact text")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("rca")
	return cmd
}

func newBulkCloseCmd(rt *app.Runtime) *cobra.Command {
	var (
		yes     bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "bulk-close [file]",
		Short: "Close the defects listed in a CSV or XLSX file",
		Long: `Close every defect listed in a CSV or XLSX file with the columns
defect_id,status,RCA. Rows whose status is not "close", whose defect does not
exist or is already closed are skipped. A preview is shown before anything is
changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := batch.ReadDefectRows(args[0])
			if err != nil {
				return fmt.Errorf("cannot use %s: %w", args[0], err)
			}
			if workers <= 0 {
				workers = rt.FetchWorkers()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetching details for %d defects...\n", len(rows))
			snapshots := rt.Defects.GetDefects(cmd.Context(), batch.DefectIDs(rows), workers)
			plan := batch.PlanDefectClosures(rows, snapshots)

			format.Table(out, []string{"Defect ID", "Current Status", "New Status", "RCA", "Result"}, previewRows(plan))
			eligible := len(plan.Eligible())
			app.PrintCounts(out, "update", eligible, len(plan.Decisions)-eligible)
			if eligible == 0 {
				fmt.Fprintln(out, "No valid defects to update")
				return nil
			}

			if !yes {
				ok, err := app.Confirm(cmd.InOrStdin(), out, "Proceed with bulk update? (yes/no)", "yes")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Update cancelled")
					return nil
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := batch.Run(ctx, plan, batch.DefectCloser{Updater: rt.Defects}, batch.RunOptions{
				Confirmed: true,
				Logger:    rt.DefectLogger(),
				Progress: func(r batch.Result) {
					mark := format.Colorize(out, text.FgGreen, "✓")
					if r.Outcome.Failed() {
						mark = format.Colorize(out, text.FgRed, "✗")
					}
					fmt.Fprintf(out, "  Updating %s... %s\n", r.Key, mark)
				},
			})
			app.PrintReport(out, report)
			if err != nil {
				return fmt.Errorf("bulk update interrupted: %w", err)
			}
			return app.ReportError(report)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent detail fetches (default from fetch_workers)")
	return cmd
}

func previewRows(plan batch.DefectPlan) [][]string {
	rows := make([][]string, 0, len(plan.Decisions))
	for _, d := range plan.Eligible() {
		rows = append(rows, []string{
			d.Row.DefectID,
			d.Target.DisplayStatus,
			d.Row.Status,
			format.Truncate(d.Row.RCA, 40),
			"Will Update",
		})
	}
	for _, d := range plan.Skipped() {
		rows = append(rows, []string{d.Row.DefectID, "-", "-", "-", d.SkipText()})
	}
	return rows
}
