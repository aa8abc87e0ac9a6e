// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nischay/kualitee-cli/internal/app"
	"github.com/nischay/kualitee-cli/internal/core/condition"
	"github.com/nischay/kualitee-cli/internal/core/format"
	"github.com/nischay/kualitee-cli/internal/core/template"
	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/spf13/cobra"
)

const summaryWidth = 50

// NewCycleCmd creates the cycle command
func NewCycleCmd(rt *app.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Browse test cycles and execute test cases",
		Long:  `List test cycles and their test cases, and mark test cases as passed with evidence attached.`,
	}

	cmd.AddCommand(newListCmd(rt))
	cmd.AddCommand(newCasesCmd(rt))
	cmd.AddCommand(newExecuteCmd(rt))
	cmd.AddCommand(newBulkExecuteCmd(rt))

	return cmd
}

func newListCmd(rt *app.Runtime) *cobra.Command {
	var (
		search   string
		where    string
		output   string
		lineTmpl string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the test cycles of the project",
		Long: `List the test cycles of the project. --search matches the cycle name ignoring
case; --where takes a CEL expression over the raw fields, e.g.
item.cycle_name.startsWith("Sprint").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.ValidOutput(output) {
				return fmt.Errorf("invalid output format %q (use text, yaml or json)", output)
			}

			cycles := rt.Cycles.ListCycles(cmd.Context())
			if search != "" {
				cycles = kualitee.FilterCycles(cycles, search)
			}
			cycles, err := condition.Filter(where, cycles, func(c kualitee.Cycle) map[string]interface{} {
				return kualitee.PlainFields(c.Fields)
			})
			if err != nil {
				return fmt.Errorf("invalid --where expression: %w", err)
			}

			out := cmd.OutOrStdout()
			items := make([]map[string]any, len(cycles))
			for i, c := range cycles {
				items[i] = kualitee.PlainFields(c.Fields)
			}
			if lineTmpl != "" {
				return template.RenderEach(out, lineTmpl, items)
			}
			if output != format.OutputText {
				return printData(out, items, output)
			}

			if len(cycles) == 0 {
				fmt.Fprintln(out, "No cycles found")
				return nil
			}
			rows := make([][]string, len(cycles))
			for i, c := range cycles {
				rows[i] = []string{c.ID.String(), c.Name, c.Status}
			}
			format.Table(out, []string{"ID", "Name", "Status"}, rows)
			fmt.Fprintf(out, "Total: %d\n", len(cycles))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "keep cycles whose name contains this text")
	cmd.Flags().StringVar(&where, "where", "", "CEL expression selecting cycles")
	cmd.Flags().StringVarP(&output, "output", "o", format.OutputText, "output format: text, yaml or json")
	cmd.Flags().StringVar(&lineTmpl, "template", "", "Go template printed once per cycle, e.g. '{{.id}} {{.cycle_name}}'")
	return cmd
}

func newCasesCmd(rt *app.Runtime) *cobra.Command {
	var (
		search   string
		where    string
		output   string
		lineTmpl string
	)

	cmd := &cobra.Command{
		Use:   "cases [cycle-id]",
		Short: "List the test cases of a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.ValidOutput(output) {
				return fmt.Errorf("invalid output format %q (use text, yaml or json)", output)
			}

			cases := rt.Cycles.ListTestCases(cmd.Context(), kualitee.ID(args[0]))
			if search != "" {
				cases = kualitee.FilterTestCases(cases, search)
			}
			cases, err := condition.Filter(where, cases, func(tc kualitee.TestCase) map[string]interface{} {
				return kualitee.PlainFields(tc.Fields)
			})
			if err != nil {
				return fmt.Errorf("invalid --where expression: %w", err)
			}

			out := cmd.OutOrStdout()
			items := make([]map[string]any, len(cases))
			for i, tc := range cases {
				items[i] = kualitee.PlainFields(tc.Fields)
			}
			if lineTmpl != "" {
				return template.RenderEach(out, lineTmpl, items)
			}
			if output != format.OutputText {
				return printData(out, items, output)
			}

			if len(cases) == 0 {
				fmt.Fprintf(out, "No test cases found in cycle %s\n", args[0])
				return nil
			}
			format.Table(out, []string{"#", "Test ID", "Test Name", "Status", "Summary", "Attachment", "Executed By"}, caseRows(cases))
			fmt.Fprintf(out, "Total: %d\n", len(cases))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "keep test cases whose name contains this text")
	cmd.Flags().StringVar(&where, "where", "", "CEL expression selecting test cases")
	cmd.Flags().StringVarP(&output, "output", "o", format.OutputText, "output format: text, yaml or json")
	cmd.Flags().StringVar(&lineTmpl, "template", "", "Go template printed once per test case, e.g. '{{.tc_name}}'")
	return cmd
}

func caseRows(cases []kualitee.TestCase) [][]string {
	rows := make([][]string, len(cases))
	for i, tc := range cases {
		attachment := "No"
		if tc.HasAttachment {
			attachment = "Yes"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			tc.TestCaseID.String(),
			tc.Name,
			tc.Status,
			format.MiddleTruncate(tc.Summary, summaryWidth),
			attachment,
			tc.ExecutedBy,
		}
	}
	return rows
}

func printData(out io.Writer, v interface{}, output string) error {
	data, err := format.FormatData(v, output)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, data)
	return nil
}
