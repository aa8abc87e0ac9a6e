// SPDX-License-Identifier: Apache-2.0

package defect

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

const descriptionWidth = 60

// NewDefectCmd creates the defect command
func NewDefectCmd(rt *app.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defect",
		Short: "Inspect and close defects",
		Long:  `Show, list and close Kualitee defects, one at a time or from a CSV/XLSX file.`,
	}

	cmd.AddCommand(newShowCmd(rt))
	cmd.AddCommand(newListCmd(rt))
	cmd.AddCommand(newCloseCmd(rt))
	cmd.AddCommand(newBulkCloseCmd(rt))
	cmd.AddCommand(newRCAOptionsCmd())

	return cmd
}

func newShowCmd(rt *app.Runtime) *cobra.Command {
	var (
		output   string
		lineTmpl string
	)

	cmd := &cobra.Command{
		Use:   "show [defect-id]",
		Short: "Show the details of a defect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.ValidOutput(output) {
				return fmt.Errorf("invalid output format %q (use text, yaml or json)", output)
			}

			d := rt.Defects.GetDefect(cmd.Context(), args[0])
			if d == nil {
				return fmt.Errorf("no defect found with ID: %s", args[0])
			}

			out := cmd.OutOrStdout()
			if lineTmpl != "" {
				data, err := template.ProcessString(lineTmpl, kualitee.PlainFields(d.Fields))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if output == format.OutputText {
				printDefect(out, d, rt.RCAField())
				return nil
			}

			data, err := format.FormatData(kualitee.PlainFields(d.Fields), output)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, data)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", format.OutputText, "output format: text, yaml or json")
	cmd.Flags().StringVar(&lineTmpl, "template", "", "Go template over the defect's fields, e.g. '{{.id}} {{.uc_status}}'")
	return cmd
}

func printDefect(out io.Writer, d *kualitee.Defect, rcaField string) {
	rows := [][]string{
		{"ID", d.ID.String()},
		{"Title", format.Truncate(d.Description, 100)},
		{"Status", d.DisplayStatus},
		{"Severity", d.Severity},
		{"Priority", d.Priority},
		{"Type", d.Type},
		{"OS", d.OS},
		{"Devices", d.Devices},
		{"Created", d.CreatedOn},
		{"Aging", d.Aging},
		{"Build", d.BuildName},
		{"Module", d.ModuleName},
		{"Cycle", d.CycleName},
		{"RCA", d.Field(rcaField)},
	}
	for _, f := range d.CustomFields {
		if f.Value != "" && f.Label != "" {
			rows = append(rows, []string{f.Label, f.Value})
		}
	}
	for i := range rows {
		if rows[i][1] == "" {
			rows[i][1] = "N/A"
		}
	}
	format.Table(out, []string{"Field", "Value"}, rows)

	if len(d.Comments) > 0 {
		fmt.Fprintf(out, "\nComments (%d):\n", len(d.Comments))
		for _, c := range d.Comments {
			fmt.Fprintf(out, "  [%s] %s → %s\n", c.Date, c.CommentedBy, c.Status)
			if c.Text != "" {
				fmt.Fprintf(out, "    %s\n", c.Text)
			}
		}
	}
}

func newListCmd(rt *app.Runtime) *cobra.Command {
	var (
		where    string
		output   string
		lineTmpl string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the defects of the project",
		Long: `List the defects of the project. --where takes a CEL expression evaluated
against each defect's raw fields, e.g. item.status == "open". --template prints
one line per defect from a Go template over the same fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !format.ValidOutput(output) {
				return fmt.Errorf("invalid output format %q (use text, yaml or json)", output)
			}

			defects := rt.Defects.ListDefects(cmd.Context())
			defects, err := condition.Filter(where, defects, func(d kualitee.Defect) map[string]interface{} {
				return kualitee.PlainFields(d.Fields)
			})
			if err != nil {
				return fmt.Errorf("invalid --where expression: %w", err)
			}

			out := cmd.OutOrStdout()
			items := make([]map[string]any, len(defects))
			for i, d := range defects {
				items[i] = kualitee.PlainFields(d.Fields)
			}
			if lineTmpl != "" {
				return template.RenderEach(out, lineTmpl, items)
			}
			if output != format.OutputText {
				data, err := format.FormatData(items, output)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, data)
				return nil
			}

			if len(defects) == 0 {
				fmt.Fprintln(out, "No defects found")
				return nil
			}
			rows := make([][]string, len(defects))
			for i, d := range defects {
				rows[i] = []string{
					d.ID.String(),
					d.DisplayStatus,
					d.Severity,
					d.Priority,
					format.Truncate(d.Description, descriptionWidth),
				}
			}
			format.Table(out, []string{"ID", "Status", "Severity", "Priority", "Description"}, rows)
			fmt.Fprintf(out, "Total: %d\n", len(defects))
			return nil
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "CEL expression selecting defects")
	cmd.Flags().StringVarP(&output, "output", "o", format.OutputText, "output format: text, yaml or json")
	cmd.Flags().StringVar(&lineTmpl, "template", "", "Go template printed once per defect, e.g. '{{.id}} {{.status}}'")
	return cmd
}

func newRCAOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rca-options",
		Short: "List the root cause options accepted by close",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, len(kualitee.RCAOptions))
			for i, option := range kualitee.RCAOptions {
				rows[i] = []string{strconv.Itoa(i + 1), option}
			}
			format.Table(cmd.OutOrStdout(), []string{"#", "RCA Option"}, rows)
			return nil
		},
	}
}
