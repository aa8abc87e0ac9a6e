// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/core/format"
)

// Confirm prints label, reads one line from in and reports whether it matches
// one of accepted, ignoring case. Empty input declines.
func Confirm(in io.Reader, out io.Writer, label string, accepted ...string) (bool, error) {
	fmt.Fprintf(out, "%s: ", label)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("error reading confirmation: %w", err)
	}
	answer := strings.TrimSpace(line)
	for _, a := range accepted {
		if strings.EqualFold(answer, a) {
			return true, nil
		}
	}
	return false, nil
}

// PrintCounts prints the eligible/skipped split of a preview.
func PrintCounts(out io.Writer, verb string, eligible, skipped int) {
	fmt.Fprintf(out, "%s, %s\n",
		format.Colorize(out, text.FgGreen, fmt.Sprintf("%d to %s", eligible, verb)),
		format.Colorize(out, text.FgRed, fmt.Sprintf("%d to skip", skipped)))
}

// PrintReport prints the totals of a batch run.
func PrintReport(out io.Writer, report *batch.Report) {
	if report == nil {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, format.Colorize(out, text.FgHiBlue, "Summary:"))
	fmt.Fprintln(out, format.Colorize(out, text.FgGreen, fmt.Sprintf("✓ Success: %d", report.Succeeded)))
	fmt.Fprintln(out, format.Colorize(out, text.FgRed, fmt.Sprintf("✗ Failed: %d", report.Failed)))
	fmt.Fprintln(out, format.Colorize(out, text.FgYellow, fmt.Sprintf("- Skipped: %d", report.Skipped)))
	fmt.Fprintln(out, format.Colorize(out, text.FgHiBlack, "Run ID: "+report.RunID))
}

// ReportError turns failed rows into an error so scripts see a non-zero exit.
func ReportError(report *batch.Report) error {
	if report == nil || report.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d rows failed, see the log for details", report.Failed, report.Failed+report.Succeeded)
}
