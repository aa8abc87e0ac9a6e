// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nischay/kualitee-cli/internal/logging"
)

// ErrNotConfirmed is returned when a run was not confirmed by the user.
var ErrNotConfirmed = errors.New("batch run not confirmed")

// Applier performs the remote writes for one eligible decision.
type Applier[R Row, T any] interface {
	Apply(ctx context.Context, d Decision[R, T]) Outcome
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc[R Row, T any] func(ctx context.Context, d Decision[R, T]) Outcome

func (f ApplierFunc[R, T]) Apply(ctx context.Context, d Decision[R, T]) Outcome {
	return f(ctx, d)
}

// RunOptions controls a batch run.
type RunOptions struct {
	// Confirmed must be set; an unconfirmed run does nothing.
	Confirmed bool
	Logger    *slog.Logger
	// Progress is called after each processed row.
	Progress func(Result)
}

// Run applies the eligible decisions of plan one at a time, in input order.
// Failures are recorded and the run moves on; nothing is retried. If ctx is
// cancelled the run stops before the next row and returns the partial report
// with ctx.Err().
func Run[R Row, T any](ctx context.Context, plan Plan[R, T], applier Applier[R, T], opts RunOptions) (*Report, error) {
	if !opts.Confirmed {
		return nil, ErrNotConfirmed
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	eligible := plan.Eligible()
	report := &Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, 0, len(eligible)),
		Skipped: len(plan.Decisions) - len(eligible),
	}
	logger = logger.With("run_id", report.RunID)
	logger.Info("batch run started", "eligible", len(eligible), "skipped", report.Skipped)

	for _, d := range eligible {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch run interrupted", "processed", len(report.Results), "remaining", len(eligible)-len(report.Results))
			return report, err
		}

		outcome := applier.Apply(ctx, d)
		result := Result{Line: d.Row.LineNumber(), Key: d.Row.Key(), Outcome: outcome}
		report.Results = append(report.Results, result)
		if outcome.Failed() {
			report.Failed++
			logger.Error("batch row failed", "line", result.Line, "target", result.Key, "outcome", outcome.String())
		} else {
			report.Succeeded++
			logger.Info("batch row succeeded", "line", result.Line, "target", result.Key)
		}

		if opts.Progress != nil {
			opts.Progress(result)
		}
	}

	logger.Info("batch run finished", "succeeded", report.Succeeded, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}
