// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"

	"github.com/nischay/kualitee-cli/internal/kualitee"
)

// Reason explains why a row was skipped.
type Reason string

const (
	ReasonInvalidStatus    Reason = "invalid status"
	ReasonNotFound         Reason = "not found"
	ReasonAlreadyClosed    Reason = "already closed"
	ReasonTestCaseNotFound Reason = "test case not found"
	ReasonFileNotFound     Reason = "file not found"
	ReasonInvalidFileType  Reason = "invalid file type"
)

// Row is one line of bulk input.
type Row interface {
	// LineNumber is the 1-based line in the source file, header included.
	LineNumber() int
	// Key names the row's target for display and logs.
	Key() string
}

// DefectRow requests closing one defect.
type DefectRow struct {
	Line     int
	DefectID string
	Status   string
	RCA      string
}

func (r DefectRow) LineNumber() int { return r.Line }
func (r DefectRow) Key() string     { return r.DefectID }

// ExecutionRow requests a Passed execution of a test case with an attachment.
type ExecutionRow struct {
	Line         int
	TestCaseName string
	Status       string
	Attachment   string
}

func (r ExecutionRow) LineNumber() int { return r.Line }
func (r ExecutionRow) Key() string     { return r.TestCaseName }

// ExecutionTarget is what an eligible execution row resolved to.
type ExecutionTarget struct {
	Case       kualitee.TestCase
	Attachment string
}

// Decision is the validation verdict for one row. Target is only set when
// Eligible is true; Reason and Detail only when it is false.
type Decision[R Row, T any] struct {
	Row      R
	Eligible bool
	Target   T
	Reason   Reason
	Detail   string
}

// SkipText describes a skipped decision for previews, e.g.
// "Skip: file not found (shot.png)".
func (d Decision[R, T]) SkipText() string {
	if d.Detail == "" {
		return "Skip: " + string(d.Reason)
	}
	return fmt.Sprintf("Skip: %s (%s)", d.Reason, d.Detail)
}

// Plan holds one decision per input row, in input order.
type Plan[R Row, T any] struct {
	Decisions []Decision[R, T]
}

// Eligible returns the eligible decisions in input order.
func (p Plan[R, T]) Eligible() []Decision[R, T] {
	return p.filter(true)
}

// Skipped returns the skipped decisions in input order.
func (p Plan[R, T]) Skipped() []Decision[R, T] {
	return p.filter(false)
}

func (p Plan[R, T]) filter(eligible bool) []Decision[R, T] {
	out := make([]Decision[R, T], 0, len(p.Decisions))
	for _, d := range p.Decisions {
		if d.Eligible == eligible {
			out = append(out, d)
		}
	}
	return out
}

func (p *Plan[R, T]) accept(row R, target T) {
	p.Decisions = append(p.Decisions, Decision[R, T]{Row: row, Eligible: true, Target: target})
}

func (p *Plan[R, T]) skip(row R, reason Reason, detail string) {
	p.Decisions = append(p.Decisions, Decision[R, T]{Row: row, Reason: reason, Detail: detail})
}

type (
	// DefectPlan is a validated defect closure batch.
	DefectPlan = Plan[DefectRow, *kualitee.Defect]
	// ExecutionPlan is a validated test execution batch.
	ExecutionPlan = Plan[ExecutionRow, ExecutionTarget]
)

// Outcome classifies how an eligible row ended.
type Outcome int

const (
	Succeeded Outcome = iota
	FailedAtExecution
	FailedAtAttachment
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case FailedAtExecution:
		return "failed at execution"
	case FailedAtAttachment:
		return "failed at attachment"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome counts as a failure.
func (o Outcome) Failed() bool {
	return o != Succeeded
}

// Result is the outcome of one processed row.
type Result struct {
	Line    int
	Key     string
	Outcome Outcome
}

// Report summarises one batch run.
type Report struct {
	RunID     string
	Results   []Result
	Succeeded int
	Failed    int
	Skipped   int
}
