// SPDX-License-Identifier: Apache-2.0

// Package navigator implements the interactive, menu driven front end.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/nischay/kualitee-cli/internal/logging"
)

// AppTitle heads every screen.
const AppTitle = "Kualitee Management Tool"

// DefectService is the defect side of the gateway.
type DefectService interface {
	GetDefect(ctx context.Context, defectID string) *kualitee.Defect
	GetDefects(ctx context.Context, defectIDs []string, limit int) map[string]*kualitee.Defect
	UpdateDefect(ctx context.Context, defectID, status, rca string, snapshot *kualitee.Defect) bool
}

// CycleService is the test cycle side of the gateway.
type CycleService interface {
	ListCycles(ctx context.Context) []kualitee.Cycle
	ListTestCases(ctx context.Context, cycleID kualitee.ID) []kualitee.TestCase
	ExecuteTestCase(ctx context.Context, caseID, buildID, cycleID, scenarioID kualitee.ID) (kualitee.ID, bool)
	UploadAttachment(ctx context.Context, caseID, cycleID, executionID kualitee.ID, filePath string) bool
}

// Options wires a Navigator.
type Options struct {
	Defects DefectService
	Cycles  CycleService

	In         io.Reader
	Out        io.Writer
	Interrupts <-chan os.Signal
	// Now is the session clock; nil means time.Now.
	Now func() time.Time

	DefectLogger *slog.Logger
	CycleLogger  *slog.Logger

	FetchWorkers int
	RCAField     string
	// Stat checks attachment files; nil means os.Stat.
	Stat batch.StatFunc
}

// Navigator runs the menus.
type Navigator struct {
	defects DefectService
	cycles  CycleService

	out     io.Writer
	prompt  *Prompter
	session *Session
	ui      *styles

	defectLog *slog.Logger
	cycleLog  *slog.Logger

	fetchWorkers int
	rcaField     string
	stat         batch.StatFunc
}

// New creates a navigator from opts.
func New(opts Options) *Navigator {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.DefectLogger == nil {
		opts.DefectLogger = logging.Discard()
	}
	if opts.CycleLogger == nil {
		opts.CycleLogger = logging.Discard()
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = kualitee.DefaultFetchWorkers
	}
	if opts.RCAField == "" {
		opts.RCAField = kualitee.DefaultRCAField
	}
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}

	return &Navigator{
		defects:      opts.Defects,
		cycles:       opts.Cycles,
		out:          opts.Out,
		prompt:       NewPrompter(opts.In, opts.Out, opts.Interrupts),
		session:      NewSession(opts.Now),
		ui:           newStyles(opts.Out),
		defectLog:    opts.DefectLogger,
		cycleLog:     opts.CycleLogger,
		fetchWorkers: opts.FetchWorkers,
		rcaField:     opts.RCAField,
		stat:         opts.Stat,
	}
}

// screen is one step of the interface. A returned error is reported by the
// caller, which then stays in its menu.
type screen func(ctx context.Context) (Nav, error)

// Run shows the main menu until the user leaves. It returns nil on a normal exit.
func (n *Navigator) Run(ctx context.Context) error {
	for {
		n.clear()
		n.println(n.ui.Panel(AppTitle))
		n.println("\n" + n.ui.label.Render("Select Module") + "\n")
		n.println("1. Test Cycle Management")
		n.println("2. Defect Management")
		n.println("0. Exit")

		choice, err := n.prompt.Ask("Enter your choice")
		var nav Nav
		switch {
		case err != nil:
			nav = n.resolve(err, nil)
		case choice == "1":
			nav = n.enter(ctx, n.cycleMenu, n.cycleLog)
		case choice == "2":
			nav = n.enter(ctx, n.defectMenu, n.defectLog)
		case choice == "0":
			nav = Exit
		default:
			n.invalidChoice()
		}

		if nav == Exit {
			n.println("\n" + n.ui.warn.Render("Goodbye!"))
			return nil
		}
	}
}

// enter runs a screen and turns its error into a navigation result.
func (n *Navigator) enter(ctx context.Context, s screen, logger *slog.Logger) Nav {
	nav, err := s(ctx)
	if err != nil {
		return n.resolve(err, logger)
	}
	return nav
}

// resolve maps an error from a screen or prompt to a navigation result.
// Interrupts go back (or exit when doubled), exhausted input exits, and anything
// else is shown and acknowledged.
func (n *Navigator) resolve(err error, logger *slog.Logger) Nav {
	switch {
	case errors.Is(err, ErrInterrupted):
		return n.interrupted()
	case errors.Is(err, io.EOF):
		return Exit
	}

	if logger != nil {
		logger.Error("unexpected error", "error", err)
	}
	n.println(n.ui.fail.Render(fmt.Sprintf("Error: %v", err)))
	if _, perr := n.prompt.Ask("Press Enter to continue..."); perr != nil {
		return n.resolve(perr, nil)
	}
	return Stay
}

func (n *Navigator) interrupted() Nav {
	nav := n.session.Interrupt()
	if nav == Back {
		n.println(n.ui.info.Render("Going back... (Press Ctrl+C again to exit)"))
	}
	return nav
}

// submenu runs s inside a menu loop: Back and Stay keep the menu open, Root and
// Exit close it.
func (n *Navigator) submenu(ctx context.Context, s screen, logger *slog.Logger) (Nav, bool) {
	switch nav := n.enter(ctx, s, logger); nav {
	case Root, Exit:
		return nav, true
	default:
		return Stay, false
	}
}

// pause waits for the user to acknowledge the screen.
func (n *Navigator) pause() error {
	_, err := n.prompt.Ask("Press Enter to continue...")
	return err
}

// confirm asks a question and reports whether the answer is one of accepted,
// compared case-insensitively.
func (n *Navigator) confirm(label string, accepted ...string) (bool, error) {
	answer, err := n.prompt.Ask(label)
	if err != nil {
		return false, err
	}
	for _, a := range accepted {
		if strings.EqualFold(answer, a) {
			return true, nil
		}
	}
	return false, nil
}

func (n *Navigator) invalidChoice() {
	n.println(n.ui.fail.Render("Invalid choice"))
}

func (n *Navigator) clear() {
	if f, ok := n.out.(*os.File); ok && isTerminal(f) {
		fmt.Fprint(n.out, "\033[H\033[2J")
	}
}

func (n *Navigator) println(s string) {
	fmt.Fprintln(n.out, s)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
