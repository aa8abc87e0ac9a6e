// SPDX-License-Identifier: Apache-2.0

// Package app holds what the command line needs once configuration is loaded:
// the gateway clients, the module loggers and a few shared console helpers.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nischay/kualitee-cli/internal/batch"
	"github.com/nischay/kualitee-cli/internal/core/config"
	"github.com/nischay/kualitee-cli/internal/kualitee"
	"github.com/nischay/kualitee-cli/internal/logging"
	"github.com/nischay/kualitee-cli/internal/version"
)

// Log modules, one file each under the log directory.
const (
	DefectModule = "defect"
	CycleModule  = "test_cycle"
)

// DefectAPI is the defect side of the gateway.
type DefectAPI interface {
	ListDefects(ctx context.Context) []kualitee.Defect
	GetDefect(ctx context.Context, defectID string) *kualitee.Defect
	GetDefects(ctx context.Context, defectIDs []string, limit int) map[string]*kualitee.Defect
	UpdateDefect(ctx context.Context, defectID, status, rca string, snapshot *kualitee.Defect) bool
}

// CycleAPI is the test cycle side of the gateway.
type CycleAPI interface {
	ListCycles(ctx context.Context) []kualitee.Cycle
	ListTestCases(ctx context.Context, cycleID kualitee.ID) []kualitee.TestCase
	ExecuteTestCase(ctx context.Context, caseID, buildID, cycleID, scenarioID kualitee.ID) (kualitee.ID, bool)
	UploadAttachment(ctx context.Context, caseID, cycleID, executionID kualitee.ID, filePath string) bool
}

// Runtime is filled in by the root command before any sub-command runs.
// Tests build one directly with mocked APIs.
type Runtime struct {
	Config *config.Config

	Defects DefectAPI
	Cycles  CycleAPI

	DefectLog *slog.Logger
	CycleLog  *slog.Logger

	// Stat checks attachment files; nil means os.Stat.
	Stat batch.StatFunc

	closers []io.Closer
}

// Open creates the module loggers and one gateway client per module.
func Open(cfg *config.Config) (*Runtime, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	rt := &Runtime{Config: cfg}

	defectLog, defectCloser, err := logging.New(logging.Options{Dir: cfg.LogDir, Module: DefectModule, Level: level})
	if err != nil {
		return nil, fmt.Errorf("error creating defect logger: %w", err)
	}
	rt.closers = append(rt.closers, defectCloser)

	cycleLog, cycleCloser, err := logging.New(logging.Options{Dir: cfg.LogDir, Module: CycleModule, Level: level})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error creating test cycle logger: %w", err)
	}
	rt.closers = append(rt.closers, cycleCloser)

	for _, logger := range []*slog.Logger{defectLog, cycleLog} {
		logger.Info("session started", "version", version.Version, "log_level", level.String())
	}

	opts := ClientOptions(cfg)
	rt.DefectLog = defectLog
	rt.CycleLog = cycleLog
	rt.Defects = kualitee.NewClient(opts, defectLog)
	rt.Cycles = kualitee.NewClient(opts, cycleLog)
	return rt, nil
}

// ClientOptions maps the configuration onto gateway options.
func ClientOptions(cfg *config.Config) kualitee.Options {
	return kualitee.Options{
		BaseURL:            cfg.BaseURL,
		Token:              cfg.Token,
		ProjectID:          cfg.ProjectID,
		Timeout:            cfg.Timeout(),
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		DefectListLength:   cfg.DefectListLength,
		TestCaseListLength: cfg.TestCaseListLength,
		FetchWorkers:       cfg.FetchWorkers,
		RCAField:           cfg.RCAField,
	}
}

// Close releases the log files. It is safe to call more than once.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// FetchWorkers is the bound for concurrent defect fetches.
func (r *Runtime) FetchWorkers() int {
	if r.Config == nil || r.Config.FetchWorkers <= 0 {
		return kualitee.DefaultFetchWorkers
	}
	return r.Config.FetchWorkers
}

// RCAField is the custom field holding a defect's root cause.
func (r *Runtime) RCAField() string {
	if r.Config == nil || r.Config.RCAField == "" {
		return kualitee.DefaultRCAField
	}
	return r.Config.RCAField
}

// StatFunc returns the attachment checker.
func (r *Runtime) StatFunc() batch.StatFunc {
	if r.Stat == nil {
		return os.Stat
	}
	return r.Stat
}

// DefectLogger never returns nil.
func (r *Runtime) DefectLogger() *slog.Logger {
	if r.DefectLog == nil {
		return logging.Discard()
	}
	return r.DefectLog
}

// CycleLogger never returns nil.
func (r *Runtime) CycleLogger() *slog.Logger {
	if r.CycleLog == nil {
		return logging.Discard()
	}
	return r.CycleLog
}
