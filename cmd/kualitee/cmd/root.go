// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/nischay/kualitee-cli/cmd/kualitee/cmd/cycle"
	"github.com/nischay/kualitee-cli/cmd/kualitee/cmd/defect"
	"github.com/nischay/kualitee-cli/internal/app"
	"github.com/nischay/kualitee-cli/internal/core/config"
	"github.com/nischay/kualitee-cli/internal/navigator"
	"github.com/nischay/kualitee-cli/internal/version"

	"github.com/spf13/cobra"
)

var (
	// Configuration path
	configFile string

	// Overrides for the logging section of the config
	logDir   string
	logLevel string

	// Filled in by PersistentPreRunE and shared with every sub-command
	rt = &app.Runtime{}
)

var rootCmd = newRootCmd(rt)

func newRootCmd(rt *app.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "kualitee",
		Short: "Kualitee Management Tool",
		Long: `Kualitee is a command-line tool for day to day work against the Kualitee
test management service: inspecting and closing defects, browsing test
cycles and marking test cases as passed with their evidence attached.

Run without a sub-command to start the interactive menus.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				if errors.Is(err, config.ErrConfigNotFound) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file %s not found. Create it with content like:\n%s\n",
						configPath(), config.SampleConfig)
				}
				return fmt.Errorf("error loading configuration: %w", err)
			}

			if logDir != "" {
				cfg.LogDir = logDir
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			opened, err := app.Open(cfg)
			if err != nil {
				return err
			}
			*rt = *opened
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)

			nav := navigator.New(navigator.Options{
				Defects:      rt.Defects,
				Cycles:       rt.Cycles,
				In:           cmd.InOrStdin(),
				Out:          cmd.OutOrStdout(),
				Interrupts:   interrupts,
				DefectLogger: rt.DefectLogger(),
				CycleLogger:  rt.CycleLogger(),
				FetchWorkers: rt.FetchWorkers(),
				RCAField:     rt.RCAField(),
				Stat:         rt.StatFunc(),
			})
			return nav.Run(cmd.Context())
		},
	}
}

func configPath() string {
	if configFile == "" {
		return config.DefaultConfigFileName
	}
	return configFile
}

// Execute runs the root command and releases the log files afterwards.
func Execute() error {
	defer rt.Close()
	return rootCmd.Execute()
}

func init() {
	addCommands(rootCmd, rt)
}

func addCommands(root *cobra.Command, rt *app.Runtime) {
	root.AddCommand(defect.NewDefectCmd(rt))
	root.AddCommand(cycle.NewCycleCmd(rt))

	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigFileName, "config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for log files (overrides log_dir)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides log_level)")
}
