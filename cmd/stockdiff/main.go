package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stockdiff/internal/config"
	"stockdiff/internal/logging"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "stockdiff",
		Short: "Compare stock levels between two inventory exports",
		Long: `stockdiff matches a source-of-record inventory export against a fulfillment
system export by EAN (or item number) and reports every item whose stock
differs or that exists on one side only.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./stockdiff.yaml or ~/.config/stockdiff/stockdiff.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(a.compareCmd())
	root.AddCommand(a.columnsCmd())
	root.AddCommand(versionCmd())
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	level, format := cfg.LogLevel, cfg.LogFormat
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.logFormat != "" {
		format = a.logFormat
	}
	log, err := logging.New(level, format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockdiff %s\n", version)
		},
	}
}
