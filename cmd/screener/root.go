package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-screener"
	"github.com/goliatone/go-screener/internal/prompt"
	"github.com/goliatone/go-screener/pkg/config"
	"github.com/goliatone/go-screener/pkg/logger"
)

type app struct {
	out    io.Writer
	errOut io.Writer
	driver prompt.Driver
	cfg    *config.Config
	log    logger.Logger

	logLevel  string
	logFormat string
}

func newApp() *app {
	return &app{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "screener",
		Short:         "Load, inspect and run screening questionnaires",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error, off)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		a.inspectCmd(),
		a.lintCmd(),
		a.contractCmd(),
		a.runCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = string(logger.ParseLevel(a.logLevel))
	}
	if a.logFormat != "" {
		cfg.Log.Format = strings.ToLower(a.logFormat)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewLogger(cfg.LoggerConfig(a.errOut))
	return nil
}

func (a *app) loadOptions() []screener.Option {
	return []screener.Option{screener.WithConfig(a.cfg)}
}
