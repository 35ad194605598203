package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/kins/internal/app"
	"github.com/dshills/kins/internal/config"
	"github.com/dshills/kins/internal/scene"
)

// cli holds flag values and the App shared by every command.
type cli struct {
	configPath  string
	logLevel    string
	events      bool
	profile     bool
	recordPath  string
	metricsFile string

	stderr   io.Writer
	registry *prometheus.Registry

	changed func(name string) bool
	cfg     config.Config
	app     *app.App
}

func newCLI() *cli {
	return &cli{
		stderr:   os.Stderr,
		registry: prometheus.NewRegistry(),
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "kins",
		Short:         "Publish events through scene trees",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to configuration file (.toml, .yaml, .json)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: trace|debug|info|warn|error (overrides config)")
	flags.BoolVar(&c.events, "events", false, "Log every publish")
	flags.BoolVar(&c.profile, "profile", false, "Log cumulative publish times on exit")
	flags.StringVar(&c.recordPath, "record", "", "Record top-level publishes to this SQLite file")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.setup(cmd)
	}

	root.AddCommand(
		newPublishCmd(c),
		newRenderCmd(c),
		newTreeCmd(c),
		newReplayCmd(c),
		newSessionCmd(c),
	)
	return root
}

// execute runs the command line in args and always releases the App.
func execute(ctx context.Context, c *cli, args []string, stdin io.Reader, stdout io.Writer) error {
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(c.stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		l := c.logger()
		l.Error().Err(err).Msg("command failed")
	}
	if terr := c.teardown(); terr != nil {
		l := c.logger()
		l.Error().Err(terr).Msg("shutdown failed")
		if err == nil {
			err = terr
		}
	}
	return err
}

// logger returns the App logger, or a console logger on stderr when no App
// is running.
func (c *cli) logger() zerolog.Logger {
	if c.app != nil {
		return c.app.Logger()
	}
	logger, _ := app.NewLogger(config.Default().Log, c.stderr)
	return logger
}

// setup layers config file, environment and flags, then builds the App.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.changed = cmd.Flags().Changed
	if err := c.overlay(&cfg); err != nil {
		return err
	}

	a, err := app.New(cfg, app.WithOutput(c.stderr), app.WithRegisterer(c.registry))
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.app = a
	return nil
}

// overlay applies environment variables, then explicitly set flags.
func (c *cli) overlay(cfg *config.Config) error {
	if err := cfg.ApplyEnv(config.EnvPrefix); err != nil {
		return err
	}
	if c.changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if c.changed("events") {
		cfg.Log.Events = c.events
	}
	if c.changed("profile") {
		cfg.Profile.Enabled = c.profile
	}
	if c.recordPath != "" {
		cfg.Record.Enabled = true
		cfg.Record.Path = c.recordPath
	}
	if c.metricsFile != "" {
		cfg.Profile.Metrics = true
	}
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	if c.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(c.metricsFile, c.registry); werr != nil && err == nil {
			err = fmt.Errorf("writing metrics: %w", werr)
		}
	}
	return err
}

// openScene builds the scene at path with the App's tracer on its root.
func (c *cli) openScene(path string) (*scene.Scene, error) {
	logger := c.app.Logger().With().Str("scene", path).Logger()
	return scene.Open(path,
		scene.WithTracer(c.app.Tracer()),
		scene.WithLogger(logger))
}
