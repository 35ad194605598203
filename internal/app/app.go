// Package app wires configuration, logging, tracing and recording together
// for the kins command.
package app

import (
	"errors"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/config"
	"github.com/dshills/kins/internal/event"
	"github.com/dshills/kins/internal/record"
	"github.com/dshills/kins/internal/trace"
)

// App holds the long-lived pieces shared by every command.
type App struct {
	cfg    config.Config
	logger zerolog.Logger

	events   *trace.Toggle
	profiler *trace.Profiler
	profile  *trace.Toggle
	metrics  *trace.Metrics
	recorder *record.Recorder
	store    record.Store
	tracers  event.Tracers
}

// Option configures New.
type Option func(*options)

type options struct {
	output   io.Writer
	registry prometheus.Registerer
	store    record.Store
}

// WithOutput sets where logs are written. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithRegisterer sets the Prometheus registerer for publish metrics.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithStore uses store for records instead of opening one from the config.
// The App takes ownership and closes it.
func WithStore(store record.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// New validates cfg and builds the logger and tracers it enables.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{
		output:   os.Stderr,
		registry: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	logger, err := NewLogger(cfg.Log, o.output)
	if err != nil {
		return nil, &InitError{Component: "logger", Err: err}
	}

	a := &App{cfg: cfg, logger: logger}

	a.events = trace.NewToggle(trace.NewLogTracer(logger.With().Str("component", "events").Logger()), cfg.Log.Events)
	a.profiler = trace.NewProfiler()
	a.profile = trace.NewToggle(a.profiler, cfg.Profile.Enabled)
	a.tracers = event.Tracers{a.events, a.profile}

	if cfg.Profile.Metrics {
		a.metrics, err = trace.NewMetrics(o.registry)
		if err != nil {
			return nil, &InitError{Component: "metrics", Err: err}
		}
		a.tracers = append(a.tracers, a.metrics)
	}

	if cfg.Record.Enabled || o.store != nil {
		if err := a.openRecorder(o.store); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Bool("events", cfg.Log.Events).
		Bool("profile", cfg.Profile.Enabled).
		Bool("metrics", cfg.Profile.Metrics).
		Bool("record", a.recorder != nil).
		Msg("app initialized")
	return a, nil
}

func (a *App) openRecorder(store record.Store) error {
	if store == nil {
		if a.cfg.Record.Path == "" {
			store = record.NewMemoryStore()
		} else {
			s, err := record.OpenSQLite(a.cfg.Record.Path)
			if err != nil {
				return &InitError{Component: "record store", Err: err}
			}
			store = s
		}
	}
	a.store = store
	a.recorder = record.NewRecorder(store, record.WithLogger(a.logger.With().Str("component", "record").Logger()))
	if !a.cfg.Record.Enabled {
		a.recorder.Pause()
	}
	a.tracers = append(a.tracers, a.recorder)
	return nil
}

// Config returns the active configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the process logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// Tracer returns the combined tracer to attach to scene roots.
func (a *App) Tracer() event.Tracer {
	return a.tracers
}

// Profiler returns the publish profiler. It only accumulates while
// profiling is enabled.
func (a *App) Profiler() *trace.Profiler {
	return a.profiler
}

// Recorder returns the recorder, or nil when recording was never enabled.
func (a *App) Recorder() *record.Recorder {
	return a.recorder
}

// Store returns the record store, or nil when recording was never enabled.
func (a *App) Store() record.Store {
	return a.store
}

// Apply switches event logging, profiling and recording to match cfg.
// Log level, format, metrics and the record path only take effect on
// restart.
func (a *App) Apply(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.events.SetEnabled(cfg.Log.Events)
	a.profile.SetEnabled(cfg.Profile.Enabled)
	if a.recorder != nil {
		if cfg.Record.Enabled {
			a.recorder.Resume()
		} else {
			a.recorder.Pause()
		}
	} else if cfg.Record.Enabled {
		a.logger.Warn().Msg("recording enabled in config; restart to open a record store")
	}

	if cfg.Log.Level != a.cfg.Log.Level || cfg.Log.Format != a.cfg.Log.Format ||
		cfg.Profile.Metrics != a.cfg.Profile.Metrics || cfg.Record.Path != a.cfg.Record.Path {
		a.logger.Warn().Msg("some config changes take effect on restart")
	}

	a.cfg = cfg
	a.logger.Info().
		Bool("events", cfg.Log.Events).
		Bool("profile", cfg.Profile.Enabled).
		Bool("record", cfg.Record.Enabled).
		Msg("config applied")
	return nil
}

// Close logs the profile, if enabled, and releases the record store.
func (a *App) Close() error {
	if a.profile.Enabled() {
		a.profiler.Log(a.logger)
	}

	var errs []error
	if a.recorder != nil {
		errs = append(errs, a.recorder.Err())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	return errors.Join(errs...)
}
