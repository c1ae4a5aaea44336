package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/garden/internal/config"
	"github.com/roach88/garden/internal/engine"
	"github.com/roach88/garden/internal/generator"
	"github.com/roach88/garden/internal/logger"
	"github.com/roach88/garden/internal/persist"
	"github.com/roach88/garden/internal/store"
	"github.com/roach88/garden/internal/telemetry"
)

// session is everything one command invocation needs: a running engine over
// the configured store, plus the ambient services it logs and reports to.
type session struct {
	ctx    context.Context
	cfg    *config.AppConfig
	eng    *engine.Engine
	log    zerolog.Logger
	format *OutputFormatter

	closers []func(context.Context) error
	stop    context.CancelFunc
	done    chan error
}

// openSession wires config, logging, telemetry, storage, persistence and the
// generator into a running engine. The caller must Close it.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	formatter := newFormatter(opts, cmd)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)

	s := &session{ctx: ctx, format: formatter, stop: stop, log: zerolog.Nop()}
	fail := func(message string, err error) (*session, error) {
		s.Close()
		_ = formatter.Error(ErrCodeSetup, fmt.Sprintf("%s: %v", message, err), nil)
		return nil, WrapExitError(ExitCommandError, message, err)
	}

	cfg, err := config.NewConfig(opts.ConfigPath)
	if err != nil {
		return fail("failed to load config", err)
	}
	applyOverrides(cfg, opts)
	s.cfg = cfg

	logs, err := logger.NewManager(&cfg.Log)
	if err != nil {
		return fail("failed to initialize logging", err)
	}
	logger.SetGlobal(logs)
	s.closers = append(s.closers, func(context.Context) error {
		logger.SetGlobal(nil)
		return logs.Close()
	})
	s.log = logger.GetCLILogger()

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName, Version, cfg.Telemetry.Insecure)
	if err != nil {
		return fail("failed to initialize telemetry", err)
	}
	s.closers = append(s.closers, shutdown)

	if cfg.Storage.Driver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return fail("failed to create data directory", err)
		}
	}
	formatter.VerboseLog("opening %s store", cfg.Storage.Driver)
	kv, err := store.Open(ctx, store.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return fail("failed to open store", err)
	}
	s.closers = append(s.closers, func(context.Context) error { return kv.Close() })

	adapter, err := persist.New(kv, persist.WithLogger(logger.GetPersistLogger()))
	if err != nil {
		return fail("failed to initialize persistence", err)
	}

	gen := opts.Generator
	if gen == nil {
		gen, err = generator.New(cfg.Generator)
		if err != nil {
			return fail("failed to initialize generator", err)
		}
	}

	engOpts := append([]engine.Option{engine.WithLogger(logger.GetEngineLogger())}, opts.EngineOptions...)
	eng, err := engine.New(ctx, adapter, gen, engOpts...)
	if err != nil {
		return fail("failed to initialize engine", err)
	}
	s.eng = eng
	formatter.VerboseLog("snapshot: %s", eng.LoadStatus())

	// Run on a context of its own so an interrupt still lets queued
	// commands finish and persist through Stop.
	s.done = make(chan error, 1)
	go func() { s.done <- eng.Run(context.WithoutCancel(ctx)) }()

	s.log.Debug().Str("driver", cfg.Storage.Driver).Str("provider", cfg.Generator.Provider).Msg("session opened")
	return s, nil
}

// applyOverrides folds command-line flags into the loaded config.
func applyOverrides(cfg *config.AppConfig, opts *RootOptions) {
	switch opts.DB {
	case "":
	case ":memory:":
		cfg.Storage.Driver = store.DriverMemory
	default:
		cfg.Storage.Driver = store.DriverSQLite
		cfg.Storage.Path = opts.DB
	}

	if opts.Verbose {
		cfg.Log.Level = "DEBUG"
		for i := range cfg.Log.Output {
			if cfg.Log.Output[i].Type == "console" {
				cfg.Log.Output[i].Enabled = true
			}
		}
	}
}

// Close stops the engine after it applies queued commands, then releases
// the store, telemetry and logging in reverse order of acquisition.
func (s *session) Close() {
	if s.eng != nil {
		s.eng.Stop()
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
			s.log.Warn().Msg("engine did not stop in time")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("error during shutdown")
		}
	}
	s.closers = nil
	s.stop()
}

// withSession runs fn against a fresh session and closes it afterwards.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(s *session) error) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// engineFailure maps an error from the engine to CLI output and an exit code.
func (s *session) engineFailure(err error) error {
	switch {
	case engine.IsPlantNotFound(err):
		return s.format.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	case engine.IsUnknownPlantType(err), engine.IsUnknownWeather(err):
		return s.format.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error(), nil)
	default:
		_ = s.format.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "engine error", err)
	}
}
