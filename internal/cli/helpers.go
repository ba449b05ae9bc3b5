package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runnerr0/apmq/internal/config"
	"github.com/runnerr0/apmq/internal/ingest"
	"github.com/runnerr0/apmq/internal/logging"
	"github.com/runnerr0/apmq/internal/query"
	"github.com/runnerr0/apmq/internal/storage"
	"github.com/runnerr0/apmq/internal/telemetry"
)

// session bundles everything one invocation needs: config, logger, metrics,
// the store and the loader and engine built on it.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *telemetry.Metrics
	store   storage.Store
	loader  *ingest.Loader
	engine  *query.Engine
}

// loadConfig honours --config, falling back to the default path or defaults.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals == nil || globals.Config == "" {
		return config.LoadDefault()
	}
	path, err := config.ExpandPath(globals.Config)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// openSession loads configuration and builds a session from it.
func openSession(globals *GlobalFlags) (*session, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	return newSession(cfg, globals)
}

// newSession builds a session from an already-loaded config.
func newSession(cfg *config.Config, globals *GlobalFlags) (*session, error) {
	level := cfg.Logging.Level
	if globals != nil && globals.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(zap.String("session", uuid.NewString()))

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.New()
	}

	rules, err := ingest.NewRules(cfg.Ingest.ExcludeEndpoints, cfg.Ingest.ExcludeRegex, cfg.Ingest.ExcludeDefaultProbes)
	if err != nil {
		return nil, fmt.Errorf("init exclusions: %w", err)
	}

	store, err := storage.Open(storage.Options{Backend: cfg.Storage.Backend, SQLiteDSN: cfg.Storage.SQLiteDSN})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger.Debug("session started",
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("exclusion_rules", rules.Len()),
		zap.Bool("strict", cfg.Ingest.Strict),
	)

	return &session{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		store:   store,
		loader:  ingest.NewLoader(store, ingest.Options{Strict: cfg.Ingest.Strict, Rules: rules}, logger, metrics),
		engine:  query.NewEngine(store, logger, metrics),
	}, nil
}

// load ingests paths, if any, and returns the combined report.
func (s *session) load(ctx context.Context, paths []string) (ingest.Report, error) {
	if len(paths) == 0 {
		return ingest.Report{}, nil
	}
	rep, err := s.loader.LoadFiles(ctx, paths)
	if err != nil {
		return rep, fmt.Errorf("load events: %w", err)
	}
	return rep, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.store.Close()
}
