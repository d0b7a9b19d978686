package gravityopt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bft-labs/gravityopt/internal/adapters/fs"
	"github.com/bft-labs/gravityopt/internal/adapters/metrics"
	"github.com/bft-labs/gravityopt/internal/adapters/process"
	"github.com/bft-labs/gravityopt/internal/adapters/sqlite"
	"github.com/bft-labs/gravityopt/internal/app"
	"github.com/bft-labs/gravityopt/internal/cliconfig"
	"github.com/bft-labs/gravityopt/internal/domain"
	"github.com/bft-labs/gravityopt/internal/ports"
	"github.com/bft-labs/gravityopt/pkg/log"
)

// Config holds the configuration of a run.
type Config = cliconfig.Config

// Report summarises a finished run.
type Report = domain.Report

// Errors returned by Run. Check with errors.Is.
var (
	ErrPrecondition  = domain.ErrPrecondition
	ErrEmptyGravity  = domain.ErrEmptyGravity
	ErrPersistence   = domain.ErrPersistence
	ErrInvalidConfig = domain.ErrInvalidConfig
)

// DefaultConfig returns a Config for a stock Pi-hole installation.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Optimizer runs reconciliation passes for one configuration.
type Optimizer struct {
	config Config
	opts   options
}

// New creates an Optimizer. Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.refresh == nil {
		o.refresh = process.Refresh(cfg.PiholeBinary, o.logger)
	}
	if o.reload == nil {
		o.reload = process.Reload(cfg.PiholeBinary, o.logger)
	}
	if cfg.MetricsFile != "" {
		o.sinks = append(o.sinks, metrics.NewTextfile(cfg.MetricsFile))
	}

	return &Optimizer{config: cfg, opts: o}, nil
}

// Run refreshes gravity, selects the backend and executes one pass.
func (g *Optimizer) Run(ctx context.Context) (Report, error) {
	cfg := g.config
	logger := g.opts.logger

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if fi, err := os.Stat(cfg.PiholeDir); err != nil || !fi.IsDir() {
		return Report{}, fmt.Errorf("%w: pihole directory %s not found", ErrPrecondition, cfg.PiholeDir)
	}

	if !cfg.SkipRefresh {
		g.refresh(ctx)
	}

	backend, err := cfg.ResolveBackend()
	if err != nil {
		return Report{}, err
	}
	logger.Info("using backend", log.String("backend", backend))

	var (
		store    ports.DomainStore
		patterns ports.PatternSource
	)
	switch backend {
	case cliconfig.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.DatabasePath, cfg.DeleteChunkSize, logger)
		if err != nil {
			return Report{}, err
		}
		defer func() {
			if err := s.Close(); err != nil {
				logger.Warn("failed to close gravity database", log.Err(err))
			}
		}()
		store, patterns = s, s
	default:
		store = fs.NewGravityList(cfg.GravityList)
		patterns = fs.NewRuleFile(cfg.RegexList)
	}

	pipeOpts := []app.Option{
		app.WithLogger(logger),
		app.WithWildcardSource(fs.NewConfDir(cfg.DnsmasqDir, cfg.ReservedConf)),
		app.WithRegexSource(patterns),
	}
	if !cfg.SkipReload {
		pipeOpts = append(pipeOpts, app.WithReload(g.opts.reload))
	}
	if len(g.opts.sinks) > 0 {
		pipeOpts = append(pipeOpts, app.WithReportSink(multiSink(g.opts.sinks)))
	}

	pipeline := app.NewPipeline(app.PipelineConfig{
		RegexBatchSize: cfg.RegexBatchSize,
		Workers:        cfg.Workers,
		DryRun:         cfg.DryRun,
	}, store, pipeOpts...)

	return pipeline.Run(ctx)
}

func (g *Optimizer) refresh(ctx context.Context) {
	logger := g.opts.logger
	start := time.Now()
	logger.Info("refreshing gravity", log.String("action", g.opts.refresh.Name()))

	if err := g.opts.refresh.Run(ctx); err != nil {
		logger.Error("gravity refresh failed, continuing with the current list", log.Err(err))
		return
	}
	logger.Info("gravity refreshed", log.Duration("took", time.Since(start)))
}

// multiSink fans a report out to several sinks.
type multiSink []ReportSink

func (m multiSink) Record(r Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run is a shorthand for New followed by Optimizer.Run.
func Run(ctx context.Context, cfg Config, opts ...Option) (Report, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return Report{}, err
	}
	return g.Run(ctx)
}
