// Package app runs one reconciliation pass: load gravity, find the domains
// already blocked by wildcard and regex rules, and remove them.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/gravityopt/internal/domain"
	"github.com/bft-labs/gravityopt/internal/ports"
	"github.com/bft-labs/gravityopt/internal/regex"
	"github.com/bft-labs/gravityopt/internal/wildcard"
	"github.com/bft-labs/gravityopt/pkg/log"
)

// PipelineConfig tunes a pass.
type PipelineConfig struct {
	// RegexBatchSize is the number of regex rules per alternation.
	RegexBatchSize int

	// Workers bounds the regex batches scanned concurrently.
	Workers int

	// DryRun computes the removal without committing it or reloading.
	DryRun bool
}

// Option configures optional collaborators of a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWildcardSource sets where wildcard configuration lines come from.
// Without one the wildcard path is skipped.
func WithWildcardSource(src ports.LineSource) Option {
	return func(p *Pipeline) { p.lines = src }
}

// WithRegexSource sets where regex rules come from.
// Without one the regex path is skipped.
func WithRegexSource(src ports.PatternSource) Option {
	return func(p *Pipeline) { p.patterns = src }
}

// WithReload sets the action run after a commit that removed domains.
func WithReload(action ports.Action) Option {
	return func(p *Pipeline) { p.reload = action }
}

// WithReportSink sets a sink that receives the report of every finished pass.
func WithReportSink(sink ports.ReportSink) Option {
	return func(p *Pipeline) { p.sink = sink }
}

// Pipeline wires the rule sources, matchers and store of one pass.
type Pipeline struct {
	config   PipelineConfig
	store    ports.DomainStore
	lines    ports.LineSource
	patterns ports.PatternSource
	reload   ports.Action
	sink     ports.ReportSink
	logger   log.Logger
	now      func() time.Time
}

// NewPipeline creates a pipeline over store.
func NewPipeline(config PipelineConfig, store ports.DomainStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: config,
		store:  store,
		logger: log.NewNoopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pass. An empty gravity set fails with
// domain.ErrEmptyGravity before any rule is read; a failed commit leaves the
// store as it was and returns an error wrapping domain.ErrPersistence.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	start := p.now()
	report := domain.Report{Backend: p.store.Name(), DryRun: p.config.DryRun}

	gravity, err := p.store.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load gravity: %w", err)
	}
	if gravity.Len() == 0 {
		return report, domain.ErrEmptyGravity
	}
	report.Loaded = gravity.Len()
	p.logger.Info("gravity loaded", log.String("backend", report.Backend), log.Int("domains", report.Loaded))

	var (
		wc      wildcard.Conflicts
		regexed domain.Set
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wc, err = p.wildcardConflicts(gctx, gravity, &report)
		return err
	})
	g.Go(func() error {
		var err error
		regexed, err = p.regexConflicts(gctx, gravity, &report)
		return err
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	removal, retained := Aggregate(gravity, wc.Exact, wc.Subdomain, regexed)
	report.Removed = removal.Len()
	report.Remaining = retained.Len()

	switch {
	case removal.Len() == 0:
		p.logger.Info("no redundant domains found")
	case p.config.DryRun:
		p.logger.Info("dry run, nothing committed", log.Int("would_remove", removal.Len()))
	default:
		res, err := p.store.Commit(ctx, removal, retained)
		if err != nil {
			return report, fmt.Errorf("commit removal: %w", err)
		}
		report.Committed = true
		report.Remaining = res.Remaining
		p.logger.Info("removal committed",
			log.Int("removed", report.Removed),
			log.Int("remaining", report.Remaining),
		)
		p.runReload(ctx)
	}

	report.Duration = p.now().Sub(start)
	p.record(report)
	return report, nil
}

// wildcardConflicts runs the wildcard path. It only writes the wildcard
// fields of report.
func (p *Pipeline) wildcardConflicts(ctx context.Context, gravity domain.Set, report *domain.Report) (wildcard.Conflicts, error) {
	if p.lines == nil {
		return wildcard.NewMatcher(domain.NewSet()).Match(gravity), nil
	}

	lines, err := p.lines.Lines(ctx)
	if err != nil {
		return wildcard.Conflicts{}, fmt.Errorf("read wildcard rules: %w", err)
	}

	ex := wildcard.Extract(lines)
	report.Wildcards = ex.Bases.Len()
	report.InvalidWildcards = ex.Invalid
	if len(ex.Invalid) > 0 {
		p.logger.Warn("skipped invalid wildcard domains",
			log.Int("count", len(ex.Invalid)),
			log.Strings("domains", ex.Invalid),
		)
	}

	c := wildcard.NewMatcher(ex.Bases).Match(gravity)
	report.ExactConflicts = c.Exact.Len()
	report.SubdomainConflicts = c.Subdomain.Len()
	p.logger.Info("wildcard conflicts",
		log.Int("rules", report.Wildcards),
		log.Int("exact", report.ExactConflicts),
		log.Int("subdomain", report.SubdomainConflicts),
	)
	return c, nil
}

// regexConflicts runs the regex path. It only writes the regex fields of
// report.
func (p *Pipeline) regexConflicts(ctx context.Context, gravity domain.Set, report *domain.Report) (domain.Set, error) {
	if p.patterns == nil {
		return domain.NewSet(), nil
	}

	patterns, err := p.patterns.Patterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("read regex rules: %w", err)
	}

	m := regex.Compile(patterns, regex.Options{
		BatchSize: p.config.RegexBatchSize,
		Workers:   p.config.Workers,
	})
	report.Regexps = len(patterns)
	report.InvalidRegexps = m.Invalid()
	report.SkippedBatches = m.Skipped()

	if len(report.InvalidRegexps) > 0 {
		p.logger.Warn("skipped invalid regex rules",
			log.Int("count", len(report.InvalidRegexps)),
			log.Strings("patterns", report.InvalidRegexps),
		)
	}
	for _, sb := range report.SkippedBatches {
		p.logger.Warn("regex batch failed to compile, rules evaluated one by one",
			log.Int("batch", sb.Index),
			log.Int("rules", len(sb.Patterns)),
			log.Err(sb.Err),
		)
	}

	hits, err := m.Match(ctx, gravity)
	if err != nil {
		return nil, fmt.Errorf("match regex rules: %w", err)
	}
	report.RegexConflicts = hits.Len()
	p.logger.Info("regex conflicts", log.Int("rules", report.Regexps), log.Int("matched", report.RegexConflicts))
	return hits, nil
}

func (p *Pipeline) runReload(ctx context.Context) {
	if p.reload == nil {
		return
	}
	if err := p.reload.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.Warn("resolver reload canceled", log.String("action", p.reload.Name()))
			return
		}
		p.logger.Error("resolver reload failed", log.String("action", p.reload.Name()), log.Err(err))
		return
	}
	p.logger.Info("resolver reloaded", log.String("action", p.reload.Name()))
}

func (p *Pipeline) record(report domain.Report) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Record(report); err != nil {
		p.logger.Warn("failed to record run report", log.Err(err))
	}
}
