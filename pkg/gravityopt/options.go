package gravityopt

import (
	"github.com/bft-labs/gravityopt/internal/ports"
	"github.com/bft-labs/gravityopt/pkg/log"
)

// Action is an external step such as the gravity refresh or the resolver
// reload.
type Action = ports.Action

// ReportSink receives the report of a finished run.
type ReportSink = ports.ReportSink

// Option configures optional behavior of an Optimizer.
type Option func(*options)

// options holds the optional configuration for an Optimizer instance.
type options struct {
	logger  log.Logger
	refresh Action
	reload  Action
	sinks   []ReportSink
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRefreshAction replaces the "pihole -g" refresh run before loading.
func WithRefreshAction(a Action) Option {
	return func(o *options) {
		o.refresh = a
	}
}

// WithReloadAction replaces the "pihole restartdns reload" run after a
// commit.
func WithReloadAction(a Action) Option {
	return func(o *options) {
		o.reload = a
	}
}

// WithReportSink adds a sink for the run report. It is called in addition to
// the metrics textfile, if one is configured.
func WithReportSink(s ReportSink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, s)
	}
}
