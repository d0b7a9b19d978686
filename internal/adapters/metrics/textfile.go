// Package metrics records run reports as Prometheus gauges in a textfile
// for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/gravityopt/internal/domain"
	"github.com/bft-labs/gravityopt/internal/ports"
)

const namespace = "gravityopt"

var _ ports.ReportSink = (*Textfile)(nil)

// Textfile writes every recorded report to a file in the Prometheus text
// exposition format, replacing its previous content.
type Textfile struct {
	path     string
	registry *prometheus.Registry
	now      func() time.Time

	loaded    prometheus.Gauge
	removed   *prometheus.GaugeVec
	remaining prometheus.Gauge
	rules     *prometheus.GaugeVec
	invalid   *prometheus.GaugeVec
	skipped   prometheus.Gauge
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
}

// NewTextfile creates a sink writing to path.
func NewTextfile(path string) *Textfile {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Textfile{
		path:     path,
		registry: reg,
		now:      time.Now,
		loaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domains_loaded",
			Help:      "Distinct gravity domains before the last run.",
		}),
		removed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domains_removed",
			Help:      "Gravity domains found redundant in the last run, by rule source.",
		}, []string{"source"}),
		remaining: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domains_remaining",
			Help:      "Distinct gravity domains after the last run.",
		}),
		rules: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rules",
			Help:      "Rules loaded in the last run, by kind.",
		}, []string{"kind"}),
		invalid: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "invalid_rules",
			Help:      "Rules skipped as unusable in the last run, by kind.",
		}, []string{"kind"}),
		skipped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "skipped_regex_batches",
			Help:      "Regex batches whose alternation failed to compile in the last run.",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

// Record implements ports.ReportSink.
func (t *Textfile) Record(r domain.Report) error {
	t.loaded.Set(float64(r.Loaded))
	t.removed.WithLabelValues("total").Set(float64(r.Removed))
	t.removed.WithLabelValues("wildcard_exact").Set(float64(r.ExactConflicts))
	t.removed.WithLabelValues("wildcard_subdomain").Set(float64(r.SubdomainConflicts))
	t.removed.WithLabelValues("regex").Set(float64(r.RegexConflicts))
	t.remaining.Set(float64(r.Remaining))
	t.rules.WithLabelValues("wildcard").Set(float64(r.Wildcards))
	t.rules.WithLabelValues("regex").Set(float64(r.Regexps))
	t.invalid.WithLabelValues("wildcard").Set(float64(len(r.InvalidWildcards)))
	t.invalid.WithLabelValues("regex").Set(float64(len(r.InvalidRegexps)))
	t.skipped.Set(float64(len(r.SkippedBatches)))
	t.duration.Set(r.Duration.Seconds())
	t.lastRun.Set(float64(t.now().Unix()))

	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", t.path, err)
	}
	return nil
}
