// Package metrics counts what the logger does with each event: entries
// accepted per level and tag, events dropped by the level gate, entries
// evicted from storage and handler failures. A Collector implements
// logging.Observer and owns its own Prometheus registry, so several
// loggers (and tests) never collide on the default registry.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taglog"

// Collector is a Prometheus-backed logging.Observer.
type Collector struct {
	registry *prometheus.Registry

	EntriesTotal    *prometheus.CounterVec
	GatedTotal      *prometheus.CounterVec
	EvictedTotal    prometheus.Counter
	HandlerFailures *prometheus.CounterVec
	Durations       *prometheus.HistogramVec
}

var _ logging.Observer = (*Collector)(nil)

// NewCollector creates a collector with all metrics registered on a fresh
// registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		EntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_total",
				Help:      "Entries accepted by the logger by level, feature and module",
			},
			[]string{"level", "feature", "module"},
		),
		GatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_gated_total",
				Help:      "Events dropped by the minimum level gate",
			},
			[]string{"level"},
		),
		EvictedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_evicted_total",
				Help:      "Entries evicted from bounded storage",
			},
		),
		HandlerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_failures_total",
				Help:      "Handler errors and panics by handler",
			},
			[]string{"handler"},
		),
		Durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Durations reported through the duration or elapsed_time parameter",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"feature", "function"},
		),
	}

	c.registry.MustRegister(
		c.EntriesTotal,
		c.GatedTotal,
		c.EvictedTotal,
		c.HandlerFailures,
		c.Durations,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// EntryAccepted counts e and observes its duration parameter, if any.
func (c *Collector) EntryAccepted(e *logging.Entry) {
	c.EntriesTotal.WithLabelValues(e.Level().String(), e.FeatureTag(), e.ModuleTag()).Inc()
	if d, ok := e.Duration(); ok {
		c.Durations.WithLabelValues(e.FeatureTag(), e.FunctionName()).Observe(d)
	}
}

// EntryGated counts an event dropped by the level gate.
func (c *Collector) EntryGated(level logging.Level) {
	c.GatedTotal.WithLabelValues(level.String()).Inc()
}

// EntryEvicted counts an eviction.
func (c *Collector) EntryEvicted(*logging.Entry) {
	c.EvictedTotal.Inc()
}

// HandlerFailed counts a handler failure.
func (c *Collector) HandlerFailed(handler string) {
	c.HandlerFailures.WithLabelValues(handler).Inc()
}

// Sample is one counter value with its labels rendered as name{k="v",...}.
type Sample struct {
	Series string
	Value  float64
}

// Counters gathers every counter series from the registry, sorted by
// series name. Histograms report their sample count.
func (c *Collector) Counters() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var samples []Sample
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			series := family.GetName()
			if len(labels) > 0 {
				series += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				samples = append(samples, Sample{Series: series, Value: m.GetCounter().GetValue()})
			case m.GetHistogram() != nil:
				samples = append(samples, Sample{Series: series + "_count", Value: float64(m.GetHistogram().GetSampleCount())})
			}
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Series < samples[j].Series })
	return samples, nil
}
