// Package metrics exports run summaries in the Prometheus text format so a
// node_exporter textfile collector can scrape them.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/ports"
)

const namespace = "cmdverify"

// Collectors holds the gauges describing the latest run.
type Collectors struct {
	Commands     *prometheus.GaugeVec
	Results      *prometheus.GaugeVec
	Cache        *prometheus.GaugeVec
	HitRatio     prometheus.Gauge
	Duration     prometheus.Gauge
	LastRun      prometheus.Gauge
	ChangedFiles prometheus.Gauge
}

// NewCollectors registers the run gauges on reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Commands: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "commands",
			Help:      "Documented commands by classification category.",
		}, []string{"category"}),
		Results: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "results",
			Help:      "Validation results by outcome.",
		}, []string{"outcome"}),
		Cache: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations",
			Help:      "Cache activity during the last run.",
		}, []string{"kind"}),
		HitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hit_ratio",
			Help:      "Cache hits divided by lookups in the last run.",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		ChangedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "changed_files",
			Help:      "Files changed since the previous validated commit.",
		}),
	}
	for _, col := range []prometheus.Collector{c.Commands, c.Results, c.Cache, c.HitRatio, c.Duration, c.LastRun, c.ChangedFiles} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return c, nil
}

// Set copies a summary into the gauges.
func (c *Collectors) Set(s domain.Summary, finished time.Time) {
	for _, cat := range domain.Categories() {
		c.Commands.WithLabelValues(string(cat)).Set(float64(s.ByCategory[cat]))
	}
	c.Results.WithLabelValues("succeeded").Set(float64(s.Succeeded))
	c.Results.WithLabelValues("failed").Set(float64(s.Failed))
	c.Results.WithLabelValues("unavailable").Set(float64(s.Unavailable))
	c.Cache.WithLabelValues("hits").Set(float64(s.Cache.Hits))
	c.Cache.WithLabelValues("misses").Set(float64(s.Cache.Misses))
	c.Cache.WithLabelValues("repaired").Set(float64(s.Cache.Repaired))
	c.Cache.WithLabelValues("writes").Set(float64(s.Cache.Writes))
	c.HitRatio.Set(s.Cache.HitRate)
	c.Duration.Set(float64(s.DurationMS) / 1000)
	c.LastRun.Set(float64(finished.Unix()))
	c.ChangedFiles.Set(float64(s.ChangedFiles))
}

// TextfileSink writes the latest summary to a .prom file on every run.
type TextfileSink struct {
	path       string
	registry   *prometheus.Registry
	collectors *Collectors
	now        func() time.Time
}

// NewTextfileSink prepares a sink with its own registry.
func NewTextfileSink(path string) (*TextfileSink, error) {
	reg := prometheus.NewRegistry()
	collectors, err := NewCollectors(reg)
	if err != nil {
		return nil, err
	}
	return &TextfileSink{path: path, registry: reg, collectors: collectors, now: time.Now}, nil
}

// Observe implements ports.MetricsSink.
func (s *TextfileSink) Observe(summary domain.Summary) error {
	s.collectors.Set(summary, s.now())
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(s.path, s.registry)
}

// Registry exposes the sink's registry.
func (s *TextfileSink) Registry() *prometheus.Registry {
	return s.registry
}

var _ ports.MetricsSink = (*TextfileSink)(nil)
