// Package metrics counts what each pipeline run did, on a private Prometheus
// registry that is written out in text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline holds the counters touched by one loadmetrics process.
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	registry *prometheus.Registry

	rowsIngested     prometheus.Counter
	rowsFiltered     prometheus.Counter
	rowsDeduplicated prometheus.Counter
	rowsScored       prometheus.Counter
	singletonGroups  *prometheus.CounterVec
	degenerateGroups *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	runDuration      prometheus.Histogram
	lastRunUnix      prometheus.Gauge
}

// New registers every collector under namespace on a fresh registry.
func New(opts ...Option) *Pipeline {
	o := options{namespace: "loadmetrics", buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(&o)
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: o.namespace, Subsystem: "pipeline", Name: name, Help: help})
	}

	p := &Pipeline{
		registry:         prometheus.NewRegistry(),
		rowsIngested:     counter("rows_ingested_total", "Raw session records read from the source."),
		rowsFiltered:     counter("rows_filtered_total", "Records dropped because they belong to another team."),
		rowsDeduplicated: counter("rows_deduplicated_total", "Records removed while collapsing drills into one session per player and day."),
		rowsScored:       counter("rows_scored_total", "Sessions written to the output table."),
		singletonGroups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "pipeline", Name: "singleton_groups_total",
			Help: "Player/day groups with a single record, by what the policy did with them.",
		}, []string{"action"}),
		degenerateGroups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "pipeline", Name: "degenerate_groups_total",
			Help: "Reference groups with zero or undefined standard deviation, by metric.",
		}, []string{"metric"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Scored-dataset cache lookups, by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace, Subsystem: "pipeline", Name: "run_duration_seconds",
			Help: "Wall time of one pipeline run.", Buckets: o.buckets,
		}),
		lastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: o.namespace, Subsystem: "pipeline", Name: "last_run_timestamp_seconds",
			Help: "Unix time the last pipeline run finished.",
		}),
	}
	p.registry.MustRegister(
		p.rowsIngested, p.rowsFiltered, p.rowsDeduplicated, p.rowsScored,
		p.singletonGroups, p.degenerateGroups, p.cacheLookups,
		p.runDuration, p.lastRunUnix,
	)
	return p
}

func (p *Pipeline) RowsIngested(n int) {
	if p != nil {
		p.rowsIngested.Add(float64(n))
	}
}

func (p *Pipeline) RowsFiltered(n int) {
	if p != nil {
		p.rowsFiltered.Add(float64(n))
	}
}

func (p *Pipeline) RowsDeduplicated(n int) {
	if p != nil {
		p.rowsDeduplicated.Add(float64(n))
	}
}

func (p *Pipeline) RowsScored(n int) {
	if p != nil {
		p.rowsScored.Add(float64(n))
	}
}

// SingletonGroups records n groups handled with action ("preserved" or "dropped").
func (p *Pipeline) SingletonGroups(action string, n int) {
	if p != nil && n > 0 {
		p.singletonGroups.WithLabelValues(action).Add(float64(n))
	}
}

func (p *Pipeline) DegenerateGroups(metric string, n int) {
	if p != nil && n > 0 {
		p.degenerateGroups.WithLabelValues(metric).Add(float64(n))
	}
}

// CacheLookup records a cache hit or miss.
func (p *Pipeline) CacheLookup(hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRun records the duration of a finished run.
func (p *Pipeline) ObserveRun(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.lastRunUnix.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry { return p.registry }

// WriteTextfile atomically writes every collected metric to path.
func (p *Pipeline) WriteTextfile(path string) error {
	if p == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
