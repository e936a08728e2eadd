package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for heatmap runs.
type Metrics struct {
	RowsRead        prometheus.Counter
	RowsRetained    prometheus.Counter
	RowsInvalidHour prometheus.Counter
	LoadErrors      prometheus.Counter
	Runs            *prometheus.CounterVec // labels: outcome={success,load_error,render_error,publish_error}
	MaxCollisions   prometheus.Gauge
	LastSuccess     prometheus.Gauge

	LoadDuration   prometheus.Histogram
	RenderDuration prometheus.Histogram

	CellsPublished *prometheus.CounterVec // labels: sink={file,kafka}
}

// NewMetrics creates and registers all heatmap metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.RowsRead,
		m.RowsRetained,
		m.RowsInvalidHour,
		m.LoadErrors,
		m.Runs,
		m.MaxCollisions,
		m.LastSuccess,
		m.LoadDuration,
		m.RenderDuration,
		m.CellsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collision_heatmap",
			Name:      "rows_read_total",
			Help:      "Total CSV rows parsed into collision records.",
		}),
		RowsRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collision_heatmap",
			Name:      "rows_retained_total",
			Help:      "Rows matching the target cities and peak hours.",
		}),
		RowsInvalidHour: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collision_heatmap",
			Name:      "rows_invalid_hour_total",
			Help:      "Rows whose time column had no parsable hour.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collision_heatmap",
			Name:      "load_errors_total",
			Help:      "Failed CSV fetch or parse attempts.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_heatmap",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		MaxCollisions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collision_heatmap",
			Name:      "max_collisions",
			Help:      "Largest cell count in the most recent matrix.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collision_heatmap",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the most recent successful run.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collision_heatmap",
			Name:      "load_duration_seconds",
			Help:      "Duration of fetching and parsing the CSV.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collision_heatmap",
			Name:      "render_duration_seconds",
			Help:      "Duration of aggregation and SVG rendering.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		CellsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_heatmap",
			Name:      "cells_published_total",
			Help:      "Matrix cells written to each sink.",
		}, []string{"sink"}),
	}
}
