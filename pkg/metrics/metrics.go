// Package metrics provides Prometheus metrics for the Aster service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal tracks lookups by match tier
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "lookup",
			Name:      "lookups_total",
			Help:      "Total number of lookups by match type",
		},
		[]string{"tenant_id", "match_type"},
	)

	// LookupDuration tracks lookup resolution time in seconds
	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aster",
			Subsystem: "lookup",
			Name:      "duration_seconds",
			Help:      "Duration of lookup resolutions in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"tenant_id"},
	)

	// RowCacheHits tracks dataset row cache hits and misses
	RowCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "lookup",
			Name:      "row_cache_total",
			Help:      "Dataset row cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// ReviewDecisionsTotal tracks review decisions by kind
	ReviewDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "review",
			Name:      "decisions_total",
			Help:      "Total number of review decisions by kind",
		},
		[]string{"tenant_id", "kind"},
	)

	// ReviewSessionsActive tracks review sessions currently held in memory
	ReviewSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aster",
			Subsystem: "review",
			Name:      "sessions_active",
			Help:      "Number of review sessions currently active",
		},
	)
)
