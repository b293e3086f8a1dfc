package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "hyperfold"
	subsystem        = "sweep"
)

var (
	// FoldsTotal counts requested temperatures by outcome (computed, cached, failed).
	FoldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "folds_total",
			Help:      "Total number of requested temperatures by outcome",
		},
		[]string{"outcome"},
	)

	FoldDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "fold_duration_seconds",
			Help:      "Time taken to fold and build one snapshot",
			Buckets:   prometheus.DefBuckets,
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "sweep_duration_seconds",
			Help:      "Time taken to complete one sweep request",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)
)
