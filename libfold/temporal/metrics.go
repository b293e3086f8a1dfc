package temporal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "hyperfold"
	subsystem        = "temporal"
)

var (
	// InsertTotal counts Insert calls by strategy and outcome (added, duplicate, conflict, rejected).
	InsertTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "insert_total",
			Help:      "Total number of snapshot insertions",
		},
		[]string{"strategy", "outcome"},
	)

	// CoalesceTotal counts how an added temperature was placed (new, extend_left, extend_right, bridge).
	CoalesceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "coalesce_total",
			Help:      "Total number of range placements by kind",
		},
		[]string{"strategy", "kind"},
	)

	LookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "lookup_total",
			Help:      "Total number of snapshot lookups",
		},
		[]string{"strategy", "result"}, // hit, miss
	)

	InternedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "interned_snapshots_total",
			Help:      "Total number of distinct snapshot instances retained",
		},
	)
)
