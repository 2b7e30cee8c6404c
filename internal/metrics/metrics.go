// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// FetchesTotal tracks the number of fetch attempts, labeled by outcome.
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_fetches_total",
		Help: "The total number of fetch attempts, labeled by outcome.",
	}, []string{"outcome"})
	// ThrottleWaitSeconds observes how long workers waited on per-host throttling.
	ThrottleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciler_throttle_wait_seconds",
		Help:    "Time spent waiting for per-host politeness slots.",
		Buckets: prometheus.DefBuckets,
	})
	// ReferencesMatched tracks reference records matched to an extracted record.
	ReferencesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_references_matched_total",
		Help: "The total number of reference records matched, exactly or approximately.",
	})
	// ReferencesUnmatched tracks reference records with no acceptable candidate.
	ReferencesUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_references_unmatched_total",
		Help: "The total number of reference records left unmatched.",
	})
)
