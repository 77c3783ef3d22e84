// Package metrics - Prometheus metrics for dispatch turns and providers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnDuration tracks the wall-clock time of a dispatch turn.
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_turn_duration_seconds",
		Help:    "Duration of a dispatch pipeline turn",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 8), // 50ms to 6.4s
	})

	// DecisionsTotal counts decisions by next action.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_decisions_total",
		Help: "Total decisions by next_action",
	}, []string{"next_action"})

	// ProviderFallbacksTotal counts falls to the deterministic path by provider.
	ProviderFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_provider_fallbacks_total",
		Help: "Provider calls resolved by the fallback path",
	}, []string{"provider"})

	// DedupHitsTotal counts replayed turns.
	DedupHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_dedup_hits_total",
		Help: "Turns answered verbatim from the idempotency store",
	})

	// BreakerState exposes each provider breaker (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_breaker_state",
		Help: "Circuit breaker state per provider",
	}, []string{"provider"})
)
