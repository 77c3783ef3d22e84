// README: Travel-time estimator: live traffic primary, rush-hour model fallback.
package travel

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"dispatch/internal/circuit"
	"dispatch/internal/metrics"
	"dispatch/internal/modules/geo"
	"dispatch/internal/types"
)

const (
	// trafficTimeout is the per-call deadline for the live provider.
	trafficTimeout = 1 * time.Second
	// fixedOverheadMinutes covers parking, loading, and walking at both ends.
	fixedOverheadMinutes = 5
	// averageSpeedMPH drives the base of the piecewise model.
	averageSpeedMPH = 30.0
)

// TrafficProvider is the optional live provider; *maps.TrafficService
// satisfies it. A nil provider means model-only estimates.
type TrafficProvider interface {
	TravelMinutes(ctx context.Context, from, to types.Point, departAt time.Time) (int, error)
}

// Estimator produces minute-accurate travel estimates between coordinates.
type Estimator struct {
	provider TrafficProvider
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewEstimator(provider TrafficProvider, breaker *circuit.Breaker, logger *slog.Logger) *Estimator {
	return &Estimator{provider: provider, breaker: breaker, logger: logger}
}

// Estimate returns whole minutes from from to to when departing at the given
// local time. The live provider is tried first; the rush-hour model answers
// when it is absent, failing, or circuit-broken.
func (e *Estimator) Estimate(ctx context.Context, from, to types.Point, departAtLocal time.Time) int {
	if e.provider != nil {
		var minutes int
		err := circuit.Do(ctx, e.breaker, circuit.DefaultRetry(trafficTimeout), trafficTransient,
			func(ctx context.Context) error {
				m, err := e.provider.TravelMinutes(ctx, from, to, departAtLocal)
				if err != nil {
					return err
				}
				minutes = m
				return nil
			})
		if err == nil {
			return minutes
		}
		metrics.ProviderFallbacksTotal.WithLabelValues("traffic").Inc()
		e.logger.Debug("live traffic unavailable, using model", "error", err)
	}
	return ModelMinutes(geo.MilesBetween(from, to), departAtLocal)
}

// ModelMinutes is the deterministic piecewise estimate: base minutes at
// 30 mph, multiplied by the rush-hour factor for the departure time, plus a
// fixed origin/destination overhead. Ties round up.
func ModelMinutes(distanceMiles float64, departAtLocal time.Time) int {
	base := distanceMiles / averageSpeedMPH * 60
	adjusted := base * rushFactor(departAtLocal)
	return int(math.Ceil(adjusted)) + fixedOverheadMinutes
}

// rushFactor encodes the congestion curve: weekday commute peaks at 1.9,
// Saturday midday at 1.2, free flow otherwise.
func rushFactor(t time.Time) float64 {
	m := t.Hour()*60 + t.Minute()
	switch t.Weekday() {
	case time.Saturday:
		if m >= 10*60 && m < 14*60 {
			return 1.2
		}
		return 1.0
	case time.Sunday:
		return 1.0
	default:
		if (m >= 7*60 && m < 10*60) || (m >= 16*60 && m < 19*60) {
			return 1.9
		}
		return 1.0
	}
}

func trafficTransient(err error) bool {
	return !errors.Is(err, context.Canceled)
}
