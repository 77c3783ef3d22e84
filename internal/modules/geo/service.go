// README: Address resolver: precheck, geocode through the breaker, radius gate.
package geo

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"dispatch/internal/circuit"
	gmaps "dispatch/internal/maps"
	"dispatch/internal/metrics"
	"dispatch/internal/types"
)

// geocodeTimeout is the per-call deadline for the geocoding provider.
const geocodeTimeout = 1500 * time.Millisecond

var (
	streetNumberPattern = regexp.MustCompile(`^\d+\s+\w+`)
	zipPattern          = regexp.MustCompile(`\b\d{5}\b`)
)

// Geocoder is the provider dependency; *maps.Geocoder satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (gmaps.GeocodeResult, error)
}

// Resolver turns free-form address text into a service-area verdict.
type Resolver struct {
	geocoder Geocoder
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewResolver(geocoder Geocoder, breaker *circuit.Breaker, logger *slog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, breaker: breaker, logger: logger}
}

// Resolve geocodes text and gates it against the anchor's service radius.
// Returns ErrNeedSpecificAddress or ErrGeocodeFailed as the Unresolved
// reasons; callers turn those into a single clarifying question.
func (r *Resolver) Resolve(ctx context.Context, text string, anchor types.Point, radiusMiles float64) (*ResolvedAddress, error) {
	cleaned := normalize(text)
	if cleaned == "" {
		return nil, ErrNeedSpecificAddress
	}
	if !streetNumberPattern.MatchString(cleaned) && !zipPattern.MatchString(cleaned) {
		return nil, ErrNeedSpecificAddress
	}

	var result gmaps.GeocodeResult
	err := circuit.Do(ctx, r.breaker, circuit.DefaultRetry(geocodeTimeout), geocodeTransient,
		func(ctx context.Context) error {
			res, err := r.geocoder.Geocode(ctx, cleaned)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	if err != nil {
		metrics.ProviderFallbacksTotal.WithLabelValues("geocoding").Inc()
		r.logger.Warn("geocode failed", "error", err)
		return nil, ErrGeocodeFailed
	}

	distance := MilesBetween(anchor, result.Point)
	return &ResolvedAddress{
		Formatted:     result.Formatted,
		Point:         result.Point,
		InServiceArea: distance <= radiusMiles,
		DistanceMiles: distance,
		Geocoded:      true,
	}, nil
}

// normalize collapses whitespace and strips leading/trailing punctuation.
func normalize(text string) string {
	fields := strings.Fields(text)
	joined := strings.Join(fields, " ")
	return strings.Trim(joined, " .,;:!?")
}

// geocodeTransient: zero-result lookups are deterministic, everything else
// (timeouts, 5xx, rate limits) is retried.
func geocodeTransient(err error) bool {
	if errors.Is(err, gmaps.ErrNoResult) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
