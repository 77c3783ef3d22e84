// README: Live-traffic duration client wrapping the Google Directions API.
package maps

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"dispatch/internal/types"
)

// TrafficService returns traffic-aware drive durations between coordinates.
type TrafficService struct {
	client *maps.Client
}

// NewTrafficService creates a TrafficService with the given API key.
func NewTrafficService(apiKey string) (*TrafficService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &TrafficService{client: client}, nil
}

// TravelMinutes returns the drive time in whole minutes, rounding up.
// departAt biases the estimate with live/predicted traffic.
func (t *TrafficService) TravelMinutes(ctx context.Context, from, to types.Point, departAt time.Time) (int, error) {
	r := &maps.DirectionsRequest{
		Origin:        fmt.Sprintf("%f,%f", from.Lat, from.Lng),
		Destination:   fmt.Sprintf("%f,%f", to.Lat, to.Lng),
		Mode:          maps.TravelModeDriving,
		DepartureTime: strconv.FormatInt(departAt.Unix(), 10),
	}

	routes, _, err := t.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("directions error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	dur := leg.Duration
	if leg.DurationInTraffic > 0 {
		dur = leg.DurationInTraffic
	}
	return int(math.Ceil(dur.Minutes())), nil
}
