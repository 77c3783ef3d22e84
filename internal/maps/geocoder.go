// README: Geocoding client wrapping the Google Maps Web API.
package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"dispatch/internal/types"
)

// ErrNoResult is returned when the provider resolves zero candidates.
var ErrNoResult = errors.New("address not found")

// GeocodeResult is the provider-neutral shape handed to the resolver.
type GeocodeResult struct {
	Formatted string
	Point     types.Point
}

// Geocoder handles address → coordinate lookups.
type Geocoder struct {
	client *maps.Client
}

// NewGeocoder creates a Geocoder with the given API key.
func NewGeocoder(apiKey string) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client}, nil
}

// Geocode converts a free-form address into coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (GeocodeResult, error) {
	r := &maps.GeocodingRequest{
		Address:  address,
		Language: "en",
		Region:   "US",
	}

	results, err := g.client.Geocode(ctx, r)
	if err != nil {
		return GeocodeResult{}, fmt.Errorf("geocoding error: %w", err)
	}
	if len(results) == 0 {
		return GeocodeResult{}, ErrNoResult
	}

	loc := results[0].Geometry.Location
	return GeocodeResult{
		Formatted: results[0].FormattedAddress,
		Point:     types.Point{Lat: loc.Lat, Lng: loc.Lng},
	}, nil
}
