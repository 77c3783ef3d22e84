// README: Resolved address value object and unresolved reasons.
package geo

import (
	"errors"

	"dispatch/internal/types"
)

var (
	// ErrNeedSpecificAddress means the text lacked a street number or ZIP
	// and was never sent to the geocoder.
	ErrNeedSpecificAddress = errors.New("need_specific_address")
	// ErrGeocodeFailed covers provider timeouts and zero-result lookups.
	ErrGeocodeFailed = errors.New("geocode_failed")
)

// ResolvedAddress is the outcome of geocoding plus the service-area gate.
type ResolvedAddress struct {
	Formatted     string      `json:"formatted"`
	Point         types.Point `json:"point"`
	InServiceArea bool        `json:"in_service_area"`
	DistanceMiles float64     `json:"distance_miles"`
	Geocoded      bool        `json:"geocoded"`
}
