// README: Common value objects used across modules.
package types

import "time"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point carries no coordinates.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// PriceRange is an estimate band in whole currency units.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

const (
	SenderBot      = "bot"
	SenderCustomer = "customer"
)

// Turn is a single message of the SMS conversation, as supplied by the caller.
type Turn struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
