// README: Calendar events, slots, and rejection reasons for the scheduling engine.
package schedule

import (
	"strings"
	"time"

	"dispatch/internal/types"
)

type BookingType string

const (
	BookingConfirmed BookingType = "confirmed"
	BookingTentative BookingType = "tentative"
)

type SlotKind string

const (
	SlotRegular              SlotKind = "regular"
	SlotAfterHoursEmergency  SlotKind = "after_hours_emergency"
	SlotEarlyMorningPriority SlotKind = "early_morning_priority"
)

type EventLocation struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (l EventLocation) Point() types.Point {
	return types.Point{Lat: l.Lat, Lng: l.Lng}
}

// CalendarEvent is an existing booking supplied by the caller. The engine
// only reads the calendar; persistence and sync are external concerns.
type CalendarEvent struct {
	EventID     string        `json:"event_id"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Location    EventLocation `json:"location"`
	BookingType BookingType   `json:"booking_type"`
	JobType     string        `json:"job_type,omitempty"`
}

// Slot is a concrete appointment offer.
type Slot struct {
	Start                 time.Time   `json:"start"`
	End                   time.Time   `json:"end"`
	ResourceID            string      `json:"resource_id"`
	BookingType           BookingType `json:"booking_type"`
	TravelFromPrevMinutes int         `json:"travel_from_prev_minutes"`
	TravelToNextMinutes   int         `json:"travel_to_next_minutes"`
	PriceMin              int64       `json:"price_min"`
	PriceMax              int64       `json:"price_max"`
	Kind                  SlotKind    `json:"slot_kind"`
	// ArrivalWindowMinutes widens a tentative offer into a start range
	// instead of an exact time (next-day funnel).
	ArrivalWindowMinutes int `json:"arrival_window_minutes,omitempty"`
}

// Rejection reasons, surfaced verbatim in validation errors.
const (
	ReasonOutOfServiceArea      = "out_of_service_area"
	ReasonOutsidePhoneHours     = "outside_phone_hours"
	ReasonOutsideBusinessHours  = "outside_business_hours"
	ReasonCapacityExceeded      = "capacity_exceeded"
	ReasonAfterHoursQuota       = "after_hours_quota_reached"
	ReasonTravelLimitsExceeded  = "travel_limits_exceeded"
	ReasonTradeUnsupported      = "trade_unsupported"
	ReasonJobUnsupported        = "job_unsupported"
	ReasonOutOfOffice           = "out_of_office"
	ReasonGeocodeFailed         = "geocode_failed"
)

// NoFeasibleSlot enumerates every reason a slot could not be produced.
type NoFeasibleSlot struct {
	Reasons []string
}

func (e *NoFeasibleSlot) Error() string {
	return "no feasible slot: " + strings.Join(e.Reasons, ", ")
}

func (e *NoFeasibleSlot) add(reason string) {
	for _, r := range e.Reasons {
		if r == reason {
			return
		}
	}
	e.Reasons = append(e.Reasons, reason)
}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
