// README: Business profile aggregate supplied on every request.
package profile

import (
	"fmt"
	"time"

	"dispatch/internal/types"
)

type Trade string

const (
	TradePlumbing   Trade = "plumbing"
	TradeElectrical Trade = "electrical"
	TradeHVAC       Trade = "hvac"
	TradeLocksmith  Trade = "locksmith"
	TradeGarageDoor Trade = "garage_door"
)

// KnownTrade reports whether t is one of the supported trades.
func KnownTrade(t Trade) bool {
	switch t {
	case TradePlumbing, TradeElectrical, TradeHVAC, TradeLocksmith, TradeGarageDoor:
		return true
	}
	return false
}

// DayHours is an open window within a single day, "HH:MM" 24h strings.
type DayHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CapacityRules struct {
	MaxJobsPerDay           int `json:"max_jobs_per_day"`
	MinBufferMinutes        int `json:"min_buffer_between_jobs"`
	MaxAfterHoursJobsPerDay int `json:"max_after_hours_jobs_per_day"`
}

type TravelLimits struct {
	MaxTravelTimeMinutes   int     `json:"max_travel_time_minutes"`
	MaxTravelDistanceMiles float64 `json:"max_travel_distance_miles"`
}

type Toggles struct {
	AcceptEmergencies         bool `json:"accept_emergencies"`
	OutOfOffice               bool `json:"out_of_office"`
	OvertimeAllowed           bool `json:"overtime_allowed"`
	AcceptAfterHoursEmergency bool `json:"accept_after_hours_emergency"`
}

// JobEstimate is one row of the profile's pricing table.
type JobEstimate struct {
	JobType        string  `json:"job_type"`
	EstimatedHours float64 `json:"estimated_hours"`
	CostMin        int64   `json:"cost_min"`
	CostMax        int64   `json:"cost_max"`
	// UrgencyMultiplier, when positive, replaces the bucket's emergency
	// band with a flat per-job factor.
	UrgencyMultiplier float64 `json:"urgency_multiplier,omitempty"`
}

// MultiplierBand is a low/high factor pair applied to cost_min/cost_max.
type MultiplierBand struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type AnchorAddress struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (a AnchorAddress) Point() types.Point {
	return types.Point{Lat: a.Lat, Lng: a.Lng}
}

// BusinessProfile is the full per-tenant configuration. It arrives on every
// request and is never persisted.
type BusinessProfile struct {
	BusinessName       string              `json:"business_name"`
	Trade              Trade               `json:"trade"`
	Timezone           string              `json:"timezone"`
	Anchor             AnchorAddress       `json:"anchor_address"`
	ServiceRadiusMiles float64             `json:"service_radius_miles"`
	BusinessHours      map[string]DayHours `json:"business_hours"`
	PhoneHours         map[string]DayHours `json:"phone_hours"`
	Capacity           CapacityRules       `json:"capacity"`
	Travel             TravelLimits        `json:"travel"`
	Toggles            Toggles             `json:"toggles"`
	Pricing            []JobEstimate       `json:"pricing"`
	// EmergencyMultipliers overrides the default bands per bucket
	// ("work", "evening", "night") when present.
	EmergencyMultipliers map[string]MultiplierBand `json:"emergency_multipliers,omitempty"`
	EmergencyNumber      string                    `json:"emergency_number,omitempty"`
	// Holidays are "2006-01-02" dates priced like weekends; scheduling still
	// uses that weekday's business hours.
	Holidays []string `json:"holidays,omitempty"`
}

// Location returns the profile's IANA timezone, defaulting to UTC on a bad
// or missing name so a turn can still complete.
func (p *BusinessProfile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FindEstimate looks up the pricing row for a job type.
func (p *BusinessProfile) FindEstimate(jobType string) (*JobEstimate, bool) {
	for i := range p.Pricing {
		if p.Pricing[i].JobType == jobType {
			return &p.Pricing[i], true
		}
	}
	return nil, false
}

// DiagnosticEstimate is the quote used when job classification confidence is
// too low to pick a specific row.
func (p *BusinessProfile) DiagnosticEstimate() *JobEstimate {
	if est, ok := p.FindEstimate("diagnostic"); ok {
		return est
	}
	return &JobEstimate{JobType: "diagnostic", EstimatedHours: 1, CostMin: 75, CostMax: 150}
}

// IsHoliday reports whether the local date is in the holiday list.
func (p *BusinessProfile) IsHoliday(local time.Time) bool {
	day := local.Format("2006-01-02")
	for _, h := range p.Holidays {
		if h == day {
			return true
		}
	}
	return false
}

// Validate checks the constraint surface enforced at the HTTP boundary.
func (p *BusinessProfile) Validate() error {
	if !KnownTrade(p.Trade) {
		return fmt.Errorf("unknown trade %q", p.Trade)
	}
	if p.ServiceRadiusMiles < 1 || p.ServiceRadiusMiles > 100 {
		return fmt.Errorf("service_radius_miles must be in [1,100]")
	}
	for day, h := range p.BusinessHours {
		if _, err := ParseHHMM(h.Start); err != nil {
			return fmt.Errorf("business_hours[%s].start: %w", day, err)
		}
		if _, err := ParseHHMM(h.End); err != nil {
			return fmt.Errorf("business_hours[%s].end: %w", day, err)
		}
	}
	for day, h := range p.PhoneHours {
		if _, err := ParseHHMM(h.Start); err != nil {
			return fmt.Errorf("phone_hours[%s].start: %w", day, err)
		}
		if _, err := ParseHHMM(h.End); err != nil {
			return fmt.Errorf("phone_hours[%s].end: %w", day, err)
		}
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}
	return nil
}
