// README: Canned scenarios and the stub geocoder backing the simulator.
package main

import (
	"context"
	"strings"
	"time"

	gmaps "dispatch/internal/maps"
	"dispatch/internal/modules/profile"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/service"
	"dispatch/internal/types"
)

type scenario struct {
	Name    string
	Request *service.DispatchRequest
}

// stubGeocoder resolves a handful of fixed addresses by substring. Unknown
// text behaves like a zero-result provider response.
type stubGeocoder struct {
	table map[string]gmaps.GeocodeResult
}

func newStubGeocoder() *stubGeocoder {
	return &stubGeocoder{table: map[string]gmaps.GeocodeResult{
		"sunset": {Formatted: "789 Sunset Blvd, Beverly Hills, CA 90210", Point: types.Point{Lat: 34.0901, Lng: -118.4065}},
		"oak":    {Formatted: "789 Oak St, Beverly Hills, CA 90210", Point: types.Point{Lat: 34.0822, Lng: -118.4101}},
		"remote": {Formatted: "456 Remote Rd, Ridgecrest, CA 93555", Point: types.Point{Lat: 35.6225, Lng: -117.6709}},
	}}
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) (gmaps.GeocodeResult, error) {
	lower := strings.ToLower(address)
	for key, res := range s.table {
		if strings.Contains(lower, key) {
			return res, nil
		}
	}
	return gmaps.GeocodeResult{}, gmaps.ErrNoResult
}

// plumbingProfile mirrors a typical single-crew plumbing shop in Los Angeles.
func plumbingProfile() profile.BusinessProfile {
	weekHours := func(start, end string) map[string]profile.DayHours {
		out := map[string]profile.DayHours{}
		for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
			out[d] = profile.DayHours{Start: start, End: end}
		}
		out["saturday"] = profile.DayHours{Start: "09:00", End: "14:00"}
		return out
	}
	return profile.BusinessProfile{
		BusinessName:       "Hank's Plumbing",
		Trade:              profile.TradePlumbing,
		Timezone:           "America/Los_Angeles",
		Anchor:             profile.AnchorAddress{Address: "100 Main St, Los Angeles, CA", Lat: 34.0522, Lng: -118.2437},
		ServiceRadiusMiles: 25,
		BusinessHours:      weekHours("08:00", "18:00"),
		PhoneHours:         weekHours("07:00", "22:00"),
		Capacity: profile.CapacityRules{
			MaxJobsPerDay:           6,
			MinBufferMinutes:        15,
			MaxAfterHoursJobsPerDay: 2,
		},
		Travel: profile.TravelLimits{MaxTravelTimeMinutes: 60, MaxTravelDistanceMiles: 25},
		Toggles: profile.Toggles{
			AcceptEmergencies:         true,
			AcceptAfterHoursEmergency: true,
		},
		Pricing: []profile.JobEstimate{
			{JobType: "water_heater", EstimatedHours: 2.5, CostMin: 150, CostMax: 300},
			{JobType: "burst_pipe", EstimatedHours: 2, CostMin: 200, CostMax: 450},
			{JobType: "drain_clog", EstimatedHours: 1, CostMin: 95, CostMax: 185},
			{JobType: "faucet_repair", EstimatedHours: 1, CostMin: 85, CostMax: 160},
			{JobType: "toilet_repair", EstimatedHours: 1, CostMin: 90, CostMax: 180},
			{JobType: "diagnostic", EstimatedHours: 1, CostMin: 75, CostMax: 150},
		},
		EmergencyNumber: "+12135550911",
	}
}

func baseRequest(sid, message string, at time.Time) *service.DispatchRequest {
	return &service.DispatchRequest{
		CallerPhone:     "+13105551234",
		CalledNumber:    "+12135550100",
		ConversationSID: sid,
		CurrentMessage:  message,
		Profile:         plumbingProfile(),
		CurrentTime:     at.UTC(),
	}
}

func scenarios() []scenario {
	la, _ := time.LoadLocation("America/Los_Angeles")
	afternoon := time.Date(2025, 8, 6, 14, 15, 0, 0, la)
	lateNight := time.Date(2025, 8, 6, 23, 30, 0, 0, la)

	busyEvent := func(id string, startHour, startMin, durMin int) schedule.CalendarEvent {
		start := time.Date(2025, 8, 6, startHour, startMin, 0, 0, la)
		return schedule.CalendarEvent{
			EventID:     id,
			Start:       start.UTC(),
			End:         start.Add(time.Duration(durMin) * time.Minute).UTC(),
			Location:    schedule.EventLocation{Address: "West LA", Lat: 34.0736, Lng: -118.4004},
			BookingType: schedule.BookingConfirmed,
		}
	}

	emergency := baseRequest("sim-s1", "Water heater burst in basement! 789 Sunset Blvd, 90210", afternoon)
	emergency.Calendar = []schedule.CalendarEvent{busyEvent("ev-1", 15, 30, 90)}

	confirm := baseRequest("sim-s2", "YES", afternoon.Add(5*time.Minute))
	confirm.Calendar = emergency.Calendar
	confirm.History = []types.Turn{
		{Sender: types.SenderCustomer, Text: "Water heater burst in basement! 789 Sunset Blvd, 90210", Timestamp: afternoon.UTC()},
		{Sender: types.SenderBot, Text: "We can be at 789 Sunset Blvd today at 5:30 PM. Estimate: $225-$600. Reply YES to confirm or NO for a different time.", Timestamp: afternoon.Add(time.Minute).UTC()},
	}

	outOfArea := baseRequest("sim-s3", "Pipe leaking at 456 Remote Rd, 93555", afternoon)

	vague := baseRequest("sim-s4", "Something's broken, help!", afternoon)

	fullDay := baseRequest("sim-s5", "Bathroom faucet dripping, 789 Oak St 90210", afternoon)
	for i := 0; i < 6; i++ {
		fullDay.Calendar = append(fullDay.Calendar, busyEvent("busy", 8+i*90/60, (i*90)%60, 80))
	}

	afterHours := baseRequest("sim-s6", "Emergency! Toilet overflowing!", lateNight)

	return []scenario{
		{Name: "S1 same-day emergency", Request: emergency},
		{Name: "S2 confirmation", Request: confirm},
		{Name: "S3 out of service area", Request: outOfArea},
		{Name: "S4 low-confidence clarification", Request: vague},
		{Name: "S5 capacity exceeded", Request: fullDay},
		{Name: "S6 outside phone hours", Request: afterHours},
	}
}
