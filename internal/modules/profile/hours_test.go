package profile

import (
	"testing"
	"time"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"7:65", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseHHMM(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseHHMM(%q) = %d,%v want %d,err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func testProfile() *BusinessProfile {
	return &BusinessProfile{
		BusinessName:       "Hank's Plumbing",
		Trade:              TradePlumbing,
		Timezone:           "America/Los_Angeles",
		ServiceRadiusMiles: 25,
		BusinessHours: map[string]DayHours{
			"monday":    {Start: "08:00", End: "18:00"},
			"tuesday":   {Start: "08:00", End: "18:00"},
			"wednesday": {Start: "08:00", End: "18:00"},
			"thursday":  {Start: "08:00", End: "18:00"},
			"friday":    {Start: "08:00", End: "18:00"},
		},
		PhoneHours: map[string]DayHours{
			"monday":    {Start: "07:00", End: "22:00"},
			"tuesday":   {Start: "07:00", End: "22:00"},
			"wednesday": {Start: "07:00", End: "22:00"},
			"thursday":  {Start: "07:00", End: "22:00"},
			"friday":    {Start: "07:00", End: "22:00"},
		},
	}
}

func la(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestHoursWindows(t *testing.T) {
	p := testProfile()
	loc := la(t)

	wednesdayNoon := time.Date(2025, 8, 6, 12, 0, 0, 0, loc)
	wednesdayLate := time.Date(2025, 8, 6, 23, 30, 0, 0, loc)
	saturday := time.Date(2025, 8, 9, 12, 0, 0, 0, loc)

	if !p.InBusinessHours(wednesdayNoon) || !p.InPhoneHours(wednesdayNoon) {
		t.Error("weekday noon should be inside both windows")
	}
	if p.InBusinessHours(wednesdayLate) || p.InPhoneHours(wednesdayLate) {
		t.Error("23:30 should be outside both windows")
	}
	evening := time.Date(2025, 8, 6, 20, 0, 0, 0, loc)
	if p.InBusinessHours(evening) || !p.InPhoneHours(evening) {
		t.Error("20:00 should be phone-hours only")
	}
	if p.InBusinessHours(saturday) {
		t.Error("saturday has no configured hours")
	}

	close, ok := p.BusinessClose(wednesdayNoon)
	if !ok || close.Hour() != 18 {
		t.Errorf("BusinessClose = %v,%v", close, ok)
	}
	phoneClose, ok := p.PhoneClose(wednesdayNoon)
	if !ok || phoneClose.Hour() != 22 {
		t.Errorf("PhoneClose = %v,%v", phoneClose, ok)
	}
	if _, ok := p.BusinessClose(saturday); ok {
		t.Error("BusinessClose should report closed days")
	}
}

func TestProfileValidate(t *testing.T) {
	p := testProfile()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	bad := testProfile()
	bad.Trade = "carpentry"
	if err := bad.Validate(); err == nil {
		t.Error("unknown trade accepted")
	}

	bad = testProfile()
	bad.ServiceRadiusMiles = 300
	if err := bad.Validate(); err == nil {
		t.Error("out-of-range radius accepted")
	}

	bad = testProfile()
	bad.BusinessHours["monday"] = DayHours{Start: "8am", End: "18:00"}
	if err := bad.Validate(); err == nil {
		t.Error("malformed hours accepted")
	}

	bad = testProfile()
	bad.Timezone = "Mars/Olympus"
	if err := bad.Validate(); err == nil {
		t.Error("bad timezone accepted")
	}
}

func TestFindEstimateAndDiagnostic(t *testing.T) {
	p := testProfile()
	p.Pricing = []JobEstimate{
		{JobType: "water_heater", EstimatedHours: 2.5, CostMin: 150, CostMax: 300},
	}

	if est, ok := p.FindEstimate("water_heater"); !ok || est.CostMin != 150 {
		t.Errorf("FindEstimate = %+v,%v", est, ok)
	}
	if _, ok := p.FindEstimate("unknown"); ok {
		t.Error("unknown job type found")
	}
	if d := p.DiagnosticEstimate(); d.JobType != "diagnostic" || d.CostMin == 0 {
		t.Errorf("DiagnosticEstimate = %+v", d)
	}

	p.Pricing = append(p.Pricing, JobEstimate{JobType: "diagnostic", EstimatedHours: 1, CostMin: 60, CostMax: 120})
	if d := p.DiagnosticEstimate(); d.CostMin != 60 {
		t.Errorf("profile diagnostic row not preferred: %+v", d)
	}
}
