package urgency

import (
	"testing"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/modules/profile"
)

func testProfile() *profile.BusinessProfile {
	hours := func(start, end string) map[string]profile.DayHours {
		out := map[string]profile.DayHours{}
		for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
			out[d] = profile.DayHours{Start: start, End: end}
		}
		return out
	}
	return &profile.BusinessProfile{
		Trade:         profile.TradePlumbing,
		BusinessHours: hours("08:00", "18:00"),
		PhoneHours:    hours("07:00", "22:00"),
		Toggles: profile.Toggles{
			AcceptEmergencies:         true,
			AcceptAfterHoursEmergency: true,
		},
	}
}

// Wednesday 2025-08-06.
func at(hour, min int) time.Time {
	return time.Date(2025, 8, 6, hour, min, 0, 0, time.UTC)
}

func hint(u ai.Urgency, conf float64) *ai.Extraction {
	return &ai.Extraction{UrgencyHint: u, UrgencyConfidence: conf}
}

func TestClassifyKeywordRaisesHint(t *testing.T) {
	c := NewClassifier()
	p := testProfile()

	res := c.Classify("Basement is flooding!", hint(ai.UrgencyNormal, 0.3), at(10, 0), p)
	if res.Urgency != ai.UrgencyEmergency || !res.IsEmergency {
		t.Errorf("keyword hit should raise urgency: %+v", res)
	}

	res = c.Classify("small drip under the sink", hint(ai.UrgencyEmergency, 0.9), at(10, 0), p)
	if res.Urgency != ai.UrgencyEmergency {
		t.Errorf("keyword miss must not lower the hint: %+v", res)
	}
}

func TestClassifyRespectsAcceptToggle(t *testing.T) {
	c := NewClassifier()
	p := testProfile()
	p.Toggles.AcceptEmergencies = false

	res := c.Classify("Basement is flooding!", hint(ai.UrgencyEmergency, 0.9), at(10, 0), p)
	if res.IsEmergency {
		t.Errorf("IsEmergency despite accept_emergencies=false: %+v", res)
	}
}

func TestClassifyOutOfOfficeEscalates(t *testing.T) {
	c := NewClassifier()
	p := testProfile()
	p.Toggles.OutOfOffice = true

	res := c.Classify("Basement is flooding!", hint(ai.UrgencyEmergency, 0.9), at(10, 0), p)
	if !res.EscalateOwner {
		t.Errorf("emergency while out-of-office must escalate: %+v", res)
	}

	res = c.Classify("faucet drip", hint(ai.UrgencyNormal, 0.5), at(10, 0), p)
	if res.EscalateOwner {
		t.Errorf("non-emergency should not escalate: %+v", res)
	}
}

func TestClassifyAfterHoursEligibility(t *testing.T) {
	c := NewClassifier()
	p := testProfile()

	// 20:00: outside business hours, inside phone hours.
	res := c.Classify("Basement is flooding!", hint(ai.UrgencyEmergency, 0.9), at(20, 0), p)
	if !res.AfterHoursEligible || res.OutsidePhoneHours {
		t.Errorf("after-hours emergency should be eligible: %+v", res)
	}

	p.Toggles.AcceptAfterHoursEmergency = false
	res = c.Classify("Basement is flooding!", hint(ai.UrgencyEmergency, 0.9), at(20, 0), p)
	if res.AfterHoursEligible {
		t.Errorf("eligibility despite toggle off: %+v", res)
	}

	// During business hours the flag stays clear.
	p.Toggles.AcceptAfterHoursEmergency = true
	res = c.Classify("Basement is flooding!", hint(ai.UrgencyEmergency, 0.9), at(10, 0), p)
	if res.AfterHoursEligible {
		t.Errorf("eligibility set during business hours: %+v", res)
	}
}

func TestClassifyOutsidePhoneHours(t *testing.T) {
	c := NewClassifier()
	p := testProfile()

	res := c.Classify("Emergency! Toilet overflowing!", hint(ai.UrgencyEmergency, 0.9), at(23, 30), p)
	if !res.OutsidePhoneHours {
		t.Errorf("23:30 should be outside phone hours: %+v", res)
	}
}
