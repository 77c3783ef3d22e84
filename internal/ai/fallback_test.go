package ai

import "testing"

func TestRuleExtractor_JobKeywords(t *testing.T) {
	tests := []struct {
		name    string
		trade   string
		message string
		want    string
	}{
		{"water heater beats leak", "plumbing", "My water heater is leaking", "water_heater"},
		{"burst pipe", "plumbing", "A pipe burst in the wall", "burst_pipe"},
		{"faucet", "plumbing", "Bathroom faucet dripping", "faucet_repair"},
		{"no keyword", "plumbing", "Something's broken, help!", ""},
		{"sparks", "electrical", "Outlet is sparking", "outlet_repair"},
		{"ac word boundary", "hvac", "Come back later about the AC", "ac_failure"},
		{"ac not inside back", "hvac", "call me back", ""},
		{"lockout", "locksmith", "I'm locked out of my house", "lockout"},
		{"garage stuck", "garage_door", "Door is stuck halfway", "door_stuck"},
	}

	r := NewRuleExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Extract(tt.message, tt.trade)
			if got.JobType != tt.want {
				t.Errorf("JobType = %q, want %q", got.JobType, tt.want)
			}
			if got.JobType != "" && got.JobConfidence > fallbackMaxConfidence {
				t.Errorf("JobConfidence = %v, exceeds fallback cap", got.JobConfidence)
			}
		})
	}
}

func TestRuleExtractor_Urgency(t *testing.T) {
	tests := []struct {
		name    string
		trade   string
		message string
		want    Urgency
	}{
		{"flooding is emergency", "plumbing", "Basement is flooding!", UrgencyEmergency},
		{"negated within window", "plumbing", "It is not flooding, just a drip", UrgencyNormal},
		{"negation too far back", "plumbing", "no rush at all but now water is flooding the hall", UrgencyEmergency},
		{"intensifier is urgent", "plumbing", "The leak is bad, water everywhere", UrgencyUrgent},
		{"plain request", "plumbing", "Can you fix a faucet next week", UrgencyNormal},
		{"sparks emergency", "electrical", "Panel is sparking", UrgencyEmergency},
	}

	r := NewRuleExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Extract(tt.message, tt.trade)
			if got.UrgencyHint != tt.want {
				t.Errorf("UrgencyHint = %q, want %q", got.UrgencyHint, tt.want)
			}
		})
	}
}

func TestRuleExtractor_Confirmation(t *testing.T) {
	tests := []struct {
		message string
		want    Confirmation
	}{
		{"yes", ConfirmYes},
		{"YES", ConfirmYes},
		{"  ok  ", ConfirmYes},
		{"book it", ConfirmYes},
		{"y", ConfirmYes},
		{"no", ConfirmNo},
		{"cancel", ConfirmNo},
		{"different time", ConfirmNo},
		{"yes please come at 5", ConfirmUnknown},
		{"maybe", ConfirmUnknown},
	}

	r := NewRuleExtractor()
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := r.Extract(tt.message, "plumbing").Confirmation; got != tt.want {
				t.Errorf("Confirmation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuleExtractor_Address(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"street and zip", "Water heater burst! 789 Sunset Blvd, 90210", "789 Sunset Blvd, 90210"},
		{"street only", "Leak at 12 Oak Lane please hurry", "12 Oak Lane please hurry"},
		{"no address", "Everything is broken", ""},
	}

	r := NewRuleExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Extract(tt.message, "plumbing").AddressText; got != tt.want {
				t.Errorf("AddressText = %q, want %q", got, tt.want)
			}
		})
	}
}
