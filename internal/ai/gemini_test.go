package ai

import "testing"

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Sure! Here you go: {\"a\":1} hope that helps", `{"a":1}`, true},
		{"markdown fence", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"escaped quote in string", `{"a":"say \"}\" loud"}`, `{"a":"say \"}\" loud"}`, true},
		{"unterminated", `{"a":1`, "", false},
		{"no object", "plain text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("firstJSONObject() = %q,%v want %q,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractionNormalize(t *testing.T) {
	ex := &Extraction{
		JobConfidence:     1.7,
		UrgencyConfidence: -0.4,
		UrgencyHint:       "catastrophic",
		Confirmation:      "sure",
	}
	ex.normalize()

	if ex.JobConfidence != 1 || ex.UrgencyConfidence != 0 {
		t.Errorf("confidences not clamped: %v %v", ex.JobConfidence, ex.UrgencyConfidence)
	}
	if ex.UrgencyHint != UrgencyNormal {
		t.Errorf("UrgencyHint = %q, want normal", ex.UrgencyHint)
	}
	if ex.Confirmation != ConfirmUnknown {
		t.Errorf("Confirmation = %q, want unknown", ex.Confirmation)
	}
}
