// README: Typed extraction result shared by the LLM and rule-based paths.
package ai

// Urgency is the customer-stated urgency hint.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// Confirmation captures a yes/no answer to a pending offer.
type Confirmation string

const (
	ConfirmYes     Confirmation = "yes"
	ConfirmNo      Confirmation = "no"
	ConfirmUnknown Confirmation = "unknown"
)

// Extraction is the structured reading of a customer message. Both the LLM
// and the rule-based fallback emit exactly this shape; downstream code never
// learns which path produced it.
type Extraction struct {
	// JobType names the requested work in the trade's vocabulary
	// (e.g. "water_heater"). Empty when the message gave no signal.
	JobType string `json:"job_type,omitempty"`

	// JobConfidence is the extractor's confidence in JobType, in [0,1].
	JobConfidence float64 `json:"job_confidence"`

	UrgencyHint       Urgency `json:"urgency_hint"`
	UrgencyConfidence float64 `json:"urgency_confidence"`

	// AddressText is the raw address candidate found in the message.
	AddressText string `json:"address_text,omitempty"`

	Confirmation Confirmation `json:"confirmation"`
}

// normalize clamps confidences and defaults the enums so malformed model
// output cannot leak invalid values downstream.
func (e *Extraction) normalize() {
	e.JobConfidence = clamp01(e.JobConfidence)
	e.UrgencyConfidence = clamp01(e.UrgencyConfidence)
	switch e.UrgencyHint {
	case UrgencyNormal, UrgencyUrgent, UrgencyEmergency:
	default:
		e.UrgencyHint = UrgencyNormal
	}
	switch e.Confirmation {
	case ConfirmYes, ConfirmNo, ConfirmUnknown:
	default:
		e.Confirmation = ConfirmUnknown
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
