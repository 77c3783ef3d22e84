// README: Emergency classifier combining NLU hints, trade keywords, and hours rules.
package urgency

import (
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/modules/profile"
)

// Result is the final urgency verdict plus the hour-rule flags the
// orchestrator branches on.
type Result struct {
	Urgency    ai.Urgency `json:"urgency"`
	Confidence float64    `json:"urgency_confidence"`
	// IsEmergency requires both the emergency level and the profile
	// accepting emergencies.
	IsEmergency bool `json:"is_emergency"`
	// EscalateOwner is set for emergencies while the business is
	// out-of-office: the owner is notified instead of a crew dispatched.
	EscalateOwner bool `json:"-"`
	// AfterHoursEligible: outside business hours but within phone hours,
	// with the after-hours toggle on. Quota is enforced by scheduling.
	AfterHoursEligible bool `json:"-"`
	// OutsidePhoneHours ends the conversation regardless of urgency.
	OutsidePhoneHours bool `json:"-"`
}

// Classifier merges the probabilistic hint with deterministic trade rules.
type Classifier struct {
	rules *ai.RuleExtractor
}

func NewClassifier() *Classifier {
	return &Classifier{rules: ai.NewRuleExtractor()}
}

// Classify produces the final urgency for a turn. The raw message is
// re-scanned with the trade keyword tables so a confident keyword hit can
// raise a hesitant LLM hint, never lower it.
func (c *Classifier) Classify(message string, ex *ai.Extraction, localTime time.Time, p *profile.BusinessProfile) Result {
	level := ex.UrgencyHint
	confidence := ex.UrgencyConfidence

	if keyword := c.rules.Extract(message, string(p.Trade)); keyword.UrgencyHint == ai.UrgencyEmergency {
		if level != ai.UrgencyEmergency {
			level = ai.UrgencyEmergency
			confidence = keyword.UrgencyConfidence
		} else if keyword.UrgencyConfidence > confidence {
			confidence = keyword.UrgencyConfidence
		}
	}

	res := Result{
		Urgency:     level,
		Confidence:  confidence,
		IsEmergency: level == ai.UrgencyEmergency && p.Toggles.AcceptEmergencies,
	}

	res.OutsidePhoneHours = !p.InPhoneHours(localTime)
	if res.IsEmergency && p.Toggles.OutOfOffice {
		res.EscalateOwner = true
	}
	if !p.InBusinessHours(localTime) && p.InPhoneHours(localTime) {
		res.AfterHoursEligible = res.IsEmergency && p.Toggles.AcceptAfterHoursEmergency
	}
	return res
}
