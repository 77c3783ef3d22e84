// README: Per-turn orchestrator: stage machine, question limit, reply selection.
package conversation

import (
	"strings"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/profile"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/modules/urgency"
	"dispatch/internal/types"
)

// maxQuestions bounds how many distinct questions a conversation may ask.
const maxQuestions = 2

// confirmationCue is embedded verbatim in every offer so a later stateless
// turn can recognize that the conversation was left in confirming.
const confirmationCue = "Reply YES"

// Input is everything the orchestrator needs to decide one turn.
type Input struct {
	Profile    *profile.BusinessProfile
	History    []types.Turn
	Message    string
	NowLocal   time.Time
	Extraction *ai.Extraction
	Resolved   *geo.ResolvedAddress
	// ResolveReason carries the resolver's unresolved reason, if any.
	ResolveReason string
	Urgency       urgency.Result
	Schedule      *schedule.Result
	NoSlot        *schedule.NoFeasibleSlot
}

// Orchestrator drives the stage machine and composes replies.
type Orchestrator struct{}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// Decide performs exactly one stage transition and returns the decision.
func (o *Orchestrator) Decide(in Input) *Decision {
	prior := StageFromHistory(in.History)
	d := &Decision{
		ExtractedInfo: in.Extraction,
		Validation:    buildValidation(in),
	}

	switch {
	case in.Urgency.OutsidePhoneHours:
		o.closeOutsidePhoneHours(in, d)

	case in.Urgency.EscalateOwner:
		d.Stage = StageEscalated
		d.NextAction = ActionEscalateToOwner
		d.MessageToCustomer = msgEscalated(in.Profile)

	case prior == StageConfirming && in.Extraction.Confirmation == ai.ConfirmYes:
		o.book(in, d)

	case prior == StageConfirming && in.Extraction.Confirmation == ai.ConfirmNo:
		o.handleRejection(in, d)

	case missingJob(in) || missingAddress(in):
		o.askForMissing(in, d)

	case in.Schedule != nil && in.Schedule.Slot != nil:
		o.offer(in, d)

	default:
		o.closeInfeasible(in, d)
	}

	if !CanTransition(prior, d.Stage) && prior != d.Stage {
		// A turn that cannot legally move is handed to a human.
		d.Stage = StageEscalated
		d.NextAction = ActionEscalateToOwner
		d.MessageToCustomer = msgEscalated(in.Profile)
	}
	return d
}

func (o *Orchestrator) book(in Input, d *Decision) {
	d.Stage = StageComplete
	d.NextAction = ActionBookAppointment
	d.ProposedSlot = slotOf(in)
	d.MessageToCustomer = msgBooked(in, d.ProposedSlot)
}

func (o *Orchestrator) offer(in Input, d *Decision) {
	d.Stage = StageConfirming
	d.NextAction = ActionRequestConfirmation
	d.ProposedSlot = in.Schedule.Slot
	if in.Schedule.Slot.Kind == schedule.SlotAfterHoursEmergency && in.Schedule.Alternative != nil {
		d.MessageToCustomer = msgTonightOrTomorrow(in, in.Schedule.Slot, in.Schedule.Alternative)
	} else {
		d.MessageToCustomer = msgOffer(in, in.Schedule.Slot)
	}
	d.FollowUpNeeded = true
	d.FollowUpDelayMinutes = 15
}

func (o *Orchestrator) askForMissing(in Input, d *Decision) {
	if questionsAsked(in.History) >= maxQuestions {
		d.Stage = StageEscalated
		d.NextAction = ActionEscalateToOwner
		d.MessageToCustomer = msgEscalated(in.Profile)
		return
	}
	d.Stage = StageCollectingInfo
	d.NextAction = ActionContinue
	switch {
	case missingJob(in) && missingAddress(in):
		d.MessageToCustomer = msgAskJobAndAddress(in.Profile)
	case missingJob(in):
		d.MessageToCustomer = msgAskJob(in.Profile)
	default:
		d.MessageToCustomer = msgAskAddress(in.ResolveReason)
	}
	d.FollowUpNeeded = true
	d.FollowUpDelayMinutes = 30
}

func (o *Orchestrator) handleRejection(in Input, d *Decision) {
	norm := strings.ToLower(strings.TrimSpace(in.Message))
	if norm == "different time" && questionsAsked(in.History) < maxQuestions {
		d.Stage = StageCollectingInfo
		d.NextAction = ActionContinue
		d.MessageToCustomer = "No problem. What day and time would work better for you?"
		d.FollowUpNeeded = true
		d.FollowUpDelayMinutes = 30
		return
	}
	d.Stage = StageComplete
	d.NextAction = ActionEndConversation
	d.MessageToCustomer = "Understood, we won't book anything. Feel free to text us any time you need help."
}

func (o *Orchestrator) closeInfeasible(in Input, d *Decision) {
	reasons := map[string]bool{}
	if in.NoSlot != nil {
		for _, r := range in.NoSlot.Reasons {
			reasons[r] = true
		}
	}

	d.Stage = StageRejected
	d.NextAction = ActionEndConversation

	switch {
	case reasons[schedule.ReasonOutOfServiceArea]:
		d.MessageToCustomer = msgOutOfServiceArea(in)
	case reasons[schedule.ReasonOutsidePhoneHours]:
		o.closeOutsidePhoneHours(in, d)
		return
	case reasons[schedule.ReasonOutOfOffice]:
		d.MessageToCustomer = msgOutOfOffice(in.Profile)
	case reasons[schedule.ReasonTradeUnsupported] || reasons[schedule.ReasonJobUnsupported]:
		d.MessageToCustomer = "Sorry, that isn't work we take on. A local provider search should turn up someone who can help."
	case reasons[schedule.ReasonAfterHoursQuota]:
		d.MessageToCustomer = "Our crews are fully committed tonight. Text us after " + openTomorrowText(in) + " and we'll get you first in line."
	case reasons[schedule.ReasonTravelLimitsExceeded]:
		d.MessageToCustomer = msgOutOfServiceArea(in)
	default:
		d.MessageToCustomer = "We couldn't find an open appointment in the next week. Please call us at " + contactLine(in.Profile) + " and we'll sort something out."
	}
}

func (o *Orchestrator) closeOutsidePhoneHours(in Input, d *Decision) {
	d.Stage = StageComplete
	d.NextAction = ActionEndConversation
	d.MessageToCustomer = msgOutsidePhoneHours(in.Profile, in.NowLocal)
}

func slotOf(in Input) *schedule.Slot {
	if in.Schedule != nil {
		return in.Schedule.Slot
	}
	return nil
}

func missingJob(in Input) bool {
	return in.Extraction.JobType == ""
}

func missingAddress(in Input) bool {
	return in.Resolved == nil || !in.Resolved.Geocoded
}

// StageFromHistory derives the prior conversation stage from the transcript.
// Offers carry the confirmation cue, so its presence in the latest bot
// message means the customer was asked for a yes/no.
func StageFromHistory(history []types.Turn) Stage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender != types.SenderBot {
			continue
		}
		if strings.Contains(history[i].Text, confirmationCue) {
			return StageConfirming
		}
		return StageCollectingInfo
	}
	return StageInitial
}

// questionsAsked counts distinct bot questions already in the transcript.
func questionsAsked(history []types.Turn) int {
	n := 0
	for _, t := range history {
		if t.Sender == types.SenderBot && strings.Contains(t.Text, "?") && !strings.Contains(t.Text, confirmationCue) {
			n++
		}
	}
	return n
}

func buildValidation(in Input) Validation {
	v := Validation{
		ServiceAreaValid:    in.Resolved != nil && in.Resolved.InServiceArea,
		WithinBusinessHours: in.Profile.InBusinessHours(in.NowLocal),
		PhoneHoursOpen:      !in.Urgency.OutsidePhoneHours,
		CapacityAvailable:   true,
		TravelFeasible:      true,
	}
	var reasons []string
	if in.NoSlot != nil {
		reasons = in.NoSlot.Reasons
	} else if in.Schedule != nil {
		reasons = in.Schedule.Limitations
	}
	for _, r := range reasons {
		switch r {
		case schedule.ReasonCapacityExceeded, schedule.ReasonAfterHoursQuota:
			v.CapacityAvailable = false
		case schedule.ReasonTravelLimitsExceeded:
			v.TravelFeasible = false
		case schedule.ReasonOutOfServiceArea:
			v.ServiceAreaValid = false
		}
		v.Errors = append(v.Errors, r)
	}
	return v
}
