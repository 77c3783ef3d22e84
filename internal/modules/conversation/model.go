// README: Decision record, conversation stages, and the stage transition map.
package conversation

import (
	"dispatch/internal/ai"
	"dispatch/internal/modules/schedule"
)

type Stage string

const (
	StageInitial        Stage = "initial"
	StageCollectingInfo Stage = "collecting_info"
	StageConfirming     Stage = "confirming"
	StageConfirmed      Stage = "confirmed"
	StageRejected       Stage = "rejected"
	StageEscalated      Stage = "escalated"
	StageComplete       Stage = "complete"
	StageTimeout        Stage = "timeout"
)

type NextAction string

const (
	ActionContinue            NextAction = "continue_conversation"
	ActionRequestConfirmation NextAction = "request_confirmation"
	ActionBookAppointment     NextAction = "book_appointment"
	ActionEscalateToOwner     NextAction = "escalate_to_owner"
	ActionEndConversation     NextAction = "end_conversation"
)

// AllowedTransitions represents the per-turn stage flow as code. Terminal
// stages have no outgoing edges; timeout is set by the caller's scheduler,
// never by a live turn.
var AllowedTransitions = map[Stage][]Stage{
	StageInitial:        {StageCollectingInfo, StageConfirming, StageRejected, StageComplete, StageEscalated, StageTimeout},
	StageCollectingInfo: {StageCollectingInfo, StageConfirming, StageRejected, StageComplete, StageEscalated, StageTimeout},
	StageConfirming:     {StageConfirming, StageCollectingInfo, StageConfirmed, StageRejected, StageComplete, StageEscalated, StageTimeout},
	StageConfirmed:      {StageComplete},
}

var allowedTransitionSet = buildTransitionSet(AllowedTransitions)

func buildTransitionSet(transitions map[Stage][]Stage) map[Stage]map[Stage]struct{} {
	set := make(map[Stage]map[Stage]struct{}, len(transitions))
	for from, tos := range transitions {
		next := make(map[Stage]struct{}, len(tos))
		for _, to := range tos {
			next[to] = struct{}{}
		}
		set[from] = next
	}
	return set
}

// CanTransition checks if a stage transition is valid.
func CanTransition(from, to Stage) bool {
	next, ok := allowedTransitionSet[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// Validation spells out every gate the turn passed or failed.
type Validation struct {
	ServiceAreaValid    bool     `json:"service_area_valid"`
	WithinBusinessHours bool     `json:"within_business_hours"`
	PhoneHoursOpen      bool     `json:"phone_hours_open"`
	CapacityAvailable   bool     `json:"capacity_available"`
	TravelFeasible      bool     `json:"travel_feasible"`
	Errors              []string `json:"validation_errors"`
}

// Decision is the machine-readable outcome of one turn.
type Decision struct {
	ExtractedInfo        *ai.Extraction `json:"extracted_info"`
	Validation           Validation     `json:"validation"`
	ProposedSlot         *schedule.Slot `json:"proposed_slot,omitempty"`
	NextAction           NextAction     `json:"next_action"`
	MessageToCustomer    string         `json:"message_to_customer"`
	Stage                Stage          `json:"conversation_stage"`
	FollowUpNeeded       bool           `json:"follow_up_needed"`
	FollowUpDelayMinutes int            `json:"follow_up_delay_minutes,omitempty"`
}
