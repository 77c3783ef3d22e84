// README: Dispatch request DTO and boundary validation.
package service

import (
	"time"

	"dispatch/internal/modules/profile"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/phone"
	"dispatch/internal/types"
)

// DispatchRequest is the full per-turn input. It is self-contained: the
// service keeps nothing between turns.
type DispatchRequest struct {
	CallerPhone     string                   `json:"caller_phone"`
	CalledNumber    string                   `json:"called_number"`
	ConversationSID string                   `json:"conversation_sid"`
	CurrentMessage  string                   `json:"current_message"`
	History         []types.Turn             `json:"conversation_history"`
	Profile         profile.BusinessProfile  `json:"business_profile"`
	Calendar        []schedule.CalendarEvent `json:"calendar"`
	CurrentTime     time.Time                `json:"current_time"`
}

// FieldError is the 422 payload body for a single failed constraint.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Validate enforces the wire constraints. A non-nil result maps to 422.
func (r *DispatchRequest) Validate() *FieldError {
	if !phone.IsE164(r.CallerPhone) {
		return &FieldError{Code: "invalid_phone", Message: "caller_phone must be E.164", Field: "caller_phone"}
	}
	if _, err := phone.NormalizeE164(r.CallerPhone); err != nil {
		return &FieldError{Code: "invalid_phone", Message: "caller_phone is not a valid number", Field: "caller_phone"}
	}
	if !phone.IsE164(r.CalledNumber) {
		return &FieldError{Code: "invalid_phone", Message: "called_number must be E.164", Field: "called_number"}
	}
	if r.ConversationSID == "" {
		return &FieldError{Code: "missing_field", Message: "conversation_sid is required", Field: "conversation_sid"}
	}
	if n := len(r.CurrentMessage); n < 1 || n > 1000 {
		return &FieldError{Code: "invalid_length", Message: "current_message must be 1-1000 characters", Field: "current_message"}
	}
	if r.CurrentTime.IsZero() {
		return &FieldError{Code: "missing_field", Message: "current_time is required", Field: "current_time"}
	}
	if err := r.Profile.Validate(); err != nil {
		return &FieldError{Code: "invalid_profile", Message: err.Error(), Field: "business_profile"}
	}
	return nil
}
