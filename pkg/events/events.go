package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the services. Consumers (notification fan-out,
// analytics) live outside this repository.
const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeCodeIssued       = "auth.code_issued"
	TypeInquirySubmitted = "inquiry.submitted"
)

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Source     string `json:"source"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

func newEvent(source, eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     source,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}
}
