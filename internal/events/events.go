package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCause classifies what made a session's readiness change.
type EventCause string

// Causes of session events. Every cause can potentially open the delivery
// barrier, so handlers re-evaluate it on each one.
const (
	CauseJobTerminal      EventCause = "job_terminal"
	CauseContactSubmitted EventCause = "contact_submitted"
)

// SessionEvent represents a readiness change on one capture session: a
// generation job reached a terminal state, or the customer submitted their
// contact details.
type SessionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// SessionID identifies the capture session the event belongs to
	SessionID uuid.UUID `json:"session_id"`

	// Cause classifies the readiness change
	Cause EventCause `json:"cause"`

	// Detail carries cause-specific context, e.g. which job finished
	Detail string `json:"detail,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionEvent creates a SessionEvent for the given session and cause.
func NewSessionEvent(sessionID uuid.UUID, cause EventCause, detail string) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		Cause:     cause,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *SessionEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *SessionEvent) error
}
