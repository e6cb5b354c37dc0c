package audit

import (
	"context"
	"time"

	id "rtidesk/pkg/domain"
)

// Action names a lifecycle event on an application.
type Action string

const (
	ActionCreated         Action = "rti_created"
	ActionUpdated         Action = "rti_updated"
	ActionSubmitted       Action = "rti_submitted"
	ActionAppealed        Action = "rti_appealed"
	ActionDeleted         Action = "rti_deleted"
	ActionOutcomeRecorded Action = "rti_outcome_recorded"
)

// Event is emitted from the lifecycle service after a successful change.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time        `json:"timestamp"`
	UserID        id.UserID        `json:"user_id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	Action        Action           `json:"action"`
	Status        string           `json:"status,omitempty"`
	Detail        string           `json:"detail,omitempty"`
	RequestID     string           `json:"request_id,omitempty"`
	// ActorID is set when someone other than the owner acted, such as an
	// administrator recording an outcome.
	ActorID string `json:"actor_id,omitempty"`
}

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also be read back.
type Store interface {
	Sink
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
