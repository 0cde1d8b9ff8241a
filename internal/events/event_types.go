package events

import (
	"time"

	"github.com/spec-kit/sales-crm/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFlowCompleted  EventType = "flow_completed"
	EventActivityLogged EventType = "activity_logged"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ActorID    string            `json:"actor_id"`
	EntityType domain.EntityType `json:"entity_type,omitempty"`
	EntityID   string            `json:"entity_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Payload    interface{}       `json:"payload"`
}

// FlowCompletedPayload describes a successful flow run tied to a CRM record.
type FlowCompletedPayload struct {
	Flow     string  `json:"flow"`
	OwnerID  string  `json:"owner_id"`
	Score    float64 `json:"score"`
	Priority string  `json:"priority,omitempty"`
	Summary  string  `json:"summary"`
}

// ActivityLoggedPayload payload.
type ActivityLoggedPayload struct {
	ActivityID string              `json:"activity_id"`
	Type       domain.ActivityType `json:"type"`
	HasAddress bool                `json:"has_address"`
}
