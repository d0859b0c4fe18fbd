package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what an actor did to an entity.
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionDelete       Action = "DELETE"
	ActionView         Action = "VIEW"
	ActionAccessDenied Action = "ACCESS_DENIED"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionView, ActionAccessDenied:
		return true
	}
	return false
}

// Entry is one append-only audit row. EntityID is deliberately not a foreign
// key: the referenced entity may be hard-gone by the time the log is read.
// ActorID is nulled if the acting user is ever removed.
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ListFilters narrows the admin audit listing.
type ListFilters struct {
	ActorID    *uuid.UUID
	EntityType string
	Action     Action
}
