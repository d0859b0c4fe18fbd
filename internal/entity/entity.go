package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the fields shared by every table: UUID primary key,
// auto-managed timestamps and the soft-delete pair.
// Invariant: Deleted == false <=> DeletedAt == nil.
type Base struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Deleted   bool       `json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// MarkDeleted flips the soft-delete pair. Calling it on an already deleted
// entity re-stamps DeletedAt.
func (b *Base) MarkDeleted(now time.Time) {
	b.Deleted = true
	b.DeletedAt = &now
}

// MarkRestored reverses a soft delete. Valid from any state.
func (b *Base) MarkRestored() {
	b.Deleted = false
	b.DeletedAt = nil
}

// CascadePolicy is the declared behaviour for child records when a parent
// is soft-deleted. Each parent/child relationship picks one explicitly
// instead of relying on database ON DELETE semantics.
type CascadePolicy int

const (
	// CascadeSoftDelete soft-deletes or deactivates children with the parent.
	CascadeSoftDelete CascadePolicy = iota
	// CascadeOrphan leaves children visible with the parent link nulled.
	CascadeOrphan
	// CascadeBlock refuses the delete while children exist.
	CascadeBlock
)

func (p CascadePolicy) String() string {
	switch p {
	case CascadeSoftDelete:
		return "soft-cascade"
	case CascadeOrphan:
		return "orphan"
	case CascadeBlock:
		return "block"
	default:
		return "unknown"
	}
}
