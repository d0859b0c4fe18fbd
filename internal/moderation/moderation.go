package moderation

import (
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/apperr"
)

// Status is the lifecycle state of a moderated listing. Every listing
// family shares en_attente/active/rejetee; the administrative terminal
// states vary slightly per type (pourvue vs annulee).
type Status string

const (
	StatusEnAttente Status = "en_attente"
	StatusActive    Status = "active"
	StatusExpiree   Status = "expiree"
	StatusPourvue   Status = "pourvue"
	StatusAnnulee   Status = "annulee"
	StatusRejetee   Status = "rejetee"
)

// Review carries the validation bookkeeping stamped by an admin decision.
// Invariants: EstValide => Status == active;
// Status == en_attente => !EstValide && ValidateurID == nil.
type Review struct {
	Statut                Status     `json:"statut"`
	EstValide             bool       `json:"est_valide"`
	ValidateurID          *uuid.UUID `json:"validateur_id,omitempty"`
	DateValidation        *time.Time `json:"date_validation,omitempty"`
	CommentaireValidation *string    `json:"commentaire_validation,omitempty"`
}

// Initial returns the review state for a freshly created listing. Trusted
// actors (site admins and active partner members) publish directly; everyone
// else enters the pending queue.
func Initial(trusted bool) Review {
	if trusted {
		return Review{Statut: StatusActive, EstValide: true}
	}
	return Review{Statut: StatusEnAttente, EstValide: false}
}

// Validate applies the one-shot admin decision. Re-validating an already
// validated listing is a bad request and must not disturb the bookkeeping
// stamped by the first call.
func (r *Review) Validate(validateur uuid.UUID, approved bool, commentaire *string, now time.Time) error {
	if r.EstValide || r.ValidateurID != nil {
		return apperr.BadRequest("Cette offre a déjà été validée.")
	}

	r.EstValide = approved
	r.ValidateurID = &validateur
	r.DateValidation = &now
	r.CommentaireValidation = commentaire
	if approved {
		r.Statut = StatusActive
	} else {
		r.Statut = StatusRejetee
	}
	return nil
}

// allowed enumerates the administrative transitions reachable through the
// status-update path. Rejection and re-queueing are excluded: both carry
// validator bookkeeping that only Validate performs.
var allowed = map[Status][]Status{
	StatusActive:  {StatusExpiree, StatusPourvue, StatusAnnulee},
	StatusExpiree: {StatusActive},
}

// UpdateStatus moves the listing between administrative states.
// closedState is the type-specific terminal state (pourvue for internships
// and jobs, annulee for trainings).
func (r *Review) UpdateStatus(next Status, closedState Status) error {
	if next != StatusActive && next != StatusExpiree && next != closedState {
		return apperr.BadRequestf("Statut invalide. Valides : active, expiree, %s", closedState)
	}
	for _, s := range allowed[r.Statut] {
		if s == next {
			r.Statut = next
			return nil
		}
	}
	return apperr.BadRequestf("Transition de statut impossible : %s -> %s", r.Statut, next)
}
