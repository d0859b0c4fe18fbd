// Package domain declares the community group aggregate: the group itself
// and its memberships.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/entity"
	"github.com/enspm-hub/hub-backend/internal/moderation"
)

// ErrNotFound is returned by repositories when no active row matches.
var ErrNotFound = errors.New("not found")

type TypeGroupe string

const (
	TypePublic        TypeGroupe = "public"
	TypePrive         TypeGroupe = "prive"
	TypeAdministratif TypeGroupe = "administratif"
)

func (t TypeGroupe) Valid() bool {
	return t == TypePublic || t == TypePrive || t == TypeAdministratif
}

// Groupe is a community group. Like listings it enters the pending queue on
// creation and goes public once a site admin validates it.
type Groupe struct {
	entity.Base
	moderation.Review
	CreateurProfilID *uuid.UUID `json:"createur_profil_id,omitempty"`
	Nom              string     `json:"nom"`
	Slug             string     `json:"slug"`
	Photo            *string    `json:"photo,omitempty"`
	Description      string     `json:"description"`
	Type             TypeGroupe `json:"type"`
	MaxMembres       *int       `json:"max_membres,omitempty"`
}

// Visible reports whether the group shows up publicly.
func (g *Groupe) Visible() bool {
	return g.Statut == moderation.StatusActive && g.EstValide && !g.Deleted
}

type RoleMembre string

const (
	RoleMembreSimple RoleMembre = "membre"
	RoleModerateur   RoleMembre = "moderateur"
	RoleAdmin        RoleMembre = "admin"
)

func (r RoleMembre) Valid() bool {
	return r == RoleMembreSimple || r == RoleModerateur || r == RoleAdmin
}

// Membre ties a profile to a group. Only one active membership per
// (profil, groupe); leaving stamps date_sortie and keeps the row as history.
type Membre struct {
	entity.Base
	ProfilID     uuid.UUID  `json:"profil_id"`
	GroupeID     uuid.UUID  `json:"groupe_id"`
	Role         RoleMembre `json:"role"`
	DateAdhesion time.Time  `json:"date_adhesion"`
	DateSortie   *time.Time `json:"date_sortie,omitempty"`
	EstActif     bool       `json:"est_actif"`
}

// ListFilters narrows the group directory.
type ListFilters struct {
	Search string
	Type   TypeGroupe
	Statut moderation.Status
}
