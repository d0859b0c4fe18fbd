// Package domain declares the organisation aggregate: the organisation
// itself, page memberships and follower subscriptions.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/entity"
)

// ErrNotFound is returned by repositories when no active row matches.
var ErrNotFound = errors.New("not found")

type TypeOrganisation string

const (
	TypeEntreprise  TypeOrganisation = "entreprise"
	TypeStartup     TypeOrganisation = "startup"
	TypeONG         TypeOrganisation = "ong"
	TypeInstitution TypeOrganisation = "institution_publique"
	TypeAutre       TypeOrganisation = "autre"
)

func (t TypeOrganisation) Valid() bool {
	switch t {
	case TypeEntreprise, TypeStartup, TypeONG, TypeInstitution, TypeAutre:
		return true
	}
	return false
}

type StatutOrganisation string

const (
	StatutEnAttente StatutOrganisation = "en_attente"
	StatutActive    StatutOrganisation = "active"
	StatutInactive  StatutOrganisation = "inactive"
)

func (s StatutOrganisation) Valid() bool {
	return s == StatutEnAttente || s == StatutActive || s == StatutInactive
}

type Organisation struct {
	entity.Base
	Nom          string             `json:"nom"`
	Slug         string             `json:"slug"`
	Type         TypeOrganisation   `json:"type"`
	SecteurID    *uuid.UUID         `json:"secteur_id,omitempty"`
	Adresse      *string            `json:"adresse,omitempty"`
	Ville        *string            `json:"ville,omitempty"`
	Pays         *string            `json:"pays,omitempty"`
	Email        *string            `json:"email,omitempty"`
	Telephone    *string            `json:"telephone,omitempty"`
	Logo         *string            `json:"logo,omitempty"`
	Description  *string            `json:"description,omitempty"`
	DateCreation *time.Time         `json:"date_creation,omitempty"`
	Statut       StatutOrganisation `json:"statut"`
}

// Active reports whether the organisation is approved and visible.
func (o *Organisation) Active() bool {
	return o.Statut == StatutActive && !o.Deleted
}

type RoleMembre string

const (
	RoleEmploye   RoleMembre = "employe"
	RolePageAdmin RoleMembre = "administrateur_page"
)

func (r RoleMembre) Valid() bool {
	return r == RoleEmploye || r == RolePageAdmin
}

// Membre ties a profile to an organisation page. Only one active membership
// per (profil, organisation); deactivated rows stay as history.
type Membre struct {
	entity.Base
	ProfilID       uuid.UUID  `json:"profil_id"`
	OrganisationID uuid.UUID  `json:"organisation_id"`
	Role           RoleMembre `json:"role"`
	PosteID        *uuid.UUID `json:"poste_id,omitempty"`
	EstActif       bool       `json:"est_actif"`
	DateJoindre    time.Time  `json:"date_joindre"`
}

// Abonnement is a follower subscription, unique per (profil, organisation).
type Abonnement struct {
	entity.Base
	ProfilID       uuid.UUID `json:"profil_id"`
	OrganisationID uuid.UUID `json:"organisation_id"`
	EstActif       bool      `json:"est_actif"`
}

// ListFilters narrows the organisation directory.
type ListFilters struct {
	Search    string
	Type      TypeOrganisation
	SecteurID *uuid.UUID
	Ville     string
	Statut    StatutOrganisation
}
