// Package domain defines the reference collections: slow-moving seed data
// the rest of the platform points at (promotions, domains, currencies,
// social networks and friends).
package domain

import (
	"errors"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/entity"
)

var ErrNotFound = errors.New("reference introuvable")

// Common carries the fields every reference row shares. Display order is
// ascending, ties broken by name in each listing query.
type Common struct {
	entity.Base
	EstActif       bool `json:"est_actif"`
	OrdreAffichage int  `json:"ordre_affichage"`
}

// RefID is the accessor the generic service helpers rely on.
func (c *Common) RefID() uuid.UUID { return c.ID }

// AnneePromotion is one graduating class.
type AnneePromotion struct {
	Common
	Annee   int    `json:"annee"`
	Libelle string `json:"libelle"`
}

// Domaine is a field of study.
type Domaine struct {
	Common
	Nom         string  `json:"nom"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
}

// Filiere is a track inside a domain. Codes are unique per domain, not
// globally.
type Filiere struct {
	Common
	Nom       string    `json:"nom"`
	Code      string    `json:"code"`
	DomaineID uuid.UUID `json:"domaine_id"`
}

// SecteurActivite is an industry sector, optionally nested one level under
// a parent sector.
type SecteurActivite struct {
	Common
	Nom      string     `json:"nom"`
	Code     string     `json:"code"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// Poste is a job position label used by organisation memberships.
type Poste struct {
	Common
	Intitule    string  `json:"intitule"`
	Description *string `json:"description,omitempty"`
}

// Devise is a currency. Code is the ISO 4217 code.
type Devise struct {
	Common
	Code    string  `json:"code"`
	Nom     string  `json:"nom"`
	Symbole *string `json:"symbole,omitempty"`
}

// TitreHonorifique is an honorific (M., Mme, Dr, Pr…).
type TitreHonorifique struct {
	Common
	Libelle     string  `json:"libelle"`
	Abreviation *string `json:"abreviation,omitempty"`
}

// ReseauSocial is a social network profiles can link to.
type ReseauSocial struct {
	Common
	Nom     string  `json:"nom"`
	URLBase *string `json:"url_base,omitempty"`
	Icone   *string `json:"icone,omitempty"`
}
