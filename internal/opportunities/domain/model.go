// Package domain declares the three listing families: internships, jobs and
// trainings. They share the moderation review state and a common descriptive
// core; each family adds its own fields and terminal status.
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

type TypeStage string

const (
	StageOuvrier       TypeStage = "ouvrier"
	StageAcademique    TypeStage = "academique"
	StageProfessionnel TypeStage = "professionnel"
)

func (t TypeStage) Valid() bool {
	return t == StageOuvrier || t == StageAcademique || t == StageProfessionnel
}

type TypeEmploi string

const (
	EmploiCDI          TypeEmploi = "cdi"
	EmploiCDD          TypeEmploi = "cdd"
	EmploiFreelance    TypeEmploi = "freelance"
	EmploiTempsPartiel TypeEmploi = "temps_partiel"
)

func (t TypeEmploi) Valid() bool {
	return t == EmploiCDI || t == EmploiCDD || t == EmploiFreelance || t == EmploiTempsPartiel
}

type TypeFormation string

const (
	FormationEnLigne    TypeFormation = "en_ligne"
	FormationPresentiel TypeFormation = "presentiel"
	FormationHybride    TypeFormation = "hybride"
)

func (t TypeFormation) Valid() bool {
	return t == FormationEnLigne || t == FormationPresentiel || t == FormationHybride
}

// Listing is the descriptive core shared by the three families.
type Listing struct {
	entity.Base
	moderation.Review
	Titre            string     `json:"titre"`
	Slug             string     `json:"slug"`
	NomStructure     string     `json:"nom_structure"`
	Description      string     `json:"description"`
	Adresse          *string    `json:"adresse,omitempty"`
	Ville            *string    `json:"ville,omitempty"`
	Pays             *string    `json:"pays,omitempty"`
	EmailContact     *string    `json:"email_contact,omitempty"`
	TelephoneContact *string    `json:"telephone_contact,omitempty"`
	LienOffre        *string    `json:"lien_offre,omitempty"`
	LienCandidature  *string    `json:"lien_candidature,omitempty"`
	DatePublication  time.Time  `json:"date_publication"`
	CreateurID       uuid.UUID  `json:"createur_id"`
	OrganisationID   *uuid.UUID `json:"organisation_id,omitempty"`
}

// Visible reports whether the listing belongs in the public feed.
func (l *Listing) Visible() bool {
	return l.Statut == moderation.StatusActive && l.EstValide && !l.Deleted
}

// Stage is an internship offer.
type Stage struct {
	Listing
	TypeStage TypeStage  `json:"type_stage"`
	DateDebut *time.Time `json:"date_debut,omitempty"`
	DateFin   *time.Time `json:"date_fin,omitempty"`
}

// Emploi is a job offer. A salary bound requires a currency and min ≤ max.
type Emploi struct {
	Listing
	TypeEmploi     TypeEmploi `json:"type_emploi"`
	SalaireMin     *float64   `json:"salaire_min,omitempty"`
	SalaireMax     *float64   `json:"salaire_max,omitempty"`
	Devise         *string    `json:"devise,omitempty"`
	DateExpiration *time.Time `json:"date_expiration,omitempty"`
}

// Formation is a training offer.
type Formation struct {
	Listing
	TypeFormation   TypeFormation `json:"type_formation"`
	EstPayante      bool          `json:"est_payante"`
	Prix            *float64      `json:"prix,omitempty"`
	Devise          *string       `json:"devise,omitempty"`
	DureeHeures     *int          `json:"duree_heures,omitempty"`
	DateDebut       *time.Time    `json:"date_debut,omitempty"`
	DateFin         *time.Time    `json:"date_fin,omitempty"`
	LienFormation   *string       `json:"lien_formation,omitempty"`
	LienInscription *string       `json:"lien_inscription,omitempty"`
}

// ListFilters narrows listing queries. Statut is honoured for admins only;
// public callers always get active validated listings.
type ListFilters struct {
	Search string
	Type   string
	Ville  string
	Pays   string
	Statut moderation.Status
}

// Stats are the per-family counters shown on the moderation dashboard.
type Stats struct {
	Total     int            `json:"total"`
	ParStatut map[string]int `json:"par_statut"`
	ParType   map[string]int `json:"par_type"`
}
