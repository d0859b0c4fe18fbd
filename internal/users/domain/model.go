package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/entity"
)

// ErrNotFound is returned by repositories when no active row matches.
var ErrNotFound = errors.New("not found")

type RoleSysteme string

const (
	RoleUser       RoleSysteme = "user"
	RoleAdminSite  RoleSysteme = "admin_site"
	RoleSuperAdmin RoleSysteme = "super_admin"
)

func (r RoleSysteme) Valid() bool {
	return r == RoleUser || r == RoleAdminSite || r == RoleSuperAdmin
}

type StatutGlobal string

const (
	StatutEtudiant           StatutGlobal = "etudiant"
	StatutAlumni             StatutGlobal = "alumni"
	StatutEnseignant         StatutGlobal = "enseignant"
	StatutPersonnelAdmin     StatutGlobal = "personnel_admin"
	StatutPersonnelTechnique StatutGlobal = "personnel_technique"
	StatutPartenaire         StatutGlobal = "partenaire"
)

func (s StatutGlobal) Valid() bool {
	switch s {
	case StatutEtudiant, StatutAlumni, StatutEnseignant,
		StatutPersonnelAdmin, StatutPersonnelTechnique, StatutPartenaire:
		return true
	}
	return false
}

// User is the authentication record. Profile data lives on Profil.
type User struct {
	entity.Base
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	RoleSysteme  RoleSysteme `json:"role_systeme"`
	EstActif     bool        `json:"est_actif"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
}

// IsSiteAdmin reports whether the user holds a site-wide admin role.
func (u *User) IsSiteAdmin() bool {
	return u.RoleSysteme == RoleAdminSite || u.RoleSysteme == RoleSuperAdmin
}

// Active combines the account flag with the soft-delete state.
func (u *User) Active() bool {
	return u.EstActif && !u.Deleted
}

type Profil struct {
	entity.Base
	UserID        uuid.UUID    `json:"user_id"`
	NomComplet    string       `json:"nom_complet"`
	Matricule     *string      `json:"matricule,omitempty"`
	TitreID       *uuid.UUID   `json:"titre_id,omitempty"`
	StatutGlobal  StatutGlobal `json:"statut_global"`
	Travailleur   bool         `json:"travailleur"`
	AnneeSortieID *uuid.UUID   `json:"annee_sortie_id,omitempty"`
	Adresse       *string      `json:"adresse,omitempty"`
	Telephone     *string      `json:"telephone,omitempty"`
	Ville         *string      `json:"ville,omitempty"`
	Pays          *string      `json:"pays,omitempty"`
	PhotoProfil   *string      `json:"photo_profil,omitempty"`
	DomaineID     *uuid.UUID   `json:"domaine_id,omitempty"`
	Bio           *string      `json:"bio,omitempty"`
	Slug          string       `json:"slug"`
}

// IsPartenaire reports whether this profile may act on behalf of an
// organisation (auto-approved listings).
func (p *Profil) IsPartenaire() bool {
	return p.StatutGlobal == StatutPartenaire
}

// Actor is the resolved acting user for a request: account plus profile.
// Profil is nil for accounts created before profile provisioning.
type Actor struct {
	User   User
	Profil *Profil
}

func (a *Actor) IsSiteAdmin() bool { return a.User.IsSiteAdmin() }

func (a *Actor) IsPartenaire() bool {
	return a.Profil != nil && a.Profil.IsPartenaire()
}

// Experience is one step of a member's professional history.
type Experience struct {
	entity.Base
	ProfilID       uuid.UUID  `json:"profil_id"`
	TitrePoste     string     `json:"titre_poste"`
	NomEntreprise  string     `json:"nom_entreprise"`
	Lieu           *string    `json:"lieu,omitempty"`
	DateDebut      time.Time  `json:"date_debut"`
	DateFin        *time.Time `json:"date_fin,omitempty"`
	EstPosteActuel bool       `json:"est_poste_actuel"`
	Description    *string    `json:"description,omitempty"`
	OrganisationID *uuid.UUID `json:"organisation_id,omitempty"`
}

// LienReseauSocial binds a profile to a social network reference.
type LienReseauSocial struct {
	entity.Base
	ProfilID uuid.UUID `json:"profil_id"`
	ReseauID uuid.UUID `json:"reseau_id"`
	URL      string    `json:"url"`
	EstActif bool      `json:"est_actif"`
}

// ListFilters narrows the member directory listing.
type ListFilters struct {
	Search       string
	StatutGlobal StatutGlobal
	DomaineID    *uuid.UUID
	AnneeSortie  *uuid.UUID
}
