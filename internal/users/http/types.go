package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/users/domain"
	"github.com/enspm-hub/hub-backend/internal/users/service"
)

type registerRequest struct {
	Email        string     `json:"email" binding:"required,email"`
	Password     string     `json:"password" binding:"required,min=8"`
	NomComplet   string     `json:"nom_complet" binding:"required"`
	Matricule    *string    `json:"matricule"`
	StatutGlobal string     `json:"statut_global" binding:"required"`
	TitreID      *uuid.UUID `json:"titre_id"`
	AnneeSortie  *uuid.UUID `json:"annee_sortie_id"`
	DomaineID    *uuid.UUID `json:"domaine_id"`
	Telephone    *string    `json:"telephone"`
	Ville        *string    `json:"ville"`
	Pays         *string    `json:"pays"`
}

func (r *registerRequest) toInput() service.RegisterInput {
	return service.RegisterInput{
		Email:        r.Email,
		Password:     r.Password,
		NomComplet:   r.NomComplet,
		Matricule:    r.Matricule,
		StatutGlobal: domain.StatutGlobal(r.StatutGlobal),
		TitreID:      r.TitreID,
		AnneeSortie:  r.AnneeSortie,
		DomaineID:    r.DomaineID,
		Telephone:    r.Telephone,
		Ville:        r.Ville,
		Pays:         r.Pays,
	}
}

type updateProfileRequest struct {
	NomComplet  *string    `json:"nom_complet"`
	Matricule   *string    `json:"matricule"`
	TitreID     *uuid.UUID `json:"titre_id"`
	Travailleur *bool      `json:"travailleur"`
	AnneeSortie *uuid.UUID `json:"annee_sortie_id"`
	Adresse     *string    `json:"adresse"`
	Telephone   *string    `json:"telephone"`
	Ville       *string    `json:"ville"`
	Pays        *string    `json:"pays"`
	DomaineID   *uuid.UUID `json:"domaine_id"`
	Bio         *string    `json:"bio"`
}

func (r *updateProfileRequest) toInput() service.UpdateProfileInput {
	return service.UpdateProfileInput{
		NomComplet:  r.NomComplet,
		Matricule:   r.Matricule,
		TitreID:     r.TitreID,
		Travailleur: r.Travailleur,
		AnneeSortie: r.AnneeSortie,
		Adresse:     r.Adresse,
		Telephone:   r.Telephone,
		Ville:       r.Ville,
		Pays:        r.Pays,
		DomaineID:   r.DomaineID,
		Bio:         r.Bio,
	}
}

type experienceRequest struct {
	TitrePoste     string     `json:"titre_poste" binding:"required"`
	NomEntreprise  string     `json:"nom_entreprise" binding:"required"`
	Lieu           *string    `json:"lieu"`
	DateDebut      time.Time  `json:"date_debut" binding:"required" time_format:"2006-01-02"`
	DateFin        *time.Time `json:"date_fin" time_format:"2006-01-02"`
	EstPosteActuel bool       `json:"est_poste_actuel"`
	Description    *string    `json:"description"`
	OrganisationID *uuid.UUID `json:"organisation_id"`
}

func (r *experienceRequest) toInput() service.ExperienceInput {
	return service.ExperienceInput{
		TitrePoste:     r.TitrePoste,
		NomEntreprise:  r.NomEntreprise,
		Lieu:           r.Lieu,
		DateDebut:      r.DateDebut,
		DateFin:        r.DateFin,
		EstPosteActuel: r.EstPosteActuel,
		Description:    r.Description,
		OrganisationID: r.OrganisationID,
	}
}

type socialLinkRequest struct {
	ReseauID uuid.UUID `json:"reseau_id" binding:"required"`
	URL      string    `json:"url" binding:"required,url"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type setActiveRequest struct {
	EstActif *bool `json:"est_actif" binding:"required"`
}

type setRoleRequest struct {
	RoleSysteme string `json:"role_systeme" binding:"required"`
}

// memberView is the directory entry shape: account basics plus profile,
// never the password hash or soft-delete bookkeeping.
type memberView struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	RoleSysteme string         `json:"role_systeme"`
	EstActif    bool           `json:"est_actif"`
	Profil      *domain.Profil `json:"profil"`
}

func toMemberView(a domain.Actor) memberView {
	return memberView{
		ID:          a.User.ID,
		Email:       a.User.Email,
		RoleSysteme: string(a.User.RoleSysteme),
		EstActif:    a.User.EstActif,
		Profil:      a.Profil,
	}
}
