package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/organisations/service"
)

type createRequest struct {
	Nom          string     `json:"nom" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	SecteurID    *uuid.UUID `json:"secteur_id"`
	Adresse      *string    `json:"adresse"`
	Ville        *string    `json:"ville"`
	Pays         *string    `json:"pays"`
	Email        *string    `json:"email"`
	Telephone    *string    `json:"telephone"`
	Description  *string    `json:"description"`
	DateCreation *time.Time `json:"date_creation"`
}

func (r *createRequest) toInput() service.CreateInput {
	return service.CreateInput{
		Nom:          r.Nom,
		Type:         domain.TypeOrganisation(r.Type),
		SecteurID:    r.SecteurID,
		Adresse:      r.Adresse,
		Ville:        r.Ville,
		Pays:         r.Pays,
		Email:        r.Email,
		Telephone:    r.Telephone,
		Description:  r.Description,
		DateCreation: r.DateCreation,
	}
}

type updateRequest struct {
	Nom          *string    `json:"nom"`
	Type         *string    `json:"type"`
	SecteurID    *uuid.UUID `json:"secteur_id"`
	Adresse      *string    `json:"adresse"`
	Ville        *string    `json:"ville"`
	Pays         *string    `json:"pays"`
	Email        *string    `json:"email"`
	Telephone    *string    `json:"telephone"`
	Description  *string    `json:"description"`
	DateCreation *time.Time `json:"date_creation"`
}

func (r *updateRequest) toInput() service.UpdateInput {
	in := service.UpdateInput{
		SecteurID:    r.SecteurID,
		Adresse:      r.Adresse,
		Ville:        r.Ville,
		Pays:         r.Pays,
		Email:        r.Email,
		Telephone:    r.Telephone,
		Description:  r.Description,
		DateCreation: r.DateCreation,
		Nom:          r.Nom,
	}
	if r.Type != nil {
		t := domain.TypeOrganisation(*r.Type)
		in.Type = &t
	}
	return in
}

type statutRequest struct {
	Statut string `json:"statut" binding:"required"`
}

type addMembreRequest struct {
	ProfilID uuid.UUID  `json:"profil_id" binding:"required"`
	Role     string     `json:"role" binding:"required"`
	PosteID  *uuid.UUID `json:"poste_id"`
}

type updateMembreRequest struct {
	Role    string     `json:"role" binding:"required"`
	PosteID *uuid.UUID `json:"poste_id"`
}
