package http

import (
	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/groups/service"
)

type createRequest struct {
	Nom         string `json:"nom" binding:"required"`
	Description string `json:"description" binding:"required"`
	Type        string `json:"type" binding:"required"`
	MaxMembres  *int   `json:"max_membres"`
}

func (r *createRequest) toInput() service.CreateInput {
	return service.CreateInput{
		Nom:         r.Nom,
		Description: r.Description,
		Type:        domain.TypeGroupe(r.Type),
		MaxMembres:  r.MaxMembres,
	}
}

type updateRequest struct {
	Nom         *string `json:"nom"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	MaxMembres  *int    `json:"max_membres"`
}

func (r *updateRequest) toInput() service.UpdateInput {
	in := service.UpdateInput{
		Nom:         r.Nom,
		Description: r.Description,
		MaxMembres:  r.MaxMembres,
	}
	if r.Type != nil {
		t := domain.TypeGroupe(*r.Type)
		in.Type = &t
	}
	return in
}

type validateRequest struct {
	Approuve    *bool   `json:"approuve" binding:"required"`
	Commentaire *string `json:"commentaire"`
}

type addMembreRequest struct {
	ProfilID uuid.UUID `json:"profil_id" binding:"required"`
	Role     string    `json:"role" binding:"required"`
}

type updateMembreRequest struct {
	Role string `json:"role" binding:"required"`
}
