package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	"github.com/enspm-hub/hub-backend/internal/opportunities/service"
)

type stageRequest struct {
	Titre            string     `json:"titre" binding:"required"`
	NomStructure     string     `json:"nom_structure" binding:"required"`
	Description      string     `json:"description" binding:"required"`
	TypeStage        string     `json:"type_stage" binding:"required"`
	Adresse          *string    `json:"adresse"`
	Ville            *string    `json:"ville"`
	Pays             *string    `json:"pays"`
	EmailContact     *string    `json:"email_contact" binding:"omitempty,email"`
	TelephoneContact *string    `json:"telephone_contact"`
	LienOffre        *string    `json:"lien_offre" binding:"omitempty,url"`
	LienCandidature  *string    `json:"lien_candidature" binding:"omitempty,url"`
	DateDebut        *time.Time `json:"date_debut" time_format:"2006-01-02"`
	DateFin          *time.Time `json:"date_fin" time_format:"2006-01-02"`
	OrganisationID   *uuid.UUID `json:"organisation_id"`
}

func (r *stageRequest) toInput() service.StageInput {
	return service.StageInput{
		Titre:            r.Titre,
		NomStructure:     r.NomStructure,
		Description:      r.Description,
		TypeStage:        domain.TypeStage(r.TypeStage),
		Adresse:          r.Adresse,
		Ville:            r.Ville,
		Pays:             r.Pays,
		EmailContact:     r.EmailContact,
		TelephoneContact: r.TelephoneContact,
		LienOffre:        r.LienOffre,
		LienCandidature:  r.LienCandidature,
		DateDebut:        r.DateDebut,
		DateFin:          r.DateFin,
		OrganisationID:   r.OrganisationID,
	}
}

type emploiRequest struct {
	Titre            string     `json:"titre" binding:"required"`
	NomStructure     string     `json:"nom_structure" binding:"required"`
	Description      string     `json:"description" binding:"required"`
	TypeEmploi       string     `json:"type_emploi" binding:"required"`
	Adresse          *string    `json:"adresse"`
	Ville            *string    `json:"ville"`
	Pays             *string    `json:"pays"`
	EmailContact     *string    `json:"email_contact" binding:"omitempty,email"`
	TelephoneContact *string    `json:"telephone_contact"`
	LienOffre        *string    `json:"lien_offre" binding:"omitempty,url"`
	LienCandidature  *string    `json:"lien_candidature" binding:"omitempty,url"`
	SalaireMin       *float64   `json:"salaire_min"`
	SalaireMax       *float64   `json:"salaire_max"`
	Devise           *string    `json:"devise"`
	DateExpiration   *time.Time `json:"date_expiration" time_format:"2006-01-02"`
	OrganisationID   *uuid.UUID `json:"organisation_id"`
}

func (r *emploiRequest) toInput() service.EmploiInput {
	return service.EmploiInput{
		Titre:            r.Titre,
		NomStructure:     r.NomStructure,
		Description:      r.Description,
		TypeEmploi:       domain.TypeEmploi(r.TypeEmploi),
		Adresse:          r.Adresse,
		Ville:            r.Ville,
		Pays:             r.Pays,
		EmailContact:     r.EmailContact,
		TelephoneContact: r.TelephoneContact,
		LienOffre:        r.LienOffre,
		LienCandidature:  r.LienCandidature,
		SalaireMin:       r.SalaireMin,
		SalaireMax:       r.SalaireMax,
		Devise:           r.Devise,
		DateExpiration:   r.DateExpiration,
		OrganisationID:   r.OrganisationID,
	}
}

type formationRequest struct {
	Titre            string     `json:"titre" binding:"required"`
	NomStructure     string     `json:"nom_structure" binding:"required"`
	Description      string     `json:"description" binding:"required"`
	TypeFormation    string     `json:"type_formation" binding:"required"`
	Adresse          *string    `json:"adresse"`
	Ville            *string    `json:"ville"`
	Pays             *string    `json:"pays"`
	EmailContact     *string    `json:"email_contact" binding:"omitempty,email"`
	TelephoneContact *string    `json:"telephone_contact"`
	LienOffre        *string    `json:"lien_offre" binding:"omitempty,url"`
	LienCandidature  *string    `json:"lien_candidature" binding:"omitempty,url"`
	EstPayante       bool       `json:"est_payante"`
	Prix             *float64   `json:"prix"`
	Devise           *string    `json:"devise"`
	DureeHeures      *int       `json:"duree_heures"`
	DateDebut        *time.Time `json:"date_debut" time_format:"2006-01-02"`
	DateFin          *time.Time `json:"date_fin" time_format:"2006-01-02"`
	LienFormation    *string    `json:"lien_formation" binding:"omitempty,url"`
	LienInscription  *string    `json:"lien_inscription" binding:"omitempty,url"`
	OrganisationID   *uuid.UUID `json:"organisation_id"`
}

func (r *formationRequest) toInput() service.FormationInput {
	return service.FormationInput{
		Titre:            r.Titre,
		NomStructure:     r.NomStructure,
		Description:      r.Description,
		TypeFormation:    domain.TypeFormation(r.TypeFormation),
		Adresse:          r.Adresse,
		Ville:            r.Ville,
		Pays:             r.Pays,
		EmailContact:     r.EmailContact,
		TelephoneContact: r.TelephoneContact,
		LienOffre:        r.LienOffre,
		LienCandidature:  r.LienCandidature,
		EstPayante:       r.EstPayante,
		Prix:             r.Prix,
		Devise:           r.Devise,
		DureeHeures:      r.DureeHeures,
		DateDebut:        r.DateDebut,
		DateFin:          r.DateFin,
		LienFormation:    r.LienFormation,
		LienInscription:  r.LienInscription,
		OrganisationID:   r.OrganisationID,
	}
}

type validateRequest struct {
	Approuve    *bool   `json:"approuve" binding:"required"`
	Commentaire *string `json:"commentaire"`
}

type statutRequest struct {
	Statut string `json:"statut" binding:"required"`
}
