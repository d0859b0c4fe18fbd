package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const entityExperience = "ExperienceProfessionnelle"

// ExperienceInput carries the fields of one work history entry.
type ExperienceInput struct {
	TitrePoste     string
	NomEntreprise  string
	Lieu           *string
	DateDebut      time.Time
	DateFin        *time.Time
	EstPosteActuel bool
	Description    *string
	OrganisationID *uuid.UUID
}

func (in *ExperienceInput) validate() error {
	var fields []apperr.Field
	if strings.TrimSpace(in.TitrePoste) == "" {
		fields = append(fields, apperr.Field{Name: "titre_poste", Message: "L'intitulé du poste est obligatoire."})
	}
	if strings.TrimSpace(in.NomEntreprise) == "" {
		fields = append(fields, apperr.Field{Name: "nom_entreprise", Message: "Le nom de l'entreprise est obligatoire."})
	}
	if in.DateDebut.IsZero() {
		fields = append(fields, apperr.Field{Name: "date_debut", Message: "La date de début est obligatoire."})
	}
	if in.EstPosteActuel && in.DateFin != nil {
		fields = append(fields, apperr.Field{Name: "date_fin", Message: "Un poste actuel ne peut pas avoir de date de fin."})
	}
	if in.DateFin != nil && !in.DateFin.After(in.DateDebut) {
		fields = append(fields, apperr.Field{Name: "date_fin", Message: "La date de fin doit être postérieure à la date de début."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

// AddExperience appends an entry to the actor's own work history.
func (s *Service) AddExperience(ctx context.Context, actor *domain.Actor, in ExperienceInput) (*domain.Experience, error) {
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *domain.Experience
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		created, err = s.experiences.Create(ctx, tx, &domain.Experience{
			ProfilID:       actor.Profil.ID,
			TitrePoste:     strings.TrimSpace(in.TitrePoste),
			NomEntreprise:  strings.TrimSpace(in.NomEntreprise),
			Lieu:           in.Lieu,
			DateDebut:      in.DateDebut,
			DateFin:        in.DateFin,
			EstPosteActuel: in.EstPosteActuel,
			Description:    in.Description,
			OrganisationID: in.OrganisationID,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityExperience,
			EntityID:   created.ID,
			NewValues:  experienceSnapshot(created),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) ListExperiences(ctx context.Context, profilID uuid.UUID) ([]domain.Experience, error) {
	return s.experiences.ListByProfil(ctx, s.pool, profilID)
}

// UpdateExperience edits an entry. The row is locked for the transaction so
// two concurrent edits of the same entry cannot interleave.
func (s *Service) UpdateExperience(ctx context.Context, actor *domain.Actor, id uuid.UUID, in ExperienceInput) (*domain.Experience, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.Experience
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, err := s.experiences.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Expérience introuvable.")
			}
			return err
		}
		if err := s.requireExperienceOwner(ctx, actor, e); err != nil {
			return err
		}

		old := experienceSnapshot(e)
		e.TitrePoste = strings.TrimSpace(in.TitrePoste)
		e.NomEntreprise = strings.TrimSpace(in.NomEntreprise)
		e.Lieu = in.Lieu
		e.DateDebut = in.DateDebut
		e.DateFin = in.DateFin
		e.EstPosteActuel = in.EstPosteActuel
		e.Description = in.Description
		e.OrganisationID = in.OrganisationID

		updated, err = s.experiences.Update(ctx, tx, e)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityExperience,
			EntityID:   e.ID,
			OldValues:  old,
			NewValues:  experienceSnapshot(updated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveExperience soft-deletes an entry from the actor's history.
func (s *Service) RemoveExperience(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, err := s.experiences.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Expérience introuvable.")
			}
			return err
		}
		if err := s.requireExperienceOwner(ctx, actor, e); err != nil {
			return err
		}
		if err := s.experiences.SoftDelete(ctx, tx, e.ID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityExperience,
			EntityID:   e.ID,
			OldValues:  experienceSnapshot(e),
		})
		return err
	})
}

func (s *Service) requireExperienceOwner(ctx context.Context, actor *domain.Actor, e *domain.Experience) error {
	if actor.IsSiteAdmin() {
		return nil
	}
	if actor.Profil != nil && actor.Profil.ID == e.ProfilID {
		return nil
	}
	return s.denied(ctx, actor, entityExperience, e.ID)
}

func experienceSnapshot(e *domain.Experience) map[string]any {
	m := map[string]any{
		"titre_poste":      e.TitrePoste,
		"nom_entreprise":   e.NomEntreprise,
		"date_debut":       e.DateDebut.Format("2006-01-02"),
		"est_poste_actuel": e.EstPosteActuel,
	}
	if e.DateFin != nil {
		m["date_fin"] = e.DateFin.Format("2006-01-02")
	}
	return m
}
