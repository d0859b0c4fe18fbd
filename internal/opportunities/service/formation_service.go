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
	"github.com/enspm-hub/hub-backend/internal/moderation"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

// FormationInput carries the training offer fields.
type FormationInput struct {
	Titre            string
	NomStructure     string
	Description      string
	TypeFormation    domain.TypeFormation
	Adresse          *string
	Ville            *string
	Pays             *string
	EmailContact     *string
	TelephoneContact *string
	LienOffre        *string
	LienCandidature  *string
	EstPayante       bool
	Prix             *float64
	Devise           *string
	DureeHeures      *int
	DateDebut        *time.Time
	DateFin          *time.Time
	LienFormation    *string
	LienInscription  *string
	OrganisationID   *uuid.UUID
}

func (in *FormationInput) validate() error {
	fields := validateListingCore(in.Titre, in.NomStructure, in.Description)
	if !in.TypeFormation.Valid() {
		fields = append(fields, apperr.Field{Name: "type_formation", Message: "Type de formation invalide."})
	}
	if in.EstPayante {
		if in.Prix == nil {
			fields = append(fields, apperr.Field{Name: "prix", Message: "Le prix est obligatoire pour une formation payante."})
		}
		if in.Devise == nil || strings.TrimSpace(*in.Devise) == "" {
			fields = append(fields, apperr.Field{Name: "devise", Message: "La devise est obligatoire pour une formation payante."})
		}
	}
	if in.Prix != nil && *in.Prix < 0 {
		fields = append(fields, apperr.Field{Name: "prix", Message: "Le prix ne peut pas être négatif."})
	}
	if in.DureeHeures != nil && *in.DureeHeures <= 0 {
		fields = append(fields, apperr.Field{Name: "duree_heures", Message: "La durée doit être strictement positive."})
	}
	if in.DateDebut != nil && in.DateFin != nil && !in.DateFin.After(*in.DateDebut) {
		fields = append(fields, apperr.Field{Name: "date_fin", Message: "La date de fin doit être postérieure à la date de début."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

// CreateFormation publishes or queues a training depending on who posts.
func (s *Service) CreateFormation(ctx context.Context, actor *usersdomain.Actor, in FormationInput) (*domain.Formation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	orgID, review, err := s.resolveCreation(ctx, actor, in.OrganisationID)
	if err != nil {
		return nil, err
	}

	var created *domain.Formation
	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		created, err = s.formations.Create(ctx, tx, &domain.Formation{
			Listing: domain.Listing{
				Review:           review,
				Titre:            strings.TrimSpace(in.Titre),
				NomStructure:     strings.TrimSpace(in.NomStructure),
				Description:      in.Description,
				Adresse:          in.Adresse,
				Ville:            in.Ville,
				Pays:             in.Pays,
				EmailContact:     in.EmailContact,
				TelephoneContact: in.TelephoneContact,
				LienOffre:        in.LienOffre,
				LienCandidature:  in.LienCandidature,
				CreateurID:       actor.User.ID,
				OrganisationID:   orgID,
			},
			TypeFormation:   in.TypeFormation,
			EstPayante:      in.EstPayante,
			Prix:            in.Prix,
			Devise:          in.Devise,
			DureeHeures:     in.DureeHeures,
			DateDebut:       in.DateDebut,
			DateFin:         in.DateFin,
			LienFormation:   in.LienFormation,
			LienInscription: in.LienInscription,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityFormation,
			EntityID:   created.ID,
			NewValues:  listingSnapshot(&created.Listing),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListFormations returns the public training feed, or a status-filtered
// moderation view for site admins.
func (s *Service) ListFormations(ctx context.Context, actor *usersdomain.Actor, f domain.ListFilters, limit, offset int) ([]domain.Formation, int, error) {
	if _, err := s.formations.ExpireOverdue(ctx, s.pool, s.now()); err != nil {
		return nil, 0, err
	}
	publicOnly := actor == nil || !actor.IsSiteAdmin() || f.Statut == ""
	return s.formations.List(ctx, s.pool, f, publicOnly, limit, offset)
}

// ListPendingFormations is the moderation queue. Site admins only.
func (s *Service) ListPendingFormations(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Formation, int, error) {
	if !actor.IsSiteAdmin() {
		return nil, 0, s.denied(ctx, actor, entityFormation, uuid.Nil)
	}
	f := domain.ListFilters{Statut: moderation.StatusEnAttente}
	return s.formations.List(ctx, s.pool, f, false, limit, offset)
}

// GetFormationBySlug returns one training, applying public visibility.
func (s *Service) GetFormationBySlug(ctx context.Context, actor *usersdomain.Actor, slug string) (*domain.Formation, error) {
	f, err := s.formations.GetBySlug(ctx, s.pool, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Formation introuvable.")
		}
		return nil, err
	}
	if !s.visibleToActor(ctx, actor, &f.Listing) {
		return nil, apperr.NotFound("Formation introuvable.")
	}
	return f, nil
}

// UpdateFormation edits a training. Creator, page admin or site admin.
func (s *Service) UpdateFormation(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, in FormationInput) (*domain.Formation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.Formation
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		f, err := s.formations.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Formation introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityFormation, &f.Listing); err != nil {
			return err
		}

		old := listingSnapshot(&f.Listing)
		f.Titre = strings.TrimSpace(in.Titre)
		f.NomStructure = strings.TrimSpace(in.NomStructure)
		f.Description = in.Description
		f.Adresse = in.Adresse
		f.Ville = in.Ville
		f.Pays = in.Pays
		f.EmailContact = in.EmailContact
		f.TelephoneContact = in.TelephoneContact
		f.LienOffre = in.LienOffre
		f.LienCandidature = in.LienCandidature
		f.TypeFormation = in.TypeFormation
		f.EstPayante = in.EstPayante
		f.Prix = in.Prix
		f.Devise = in.Devise
		f.DureeHeures = in.DureeHeures
		f.DateDebut = in.DateDebut
		f.DateFin = in.DateFin
		f.LienFormation = in.LienFormation
		f.LienInscription = in.LienInscription

		updated, err = s.formations.Update(ctx, tx, f)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityFormation,
			EntityID:   f.ID,
			OldValues:  old,
			NewValues:  listingSnapshot(&updated.Listing),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ValidateFormation applies the one-shot admin decision on a pending training.
func (s *Service) ValidateFormation(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, approved bool, commentaire *string) (*domain.Formation, error) {
	if err := s.requireSiteAdmin(ctx, actor, entityFormation, id); err != nil {
		return nil, err
	}

	var validated *domain.Formation
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		f, err := s.formations.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Formation introuvable.")
			}
			return err
		}

		old := reviewSnapshot(f.Review)
		if err := f.Review.Validate(actor.User.ID, approved, commentaire, s.now()); err != nil {
			return err
		}
		if err := s.formations.UpdateReview(ctx, tx, f.ID, f.Review); err != nil {
			return err
		}
		validated = f
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityFormation,
			EntityID:   f.ID,
			OldValues:  old,
			NewValues:  reviewSnapshot(f.Review),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

// UpdateFormationStatus moves a training between administrative states.
// Trainings close as annulee, there is no notion of a filled seat.
func (s *Service) UpdateFormationStatus(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, next moderation.Status) (*domain.Formation, error) {
	var updated *domain.Formation
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		f, err := s.formations.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Formation introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityFormation, &f.Listing); err != nil {
			return err
		}

		old := reviewSnapshot(f.Review)
		if err := f.Review.UpdateStatus(next, moderation.StatusAnnulee); err != nil {
			return err
		}
		if err := s.formations.UpdateReview(ctx, tx, f.ID, f.Review); err != nil {
			return err
		}
		updated = f
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityFormation,
			EntityID:   f.ID,
			OldValues:  old,
			NewValues:  reviewSnapshot(f.Review),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteFormation soft-deletes a training.
func (s *Service) DeleteFormation(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		f, err := s.formations.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Formation introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityFormation, &f.Listing); err != nil {
			return err
		}
		if err := s.formations.SoftDelete(ctx, tx, f.ID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityFormation,
			EntityID:   f.ID,
			OldValues:  listingSnapshot(&f.Listing),
		})
		return err
	})
}

// RestoreFormation reverses a soft delete. Site admins only.
func (s *Service) RestoreFormation(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if err := s.requireSiteAdmin(ctx, actor, entityFormation, id); err != nil {
		return err
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.formations.Restore(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Formation introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityFormation,
			EntityID:   id,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
}

// MyFormations lists the actor's own trainings, whatever their state.
func (s *Service) MyFormations(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Formation, int, error) {
	return s.formations.ListByCreateur(ctx, s.pool, actor.User.ID, limit, offset)
}

// FormationStats returns the moderation dashboard counters. Site admins only.
func (s *Service) FormationStats(ctx context.Context, actor *usersdomain.Actor) (domain.Stats, error) {
	if !actor.IsSiteAdmin() {
		return domain.Stats{}, s.denied(ctx, actor, entityFormation, uuid.Nil)
	}
	return s.formations.Stats(ctx, s.pool)
}
