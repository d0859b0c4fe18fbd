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

// StageInput carries the internship offer fields.
type StageInput struct {
	Titre            string
	NomStructure     string
	Description      string
	TypeStage        domain.TypeStage
	Adresse          *string
	Ville            *string
	Pays             *string
	EmailContact     *string
	TelephoneContact *string
	LienOffre        *string
	LienCandidature  *string
	DateDebut        *time.Time
	DateFin          *time.Time
	OrganisationID   *uuid.UUID
}

func (in *StageInput) validate() error {
	fields := validateListingCore(in.Titre, in.NomStructure, in.Description)
	if !in.TypeStage.Valid() {
		fields = append(fields, apperr.Field{Name: "type_stage", Message: "Type de stage invalide."})
	}
	if in.DateDebut != nil && in.DateFin != nil && !in.DateFin.After(*in.DateDebut) {
		fields = append(fields, apperr.Field{Name: "date_fin", Message: "La date de fin doit être postérieure à la date de début."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

func validateListingCore(titre, nomStructure, description string) []apperr.Field {
	var fields []apperr.Field
	if strings.TrimSpace(titre) == "" {
		fields = append(fields, apperr.Field{Name: "titre", Message: "Le titre est obligatoire."})
	}
	if strings.TrimSpace(nomStructure) == "" {
		fields = append(fields, apperr.Field{Name: "nom_structure", Message: "Le nom de la structure est obligatoire."})
	}
	if strings.TrimSpace(description) == "" {
		fields = append(fields, apperr.Field{Name: "description", Message: "La description est obligatoire."})
	}
	return fields
}

// CreateStage publishes or queues an internship offer depending on who posts.
func (s *Service) CreateStage(ctx context.Context, actor *usersdomain.Actor, in StageInput) (*domain.Stage, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	orgID, review, err := s.resolveCreation(ctx, actor, in.OrganisationID)
	if err != nil {
		return nil, err
	}

	var created *domain.Stage
	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		created, err = s.stages.Create(ctx, tx, &domain.Stage{
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
			TypeStage: in.TypeStage,
			DateDebut: in.DateDebut,
			DateFin:   in.DateFin,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityStage,
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

// ListStages returns the public internship feed, or a status-filtered
// moderation view for site admins. Overdue offers expire inline first, so
// the feed never shows a stale active listing.
func (s *Service) ListStages(ctx context.Context, actor *usersdomain.Actor, f domain.ListFilters, limit, offset int) ([]domain.Stage, int, error) {
	if _, err := s.stages.ExpireOverdue(ctx, s.pool, s.now()); err != nil {
		return nil, 0, err
	}
	publicOnly := actor == nil || !actor.IsSiteAdmin() || f.Statut == ""
	return s.stages.List(ctx, s.pool, f, publicOnly, limit, offset)
}

// ListPendingStages is the moderation queue. Site admins only.
func (s *Service) ListPendingStages(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Stage, int, error) {
	if !actor.IsSiteAdmin() {
		return nil, 0, s.denied(ctx, actor, entityStage, uuid.Nil)
	}
	f := domain.ListFilters{Statut: moderation.StatusEnAttente}
	return s.stages.List(ctx, s.pool, f, false, limit, offset)
}

// GetStageBySlug returns one offer, applying public visibility.
func (s *Service) GetStageBySlug(ctx context.Context, actor *usersdomain.Actor, slug string) (*domain.Stage, error) {
	st, err := s.stages.GetBySlug(ctx, s.pool, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Offre de stage introuvable.")
		}
		return nil, err
	}
	if !s.visibleToActor(ctx, actor, &st.Listing) {
		return nil, apperr.NotFound("Offre de stage introuvable.")
	}
	return st, nil
}

// UpdateStage edits an offer. Creator, page admin or site admin.
func (s *Service) UpdateStage(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, in StageInput) (*domain.Stage, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.Stage
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		st, err := s.stages.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre de stage introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityStage, &st.Listing); err != nil {
			return err
		}

		old := listingSnapshot(&st.Listing)
		st.Titre = strings.TrimSpace(in.Titre)
		st.NomStructure = strings.TrimSpace(in.NomStructure)
		st.Description = in.Description
		st.Adresse = in.Adresse
		st.Ville = in.Ville
		st.Pays = in.Pays
		st.EmailContact = in.EmailContact
		st.TelephoneContact = in.TelephoneContact
		st.LienOffre = in.LienOffre
		st.LienCandidature = in.LienCandidature
		st.TypeStage = in.TypeStage
		st.DateDebut = in.DateDebut
		st.DateFin = in.DateFin

		updated, err = s.stages.Update(ctx, tx, st)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityStage,
			EntityID:   st.ID,
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

// ValidateStage applies the one-shot admin decision on a pending offer.
func (s *Service) ValidateStage(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, approved bool, commentaire *string) (*domain.Stage, error) {
	if err := s.requireSiteAdmin(ctx, actor, entityStage, id); err != nil {
		return nil, err
	}

	var validated *domain.Stage
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		st, err := s.stages.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre de stage introuvable.")
			}
			return err
		}

		old := reviewSnapshot(st.Review)
		if err := st.Review.Validate(actor.User.ID, approved, commentaire, s.now()); err != nil {
			return err
		}
		if err := s.stages.UpdateReview(ctx, tx, st.ID, st.Review); err != nil {
			return err
		}
		validated = st
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityStage,
			EntityID:   st.ID,
			OldValues:  old,
			NewValues:  reviewSnapshot(st.Review),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

// UpdateStageStatus moves an offer between administrative states. Internships
// close as pourvue.
func (s *Service) UpdateStageStatus(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, next moderation.Status) (*domain.Stage, error) {
	var updated *domain.Stage
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		st, err := s.stages.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre de stage introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityStage, &st.Listing); err != nil {
			return err
		}

		old := reviewSnapshot(st.Review)
		if err := st.Review.UpdateStatus(next, moderation.StatusPourvue); err != nil {
			return err
		}
		if err := s.stages.UpdateReview(ctx, tx, st.ID, st.Review); err != nil {
			return err
		}
		updated = st
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityStage,
			EntityID:   st.ID,
			OldValues:  old,
			NewValues:  reviewSnapshot(st.Review),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteStage soft-deletes an offer.
func (s *Service) DeleteStage(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		st, err := s.stages.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre de stage introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityStage, &st.Listing); err != nil {
			return err
		}
		if err := s.stages.SoftDelete(ctx, tx, st.ID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityStage,
			EntityID:   st.ID,
			OldValues:  listingSnapshot(&st.Listing),
		})
		return err
	})
}

// RestoreStage reverses a soft delete. Site admins only.
func (s *Service) RestoreStage(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if err := s.requireSiteAdmin(ctx, actor, entityStage, id); err != nil {
		return err
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.stages.Restore(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre de stage introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityStage,
			EntityID:   id,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
}

// MyStages lists the actor's own offers, whatever their state.
func (s *Service) MyStages(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Stage, int, error) {
	return s.stages.ListByCreateur(ctx, s.pool, actor.User.ID, limit, offset)
}

// StageStats returns the moderation dashboard counters. Site admins only.
func (s *Service) StageStats(ctx context.Context, actor *usersdomain.Actor) (domain.Stats, error) {
	if !actor.IsSiteAdmin() {
		return domain.Stats{}, s.denied(ctx, actor, entityStage, uuid.Nil)
	}
	return s.stages.Stats(ctx, s.pool)
}
