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

// EmploiInput carries the job offer fields.
type EmploiInput struct {
	Titre            string
	NomStructure     string
	Description      string
	TypeEmploi       domain.TypeEmploi
	Adresse          *string
	Ville            *string
	Pays             *string
	EmailContact     *string
	TelephoneContact *string
	LienOffre        *string
	LienCandidature  *string
	SalaireMin       *float64
	SalaireMax       *float64
	Devise           *string
	DateExpiration   *time.Time
	OrganisationID   *uuid.UUID
}

func (in *EmploiInput) validate() error {
	fields := validateListingCore(in.Titre, in.NomStructure, in.Description)
	if !in.TypeEmploi.Valid() {
		fields = append(fields, apperr.Field{Name: "type_emploi", Message: "Type d'emploi invalide."})
	}
	hasSalary := in.SalaireMin != nil || in.SalaireMax != nil
	if hasSalary && (in.Devise == nil || strings.TrimSpace(*in.Devise) == "") {
		fields = append(fields, apperr.Field{Name: "devise", Message: "La devise est obligatoire lorsqu'un salaire est renseigné."})
	}
	if in.SalaireMin != nil && in.SalaireMax != nil && *in.SalaireMin > *in.SalaireMax {
		fields = append(fields, apperr.Field{Name: "salaire_min", Message: "Le salaire minimum ne peut pas dépasser le salaire maximum."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

// CreateEmploi publishes or queues a job offer depending on who posts.
func (s *Service) CreateEmploi(ctx context.Context, actor *usersdomain.Actor, in EmploiInput) (*domain.Emploi, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	orgID, review, err := s.resolveCreation(ctx, actor, in.OrganisationID)
	if err != nil {
		return nil, err
	}

	var created *domain.Emploi
	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		created, err = s.emplois.Create(ctx, tx, &domain.Emploi{
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
			TypeEmploi:     in.TypeEmploi,
			SalaireMin:     in.SalaireMin,
			SalaireMax:     in.SalaireMax,
			Devise:         in.Devise,
			DateExpiration: in.DateExpiration,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityEmploi,
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

// ListEmplois returns the public job feed, or a status-filtered moderation
// view for site admins.
func (s *Service) ListEmplois(ctx context.Context, actor *usersdomain.Actor, f domain.ListFilters, limit, offset int) ([]domain.Emploi, int, error) {
	if _, err := s.emplois.ExpireOverdue(ctx, s.pool, s.now()); err != nil {
		return nil, 0, err
	}
	publicOnly := actor == nil || !actor.IsSiteAdmin() || f.Statut == ""
	return s.emplois.List(ctx, s.pool, f, publicOnly, limit, offset)
}

// ListPendingEmplois is the moderation queue. Site admins only.
func (s *Service) ListPendingEmplois(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Emploi, int, error) {
	if !actor.IsSiteAdmin() {
		return nil, 0, s.denied(ctx, actor, entityEmploi, uuid.Nil)
	}
	f := domain.ListFilters{Statut: moderation.StatusEnAttente}
	return s.emplois.List(ctx, s.pool, f, false, limit, offset)
}

// GetEmploiBySlug returns one offer, applying public visibility.
func (s *Service) GetEmploiBySlug(ctx context.Context, actor *usersdomain.Actor, slug string) (*domain.Emploi, error) {
	e, err := s.emplois.GetBySlug(ctx, s.pool, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Offre d'emploi introuvable.")
		}
		return nil, err
	}
	if !s.visibleToActor(ctx, actor, &e.Listing) {
		return nil, apperr.NotFound("Offre d'emploi introuvable.")
	}
	return e, nil
}

// UpdateEmploi edits an offer. Creator, page admin or site admin.
func (s *Service) UpdateEmploi(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, in EmploiInput) (*domain.Emploi, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.Emploi
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, err := s.emplois.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre d'emploi introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityEmploi, &e.Listing); err != nil {
			return err
		}

		old := listingSnapshot(&e.Listing)
		e.Titre = strings.TrimSpace(in.Titre)
		e.NomStructure = strings.TrimSpace(in.NomStructure)
		e.Description = in.Description
		e.Adresse = in.Adresse
		e.Ville = in.Ville
		e.Pays = in.Pays
		e.EmailContact = in.EmailContact
		e.TelephoneContact = in.TelephoneContact
		e.LienOffre = in.LienOffre
		e.LienCandidature = in.LienCandidature
		e.TypeEmploi = in.TypeEmploi
		e.SalaireMin = in.SalaireMin
		e.SalaireMax = in.SalaireMax
		e.Devise = in.Devise
		e.DateExpiration = in.DateExpiration

		updated, err = s.emplois.Update(ctx, tx, e)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityEmploi,
			EntityID:   e.ID,
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

// ValidateEmploi applies the one-shot admin decision on a pending offer.
func (s *Service) ValidateEmploi(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, approved bool, commentaire *string) (*domain.Emploi, error) {
	if err := s.requireSiteAdmin(ctx, actor, entityEmploi, id); err != nil {
		return nil, err
	}

	var validated *domain.Emploi
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, err := s.emplois.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre d'emploi introuvable.")
			}
			return err
		}

		old := reviewSnapshot(e.Review)
		if err := e.Review.Validate(actor.User.ID, approved, commentaire, s.now()); err != nil {
			return err
		}
		if err := s.emplois.UpdateReview(ctx, tx, e.ID, e.Review); err != nil {
			return err
		}
		validated = e
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityEmploi,
			EntityID:   e.ID,
			OldValues:  old,
			NewValues:  reviewSnapshot(e.Review),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

// UpdateEmploiStatus moves an offer between administrative states. Jobs close
// as pourvue.
func (s *Service) UpdateEmploiStatus(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, next moderation.Status) (*domain.Emploi, error) {
	var updated *domain.Emploi
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, err := s.emplois.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre d'emploi introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityEmploi, &e.Listing); err != nil {
			return err
		}

		old := reviewSnapshot(e.Review)
		if err := e.Review.UpdateStatus(next, moderation.StatusPourvue); err != nil {
			return err
		}
		if err := s.emplois.UpdateReview(ctx, tx, e.ID, e.Review); err != nil {
			return err
		}
		updated = e
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityEmploi,
			EntityID:   e.ID,
			OldValues:  old,
			NewValues:  reviewSnapshot(e.Review),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEmploi soft-deletes an offer.
func (s *Service) DeleteEmploi(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, err := s.emplois.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre d'emploi introuvable.")
			}
			return err
		}
		if err := s.requireManage(ctx, actor, entityEmploi, &e.Listing); err != nil {
			return err
		}
		if err := s.emplois.SoftDelete(ctx, tx, e.ID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityEmploi,
			EntityID:   e.ID,
			OldValues:  listingSnapshot(&e.Listing),
		})
		return err
	})
}

// RestoreEmploi reverses a soft delete. Site admins only.
func (s *Service) RestoreEmploi(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if err := s.requireSiteAdmin(ctx, actor, entityEmploi, id); err != nil {
		return err
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.emplois.Restore(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Offre d'emploi introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityEmploi,
			EntityID:   id,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
}

// MyEmplois lists the actor's own offers, whatever their state.
func (s *Service) MyEmplois(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Emploi, int, error) {
	return s.emplois.ListByCreateur(ctx, s.pool, actor.User.ID, limit, offset)
}

// EmploiStats returns the moderation dashboard counters. Site admins only.
func (s *Service) EmploiStats(ctx context.Context, actor *usersdomain.Actor) (domain.Stats, error) {
	if !actor.IsSiteAdmin() {
		return domain.Stats{}, s.denied(ctx, actor, entityEmploi, uuid.Nil)
	}
	return s.emplois.Stats(ctx, s.pool)
}
