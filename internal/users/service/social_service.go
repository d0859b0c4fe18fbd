package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const entitySocialLink = "LienReseauSocialProfil"

// SetSocialLink creates or replaces the actor's link for one network.
func (s *Service) SetSocialLink(ctx context.Context, actor *domain.Actor, reseauID uuid.UUID, rawURL string) (*domain.LienReseauSocial, error) {
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.BadRequest("URL invalide.")
	}

	base, err := s.socials.ReseauBaseURL(ctx, s.pool, reseauID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.BadRequest("Réseau social introuvable.")
		}
		return nil, err
	}
	if base != "" && !strings.HasPrefix(u.String(), base) {
		return nil, apperr.BadRequestf("L'URL doit commencer par %s.", base)
	}

	var link *domain.LienReseauSocial
	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		link, err = s.socials.Upsert(ctx, tx, &domain.LienReseauSocial{
			ProfilID: actor.Profil.ID,
			ReseauID: reseauID,
			URL:      u.String(),
			EstActif: true,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entitySocialLink,
			EntityID:   link.ID,
			NewValues:  map[string]any{"reseau_id": link.ReseauID.String(), "url": link.URL},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *Service) ListSocialLinks(ctx context.Context, profilID uuid.UUID) ([]domain.LienReseauSocial, error) {
	return s.socials.ListByProfil(ctx, s.pool, profilID)
}

// RemoveSocialLink soft-deletes one of the actor's links.
func (s *Service) RemoveSocialLink(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		link, err := s.socials.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Lien introuvable.")
			}
			return err
		}
		if !actor.IsSiteAdmin() && (actor.Profil == nil || actor.Profil.ID != link.ProfilID) {
			return s.denied(ctx, actor, entitySocialLink, link.ID)
		}
		if err := s.socials.SoftDelete(ctx, tx, link.ID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entitySocialLink,
			EntityID:   link.ID,
			OldValues:  map[string]any{"reseau_id": link.ReseauID.String(), "url": link.URL},
		})
		return err
	})
}
