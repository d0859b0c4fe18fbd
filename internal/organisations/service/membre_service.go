package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

// AddMembre attaches a profile to the page. Page admins and site admins only;
// a profile cannot hold two active memberships of the same page.
func (s *Service) AddMembre(ctx context.Context, actor *usersdomain.Actor, orgID, profilID uuid.UUID, role domain.RoleMembre, posteID *uuid.UUID) (*domain.Membre, error) {
	if err := s.requirePageAdmin(ctx, actor, orgID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.BadRequest("Rôle de membre invalide.")
	}

	var created *domain.Membre
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		created, err = s.membres.Create(ctx, tx, &domain.Membre{
			ProfilID:       profilID,
			OrganisationID: orgID,
			Role:           role,
			PosteID:        posteID,
		})
		if err != nil {
			if postgres.IsUniqueViolation(err, "membre_organisation_actif_key") {
				return apperr.Conflict("Ce profil est déjà membre de cette organisation.")
			}
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityMembre,
			EntityID:   created.ID,
			NewValues:  membreSnapshot(created),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) ListMembres(ctx context.Context, orgID uuid.UUID) ([]domain.Membre, error) {
	return s.membres.ListByOrganisation(ctx, s.pool, orgID)
}

// UpdateMembre changes a member's role or poste. Demoting the last page admin
// is blocked, the page must keep at least one.
func (s *Service) UpdateMembre(ctx context.Context, actor *usersdomain.Actor, membreID uuid.UUID, role domain.RoleMembre, posteID *uuid.UUID) (*domain.Membre, error) {
	if !role.Valid() {
		return nil, apperr.BadRequest("Rôle de membre invalide.")
	}

	var updated *domain.Membre
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		m, err := s.membres.GetByID(ctx, tx, membreID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Membre introuvable.")
			}
			return err
		}
		if err := s.requirePageAdmin(ctx, actor, m.OrganisationID); err != nil {
			return err
		}
		if m.Role == domain.RolePageAdmin && role != domain.RolePageAdmin {
			admins, err := s.membres.CountActiveAdmins(ctx, tx, m.OrganisationID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Conflict("Impossible de retirer le dernier administrateur de la page.")
			}
		}

		old := membreSnapshot(m)
		m.Role = role
		m.PosteID = posteID
		updated, err = s.membres.Update(ctx, tx, m)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityMembre,
			EntityID:   m.ID,
			OldValues:  old,
			NewValues:  membreSnapshot(updated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveMembre deactivates a membership. Removing the last page admin is
// blocked. Members may leave a page themselves.
func (s *Service) RemoveMembre(ctx context.Context, actor *usersdomain.Actor, membreID uuid.UUID) error {
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		m, err := s.membres.GetByID(ctx, tx, membreID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Membre introuvable.")
			}
			return err
		}
		self := actor.Profil != nil && actor.Profil.ID == m.ProfilID
		if !self {
			if err := s.requirePageAdmin(ctx, actor, m.OrganisationID); err != nil {
				return err
			}
		}
		if m.Role == domain.RolePageAdmin {
			admins, err := s.membres.CountActiveAdmins(ctx, tx, m.OrganisationID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Conflict("Impossible de retirer le dernier administrateur de la page.")
			}
		}
		if err := s.membres.Deactivate(ctx, tx, m.ID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityMembre,
			EntityID:   m.ID,
			OldValues:  membreSnapshot(m),
		})
		return err
	})
}

// Follow subscribes the actor's profile to a page.
func (s *Service) Follow(ctx context.Context, actor *usersdomain.Actor, orgID uuid.UUID) (*domain.Abonnement, error) {
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	o, err := s.orgs.GetByID(ctx, s.pool, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Organisation introuvable.")
		}
		return nil, err
	}
	if !o.Active() {
		return nil, apperr.NotFound("Organisation introuvable.")
	}

	var ab *domain.Abonnement
	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		ab, err = s.abonnements.Follow(ctx, tx, actor.Profil.ID, orgID)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityAbonnement,
			EntityID:   ab.ID,
			NewValues:  map[string]any{"organisation_id": orgID.String()},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ab, nil
}

// Unfollow ends the actor's subscription to a page.
func (s *Service) Unfollow(ctx context.Context, actor *usersdomain.Actor, orgID uuid.UUID) error {
	if actor.Profil == nil {
		return apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.abonnements.Unfollow(ctx, tx, actor.Profil.ID, orgID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Abonnement introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityAbonnement,
			EntityID:   orgID,
			OldValues:  map[string]any{"organisation_id": orgID.String()},
		})
		return err
	})
}

func (s *Service) ListFollowers(ctx context.Context, orgID uuid.UUID) ([]domain.Abonnement, int, error) {
	subs, err := s.abonnements.ListByOrganisation(ctx, s.pool, orgID)
	if err != nil {
		return nil, 0, err
	}
	return subs, len(subs), nil
}

func (s *Service) ListMyFollows(ctx context.Context, actor *usersdomain.Actor) ([]domain.Abonnement, error) {
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	return s.abonnements.ListByProfil(ctx, s.pool, actor.Profil.ID)
}
