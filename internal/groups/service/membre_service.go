package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

// Join enrolls the actor's own profile. Only public groups accept self-join;
// private and administrative groups require a group admin to add members.
func (s *Service) Join(ctx context.Context, actor *usersdomain.Actor, groupeID uuid.UUID) (*domain.Membre, error) {
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	g, err := s.groupes.GetByID(ctx, s.pool, groupeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Groupe introuvable.")
		}
		return nil, err
	}
	if !g.Visible() {
		return nil, apperr.NotFound("Groupe introuvable.")
	}
	if g.Type != domain.TypePublic {
		return nil, apperr.Forbidden("Ce groupe n'accepte que les membres invités.")
	}
	return s.enroll(ctx, actor, g, actor.Profil.ID, domain.RoleMembreSimple)
}

// AddMembre attaches a profile to the group. Group admins and site admins
// only; a profile cannot hold two active memberships of the same group.
func (s *Service) AddMembre(ctx context.Context, actor *usersdomain.Actor, groupeID, profilID uuid.UUID, role domain.RoleMembre) (*domain.Membre, error) {
	if err := s.requireGroupAdmin(ctx, actor, groupeID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.BadRequest("Rôle de membre invalide.")
	}
	g, err := s.groupes.GetByID(ctx, s.pool, groupeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Groupe introuvable.")
		}
		return nil, err
	}
	return s.enroll(ctx, actor, g, profilID, role)
}

// enroll inserts the membership under the capacity check. Count and insert
// run in the same transaction so a full group stays full.
func (s *Service) enroll(ctx context.Context, actor *usersdomain.Actor, g *domain.Groupe, profilID uuid.UUID, role domain.RoleMembre) (*domain.Membre, error) {
	var created *domain.Membre
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		active, err := s.membres.CountActive(ctx, tx, g.ID)
		if err != nil {
			return err
		}
		if capacityReached(g.MaxMembres, active) {
			return apperr.Conflict("Ce groupe a atteint sa capacité maximale.")
		}

		created, err = s.membres.Create(ctx, tx, &domain.Membre{
			ProfilID: profilID,
			GroupeID: g.ID,
			Role:     role,
		})
		if err != nil {
			if postgres.IsUniqueViolation(err, "membre_groupe_actif_key") {
				return apperr.Conflict("Ce profil est déjà membre de ce groupe.")
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

func (s *Service) ListMembres(ctx context.Context, groupeID uuid.UUID) ([]domain.Membre, error) {
	return s.membres.ListByGroupe(ctx, s.pool, groupeID)
}

func (s *Service) ListMyGroups(ctx context.Context, actor *usersdomain.Actor) ([]domain.Membre, error) {
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	return s.membres.ListByProfil(ctx, s.pool, actor.Profil.ID)
}

// UpdateMembre changes a member's role. Demoting the last group admin is
// blocked, the group must keep at least one.
func (s *Service) UpdateMembre(ctx context.Context, actor *usersdomain.Actor, membreID uuid.UUID, role domain.RoleMembre) (*domain.Membre, error) {
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
		if err := s.requireGroupAdmin(ctx, actor, m.GroupeID); err != nil {
			return err
		}
		if m.Role == domain.RoleAdmin && role != domain.RoleAdmin {
			admins, err := s.membres.CountActiveAdmins(ctx, tx, m.GroupeID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Conflict("Impossible de retirer le dernier administrateur du groupe.")
			}
		}

		old := membreSnapshot(m)
		updated, err = s.membres.UpdateRole(ctx, tx, m.ID, role)
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

// RemoveMembre deactivates a membership. Removing the last group admin is
// blocked. Members may leave a group themselves.
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
			if err := s.requireGroupAdmin(ctx, actor, m.GroupeID); err != nil {
				return err
			}
		}
		if m.Role == domain.RoleAdmin {
			admins, err := s.membres.CountActiveAdmins(ctx, tx, m.GroupeID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperr.Conflict("Impossible de retirer le dernier administrateur du groupe.")
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

// Leave ends the actor's own membership of a group.
func (s *Service) Leave(ctx context.Context, actor *usersdomain.Actor, groupeID uuid.UUID) error {
	if actor.Profil == nil {
		return apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	m, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, groupeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperr.NotFound("Vous n'êtes pas membre de ce groupe.")
		}
		return err
	}
	return s.RemoveMembre(ctx, actor, m.ID)
}
