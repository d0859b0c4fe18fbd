// Package service owns the community group use cases: moderated creation,
// the directory, membership management and the validate flow shared with
// listings.
package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/groups/repository"
	"github.com/enspm-hub/hub-backend/internal/moderation"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/uploads"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

const (
	entityGroupe = "Groupe"
	entityMembre = "MembreGroupe"

	photoMaxEdge = 1024
)

// Service owns the group use cases.
type Service struct {
	pool    *pgxpool.Pool
	groupes *repository.GroupeRepository
	membres *repository.MembreRepository
	audit   *audit.Recorder
	media   *uploads.Store
	now     func() time.Time
}

func NewService(pool *pgxpool.Pool, media *uploads.Store) *Service {
	return &Service{
		pool:    pool,
		groupes: repository.NewGroupeRepository(),
		membres: repository.NewMembreRepository(),
		audit:   audit.NewRecorder(),
		media:   media,
		now:     time.Now,
	}
}

// CreateInput carries the group fields.
type CreateInput struct {
	Nom         string
	Description string
	Type        domain.TypeGroupe
	MaxMembres  *int
}

func (in *CreateInput) validate() error {
	var fields []apperr.Field
	if strings.TrimSpace(in.Nom) == "" {
		fields = append(fields, apperr.Field{Name: "nom", Message: "Le nom est obligatoire."})
	}
	if strings.TrimSpace(in.Description) == "" {
		fields = append(fields, apperr.Field{Name: "description", Message: "La description est obligatoire."})
	}
	if !in.Type.Valid() {
		fields = append(fields, apperr.Field{Name: "type", Message: "Type de groupe invalide."})
	}
	if in.MaxMembres != nil && *in.MaxMembres < 2 {
		fields = append(fields, apperr.Field{Name: "max_membres", Message: "La capacité doit être d'au moins 2 membres."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

// capacityReached reports whether a group is full. No limit means unlimited.
func capacityReached(max *int, active int) bool {
	return max != nil && active >= *max
}

// Create opens a group. Groups from regular members await admin validation;
// groups opened by site admins go live at once. The creator becomes the
// first group admin.
func (s *Service) Create(ctx context.Context, actor *usersdomain.Actor, in CreateInput) (*domain.Groupe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}

	var created *domain.Groupe
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		created, err = s.groupes.Create(ctx, tx, &domain.Groupe{
			Review:           moderation.Initial(actor.IsSiteAdmin()),
			CreateurProfilID: &actor.Profil.ID,
			Nom:              strings.TrimSpace(in.Nom),
			Description:      in.Description,
			Type:             in.Type,
			MaxMembres:       in.MaxMembres,
		})
		if err != nil {
			if postgres.IsUniqueViolation(err, "groupe_nom_key") {
				return apperr.Conflict("Un groupe porte déjà ce nom.")
			}
			return err
		}

		membre, err := s.membres.Create(ctx, tx, &domain.Membre{
			ProfilID: actor.Profil.ID,
			GroupeID: created.ID,
			Role:     domain.RoleAdmin,
		})
		if err != nil {
			return err
		}

		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityGroupe,
			EntityID:   created.ID,
			NewValues:  groupeSnapshot(created),
		}); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityMembre,
			EntityID:   membre.ID,
			NewValues:  membreSnapshot(membre),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns the directory. Non-admin callers only ever see validated
// groups regardless of the requested filter.
func (s *Service) List(ctx context.Context, actor *usersdomain.Actor, f domain.ListFilters, limit, offset int) ([]domain.Groupe, int, error) {
	if actor == nil || !actor.IsSiteAdmin() {
		f.Statut = moderation.StatusActive
	}
	return s.groupes.List(ctx, s.pool, f, limit, offset)
}

// ListPending returns the moderation queue. Site admins only.
func (s *Service) ListPending(ctx context.Context, actor *usersdomain.Actor, limit, offset int) ([]domain.Groupe, int, error) {
	if !actor.IsSiteAdmin() {
		return nil, 0, s.denied(ctx, actor, entityGroupe, uuid.Nil)
	}
	return s.groupes.List(ctx, s.pool, domain.ListFilters{Statut: moderation.StatusEnAttente}, limit, offset)
}

// GetBySlug returns one group. Unvalidated groups are only visible to site
// admins and their own members.
func (s *Service) GetBySlug(ctx context.Context, actor *usersdomain.Actor, slug string) (*domain.Groupe, error) {
	g, err := s.groupes.GetBySlug(ctx, s.pool, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Groupe introuvable.")
		}
		return nil, err
	}
	if g.Visible() {
		return g, nil
	}
	if actor != nil && (actor.IsSiteAdmin() || s.isActiveMember(ctx, actor, g.ID)) {
		return g, nil
	}
	return nil, apperr.NotFound("Groupe introuvable.")
}

// UpdateInput mirrors CreateInput with everything optional.
type UpdateInput struct {
	Nom         *string
	Description *string
	Type        *domain.TypeGroupe
	MaxMembres  *int
}

// Update edits a group. Group admins and site admins only.
func (s *Service) Update(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, in UpdateInput) (*domain.Groupe, error) {
	var updated *domain.Groupe
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		g, err := s.groupes.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Groupe introuvable.")
			}
			return err
		}
		if err := s.requireGroupAdmin(ctx, actor, g.ID); err != nil {
			return err
		}

		old := groupeSnapshot(g)
		if in.Nom != nil {
			g.Nom = strings.TrimSpace(*in.Nom)
		}
		if in.Description != nil {
			g.Description = *in.Description
		}
		if in.Type != nil {
			g.Type = *in.Type
		}
		if in.MaxMembres != nil {
			g.MaxMembres = in.MaxMembres
		}
		if !g.Type.Valid() {
			return apperr.BadRequest("Type de groupe invalide.")
		}

		updated, err = s.groupes.Update(ctx, tx, g)
		if err != nil {
			if postgres.IsUniqueViolation(err, "groupe_nom_key") {
				return apperr.Conflict("Un groupe porte déjà ce nom.")
			}
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityGroupe,
			EntityID:   g.ID,
			OldValues:  old,
			NewValues:  groupeSnapshot(updated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Validate applies the one-shot admin decision on a pending group.
func (s *Service) Validate(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, approved bool, commentaire *string) (*domain.Groupe, error) {
	if !actor.IsSiteAdmin() {
		return nil, s.denied(ctx, actor, entityGroupe, id)
	}

	var g *domain.Groupe
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		g, err = s.groupes.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Groupe introuvable.")
			}
			return err
		}

		old := map[string]any{"statut": string(g.Statut), "est_valide": g.EstValide}
		if err := g.Review.Validate(actor.User.ID, approved, commentaire, s.now()); err != nil {
			return err
		}
		if err := s.groupes.UpdateReview(ctx, tx, g); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityGroupe,
			EntityID:   g.ID,
			OldValues:  old,
			NewValues:  map[string]any{"statut": string(g.Statut), "est_valide": g.EstValide},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// UploadPhoto stores a new group photo and drops the previous file.
func (s *Service) UploadPhoto(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, fh *multipart.FileHeader) (*domain.Groupe, error) {
	g, err := s.groupes.GetByID(ctx, s.pool, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Groupe introuvable.")
		}
		return nil, err
	}
	if err := s.requireGroupAdmin(ctx, actor, g.ID); err != nil {
		return nil, err
	}

	rel, err := s.media.SaveImage(fh, "photos_groups", photoMaxEdge)
	if err != nil {
		return nil, err
	}
	previous := g.Photo

	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.groupes.UpdatePhoto(ctx, tx, g.ID, rel); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityGroupe,
			EntityID:   g.ID,
			OldValues:  map[string]any{"photo": previous},
			NewValues:  map[string]any{"photo": rel},
		})
		return err
	})
	if err != nil {
		_ = s.media.Remove(rel)
		return nil, err
	}
	if previous != nil {
		_ = s.media.Remove(*previous)
	}
	g.Photo = &rel
	return g, nil
}

// SoftDelete retires a group. Memberships are deactivated in the same
// transaction and the whole cascade is audited as one operation.
func (s *Service) SoftDelete(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if err := s.requireGroupAdmin(ctx, actor, id); err != nil {
		return err
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		g, err := s.groupes.GetByIDAny(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Groupe introuvable.")
			}
			return err
		}
		if err := s.groupes.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		membres, err := s.membres.DeactivateByGroupe(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityGroupe,
			EntityID:   id,
			OldValues:  groupeSnapshot(g),
			NewValues:  map[string]any{"membres_desactives": membres},
		})
		return err
	})
}

// Restore reverses a group soft delete. Site admins only. Memberships stay
// deactivated; history is not resurrected.
func (s *Service) Restore(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if !actor.IsSiteAdmin() {
		return s.denied(ctx, actor, entityGroupe, id)
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.groupes.Restore(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Groupe introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityGroupe,
			EntityID:   id,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
}

func (s *Service) isActiveMember(ctx context.Context, actor *usersdomain.Actor, groupeID uuid.UUID) bool {
	if actor.Profil == nil {
		return false
	}
	_, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, groupeID)
	return err == nil
}

func (s *Service) requireGroupAdmin(ctx context.Context, actor *usersdomain.Actor, groupeID uuid.UUID) error {
	if actor.IsSiteAdmin() {
		return nil
	}
	if actor.Profil != nil {
		m, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, groupeID)
		if err == nil && m.Role == domain.RoleAdmin {
			return nil
		}
	}
	return s.denied(ctx, actor, entityGroupe, groupeID)
}

func (s *Service) denied(ctx context.Context, actor *usersdomain.Actor, entityType string, entityID uuid.UUID) error {
	_, _ = s.audit.Record(ctx, s.pool, audit.Entry{
		ActorID:    &actor.User.ID,
		Action:     audit.ActionAccessDenied,
		EntityType: entityType,
		EntityID:   entityID,
	})
	return apperr.Forbidden("Vous n'avez pas la permission d'effectuer cette action.")
}

func groupeSnapshot(g *domain.Groupe) map[string]any {
	return map[string]any{
		"nom":        g.Nom,
		"slug":       g.Slug,
		"type":       string(g.Type),
		"statut":     string(g.Statut),
		"est_valide": g.EstValide,
	}
}

func membreSnapshot(m *domain.Membre) map[string]any {
	return map[string]any{
		"profil_id": m.ProfilID.String(),
		"groupe_id": m.GroupeID.String(),
		"role":      string(m.Role),
		"est_actif": m.EstActif,
	}
}
