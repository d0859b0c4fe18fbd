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
	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/organisations/repository"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/uploads"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

const (
	entityOrganisation = "Organisation"
	entityMembre       = "MembreOrganisation"
	entityAbonnement   = "AbonnementOrganisation"

	logoMaxEdge = 1024
)

// Service owns the organisation use cases: pages, memberships and followers.
type Service struct {
	pool        *pgxpool.Pool
	orgs        *repository.OrganisationRepository
	membres     *repository.MembreRepository
	abonnements *repository.AbonnementRepository
	audit       *audit.Recorder
	media       *uploads.Store
}

func NewService(pool *pgxpool.Pool, media *uploads.Store) *Service {
	return &Service{
		pool:        pool,
		orgs:        repository.NewOrganisationRepository(),
		membres:     repository.NewMembreRepository(),
		abonnements: repository.NewAbonnementRepository(),
		audit:       audit.NewRecorder(),
		media:       media,
	}
}

// CreateInput carries the organisation page fields.
type CreateInput struct {
	Nom          string
	Type         domain.TypeOrganisation
	SecteurID    *uuid.UUID
	Adresse      *string
	Ville        *string
	Pays         *string
	Email        *string
	Telephone    *string
	Description  *string
	DateCreation *time.Time
}

func (in *CreateInput) validate() error {
	var fields []apperr.Field
	if strings.TrimSpace(in.Nom) == "" {
		fields = append(fields, apperr.Field{Name: "nom", Message: "Le nom est obligatoire."})
	}
	if !in.Type.Valid() {
		fields = append(fields, apperr.Field{Name: "type", Message: "Type d'organisation invalide."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

// Create opens an organisation page. Pages from regular members await admin
// approval; pages opened by site admins go live at once. The creator becomes
// the first page admin.
func (s *Service) Create(ctx context.Context, actor *usersdomain.Actor, in CreateInput) (*domain.Organisation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if actor.Profil == nil {
		return nil, apperr.BadRequest("Aucun profil associé à ce compte.")
	}

	statut := domain.StatutEnAttente
	if actor.IsSiteAdmin() {
		statut = domain.StatutActive
	}

	var created *domain.Organisation
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		created, err = s.orgs.Create(ctx, tx, &domain.Organisation{
			Nom:          strings.TrimSpace(in.Nom),
			Type:         in.Type,
			SecteurID:    in.SecteurID,
			Adresse:      in.Adresse,
			Ville:        in.Ville,
			Pays:         in.Pays,
			Email:        in.Email,
			Telephone:    in.Telephone,
			Description:  in.Description,
			DateCreation: in.DateCreation,
			Statut:       statut,
		})
		if err != nil {
			return err
		}

		membre, err := s.membres.Create(ctx, tx, &domain.Membre{
			ProfilID:       actor.Profil.ID,
			OrganisationID: created.ID,
			Role:           domain.RolePageAdmin,
		})
		if err != nil {
			return err
		}

		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityOrganisation,
			EntityID:   created.ID,
			NewValues:  organisationSnapshot(created),
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

// List returns the public directory. Non-admin callers only ever see active
// pages regardless of the requested filter.
func (s *Service) List(ctx context.Context, actor *usersdomain.Actor, f domain.ListFilters, limit, offset int) ([]domain.Organisation, int, error) {
	if actor == nil || !actor.IsSiteAdmin() {
		f.Statut = domain.StatutActive
	}
	return s.orgs.List(ctx, s.pool, f, limit, offset)
}

// GetBySlug returns one page. Pending or inactive pages are only visible to
// site admins and their own members.
func (s *Service) GetBySlug(ctx context.Context, actor *usersdomain.Actor, slug string) (*domain.Organisation, error) {
	o, err := s.orgs.GetBySlug(ctx, s.pool, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Organisation introuvable.")
		}
		return nil, err
	}
	if o.Active() {
		return o, nil
	}
	if actor != nil && (actor.IsSiteAdmin() || s.isActiveMember(ctx, actor, o.ID)) {
		return o, nil
	}
	return nil, apperr.NotFound("Organisation introuvable.")
}

// UpdateInput mirrors CreateInput with everything optional.
type UpdateInput struct {
	Nom          *string
	Type         *domain.TypeOrganisation
	SecteurID    *uuid.UUID
	Adresse      *string
	Ville        *string
	Pays         *string
	Email        *string
	Telephone    *string
	Description  *string
	DateCreation *time.Time
}

// Update edits a page. Page admins and site admins only.
func (s *Service) Update(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, in UpdateInput) (*domain.Organisation, error) {
	var updated *domain.Organisation
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := s.orgs.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Organisation introuvable.")
			}
			return err
		}
		if err := s.requirePageAdmin(ctx, actor, o.ID); err != nil {
			return err
		}

		old := organisationSnapshot(o)
		applyOrganisationUpdate(o, in)
		if !o.Type.Valid() {
			return apperr.BadRequest("Type d'organisation invalide.")
		}

		updated, err = s.orgs.Update(ctx, tx, o)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityOrganisation,
			EntityID:   o.ID,
			OldValues:  old,
			NewValues:  organisationSnapshot(updated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyOrganisationUpdate(o *domain.Organisation, in UpdateInput) {
	if in.Nom != nil {
		o.Nom = strings.TrimSpace(*in.Nom)
	}
	if in.Type != nil {
		o.Type = *in.Type
	}
	if in.SecteurID != nil {
		o.SecteurID = in.SecteurID
	}
	if in.Adresse != nil {
		o.Adresse = in.Adresse
	}
	if in.Ville != nil {
		o.Ville = in.Ville
	}
	if in.Pays != nil {
		o.Pays = in.Pays
	}
	if in.Email != nil {
		o.Email = in.Email
	}
	if in.Telephone != nil {
		o.Telephone = in.Telephone
	}
	if in.Description != nil {
		o.Description = in.Description
	}
	if in.DateCreation != nil {
		o.DateCreation = in.DateCreation
	}
}

// UpdateStatut approves, suspends or reactivates a page. Site admins only.
func (s *Service) UpdateStatut(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, statut domain.StatutOrganisation) error {
	if !actor.IsSiteAdmin() {
		return s.denied(ctx, actor, entityOrganisation, id)
	}
	if !statut.Valid() {
		return apperr.BadRequest("Statut invalide.")
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := s.orgs.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Organisation introuvable.")
			}
			return err
		}
		if err := s.orgs.UpdateStatut(ctx, tx, id, statut); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityOrganisation,
			EntityID:   id,
			OldValues:  map[string]any{"statut": string(o.Statut)},
			NewValues:  map[string]any{"statut": string(statut)},
		})
		return err
	})
}

// UploadLogo stores a new page logo and drops the previous file.
func (s *Service) UploadLogo(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID, fh *multipart.FileHeader) (*domain.Organisation, error) {
	o, err := s.orgs.GetByID(ctx, s.pool, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Organisation introuvable.")
		}
		return nil, err
	}
	if err := s.requirePageAdmin(ctx, actor, o.ID); err != nil {
		return nil, err
	}

	rel, err := s.media.SaveImage(fh, "logos_organisations", logoMaxEdge)
	if err != nil {
		return nil, err
	}
	previous := o.Logo

	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.orgs.UpdateLogo(ctx, tx, o.ID, rel); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityOrganisation,
			EntityID:   o.ID,
			OldValues:  map[string]any{"logo": previous},
			NewValues:  map[string]any{"logo": rel},
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
	o.Logo = &rel
	return o, nil
}

// SoftDelete retires a page. Memberships and subscriptions are deactivated in
// the same transaction and the whole cascade is audited as one operation.
func (s *Service) SoftDelete(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if err := s.requirePageAdmin(ctx, actor, id); err != nil {
		return err
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		o, err := s.orgs.GetByIDAny(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Organisation introuvable.")
			}
			return err
		}
		if err := s.orgs.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		membres, err := s.membres.DeactivateByOrganisation(ctx, tx, id)
		if err != nil {
			return err
		}
		abonnements, err := s.abonnements.DeactivateByOrganisation(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityOrganisation,
			EntityID:   id,
			OldValues:  organisationSnapshot(o),
			NewValues: map[string]any{
				"membres_desactives":     membres,
				"abonnements_desactives": abonnements,
			},
		})
		return err
	})
}

// Restore reverses a page soft delete. Site admins only. Memberships and
// subscriptions stay deactivated; history is not resurrected.
func (s *Service) Restore(ctx context.Context, actor *usersdomain.Actor, id uuid.UUID) error {
	if !actor.IsSiteAdmin() {
		return s.denied(ctx, actor, entityOrganisation, id)
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.orgs.Restore(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Organisation introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityOrganisation,
			EntityID:   id,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
}

// IsActivePageAdmin reports whether the actor administers the page. Other
// services use it to decide trusted-creator flows.
func (s *Service) IsActivePageAdmin(ctx context.Context, actor *usersdomain.Actor, orgID uuid.UUID) bool {
	if actor.Profil == nil {
		return false
	}
	m, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, orgID)
	return err == nil && m.Role == domain.RolePageAdmin
}

// IsActiveMemberOf reports whether the actor holds any active membership of
// the organisation.
func (s *Service) IsActiveMemberOf(ctx context.Context, actor *usersdomain.Actor, orgID uuid.UUID) bool {
	return s.isActiveMember(ctx, actor, orgID)
}

func (s *Service) isActiveMember(ctx context.Context, actor *usersdomain.Actor, orgID uuid.UUID) bool {
	if actor.Profil == nil {
		return false
	}
	_, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, orgID)
	return err == nil
}

func (s *Service) requirePageAdmin(ctx context.Context, actor *usersdomain.Actor, orgID uuid.UUID) error {
	if actor.IsSiteAdmin() || s.IsActivePageAdmin(ctx, actor, orgID) {
		return nil
	}
	return s.denied(ctx, actor, entityOrganisation, orgID)
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

func organisationSnapshot(o *domain.Organisation) map[string]any {
	return map[string]any{
		"nom":    o.Nom,
		"slug":   o.Slug,
		"type":   string(o.Type),
		"statut": string(o.Statut),
		"ville":  o.Ville,
		"pays":   o.Pays,
	}
}

func membreSnapshot(m *domain.Membre) map[string]any {
	return map[string]any{
		"profil_id":       m.ProfilID.String(),
		"organisation_id": m.OrganisationID.String(),
		"role":            string(m.Role),
		"est_actif":       m.EstActif,
	}
}
