// Package service owns the listing use cases shared by internships, jobs and
// trainings: moderated creation, public feeds, the one-shot validation and
// the administrative status transitions.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/moderation"
	orgsdomain "github.com/enspm-hub/hub-backend/internal/organisations/domain"
	orgsrepo "github.com/enspm-hub/hub-backend/internal/organisations/repository"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	"github.com/enspm-hub/hub-backend/internal/opportunities/repository"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

const (
	entityStage     = "Stage"
	entityEmploi    = "Emploi"
	entityFormation = "Formation"
)

type Service struct {
	pool       *pgxpool.Pool
	stages     *repository.StageRepository
	emplois    *repository.EmploiRepository
	formations *repository.FormationRepository
	orgs       *orgsrepo.OrganisationRepository
	membres    *orgsrepo.MembreRepository
	audit      *audit.Recorder
	now        func() time.Time
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{
		pool:       pool,
		stages:     repository.NewStageRepository(),
		emplois:    repository.NewEmploiRepository(),
		formations: repository.NewFormationRepository(),
		orgs:       orgsrepo.NewOrganisationRepository(),
		membres:    orgsrepo.NewMembreRepository(),
		audit:      audit.NewRecorder(),
		now:        time.Now,
	}
}

// resolveCreation decides the organisation binding and the initial review
// state for a new listing. Posting on behalf of an organisation requires an
// active membership of an active page; site admins and partner members
// publish without the pending queue.
func (s *Service) resolveCreation(ctx context.Context, actor *usersdomain.Actor, orgID *uuid.UUID) (*uuid.UUID, moderation.Review, error) {
	if orgID == nil {
		return nil, moderation.Initial(actor.IsSiteAdmin()), nil
	}

	o, err := s.orgs.GetByID(ctx, s.pool, *orgID)
	if err != nil {
		if errors.Is(err, orgsdomain.ErrNotFound) {
			return nil, moderation.Review{}, apperr.BadRequest("Organisation introuvable.")
		}
		return nil, moderation.Review{}, err
	}
	if !o.Active() {
		return nil, moderation.Review{}, apperr.BadRequest("Cette organisation n'est pas active.")
	}

	if actor.IsSiteAdmin() {
		return orgID, moderation.Initial(true), nil
	}
	if actor.Profil == nil {
		return nil, moderation.Review{}, apperr.BadRequest("Aucun profil associé à ce compte.")
	}
	if _, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, *orgID); err != nil {
		if errors.Is(err, orgsdomain.ErrNotFound) {
			return nil, moderation.Review{}, apperr.Forbidden("Vous n'êtes pas membre de cette organisation.")
		}
		return nil, moderation.Review{}, err
	}

	trusted := actor.IsPartenaire()
	return orgID, moderation.Initial(trusted), nil
}

// canManage reports whether the actor may edit a listing: its creator, a
// page admin of its organisation, or a site admin.
func (s *Service) canManage(ctx context.Context, actor *usersdomain.Actor, l *domain.Listing) bool {
	if actor.IsSiteAdmin() || actor.User.ID == l.CreateurID {
		return true
	}
	if l.OrganisationID == nil || actor.Profil == nil {
		return false
	}
	m, err := s.membres.GetActive(ctx, s.pool, actor.Profil.ID, *l.OrganisationID)
	return err == nil && m.Role == orgsdomain.RolePageAdmin
}

func (s *Service) requireManage(ctx context.Context, actor *usersdomain.Actor, entityType string, l *domain.Listing) error {
	if s.canManage(ctx, actor, l) {
		return nil
	}
	return s.denied(ctx, actor, entityType, l.ID)
}

func (s *Service) requireSiteAdmin(ctx context.Context, actor *usersdomain.Actor, entityType string, id uuid.UUID) error {
	if actor.IsSiteAdmin() {
		return nil
	}
	return s.denied(ctx, actor, entityType, id)
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

// visibleToActor applies the public visibility rule to a single fetched
// listing: pending, rejected and closed listings are only shown to people
// who could manage them.
func (s *Service) visibleToActor(ctx context.Context, actor *usersdomain.Actor, l *domain.Listing) bool {
	if l.Visible() {
		return true
	}
	if actor == nil {
		return false
	}
	return s.canManage(ctx, actor, l)
}

func listingSnapshot(l *domain.Listing) map[string]any {
	return map[string]any{
		"titre":         l.Titre,
		"slug":          l.Slug,
		"nom_structure": l.NomStructure,
		"statut":        string(l.Statut),
		"est_valide":    l.EstValide,
	}
}

func reviewSnapshot(rev moderation.Review) map[string]any {
	m := map[string]any{
		"statut":     string(rev.Statut),
		"est_valide": rev.EstValide,
	}
	if rev.ValidateurID != nil {
		m["validateur_id"] = rev.ValidateurID.String()
	}
	if rev.CommentaireValidation != nil {
		m["commentaire_validation"] = *rev.CommentaireValidation
	}
	return m
}
