package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/uploads"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
	"github.com/enspm-hub/hub-backend/internal/users/repository"
)

const (
	entityUser   = "User"
	entityProfil = "Profil"

	photoMaxEdge = 512
)

// Service owns account and profile use cases. Every mutation runs in a single
// transaction together with its audit entry.
type Service struct {
	pool        *pgxpool.Pool
	users       *repository.UserRepository
	profiles    *repository.ProfileRepository
	experiences *repository.ExperienceRepository
	socials     *repository.SocialLinkRepository
	audit       *audit.Recorder
	media       *uploads.Store
}

func NewService(pool *pgxpool.Pool, media *uploads.Store) *Service {
	return &Service{
		pool:        pool,
		users:       repository.NewUserRepository(),
		profiles:    repository.NewProfileRepository(),
		experiences: repository.NewExperienceRepository(),
		socials:     repository.NewSocialLinkRepository(),
		audit:       audit.NewRecorder(),
		media:       uploads.NewStore(media.Root),
	}
}

// RegisterInput carries everything needed to open an account with its profile.
type RegisterInput struct {
	Email        string
	Password     string
	NomComplet   string
	Matricule    *string
	StatutGlobal domain.StatutGlobal
	TitreID      *uuid.UUID
	AnneeSortie  *uuid.UUID
	DomaineID    *uuid.UUID
	Telephone    *string
	Ville        *string
	Pays         *string
}

func (in *RegisterInput) validate() error {
	var fields []apperr.Field
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, apperr.Field{Name: "email", Message: "Adresse e-mail invalide."})
	}
	if len(in.Password) < 8 {
		fields = append(fields, apperr.Field{Name: "password", Message: "Le mot de passe doit contenir au moins 8 caractères."})
	}
	if strings.TrimSpace(in.NomComplet) == "" {
		fields = append(fields, apperr.Field{Name: "nom_complet", Message: "Le nom complet est obligatoire."})
	}
	if !in.StatutGlobal.Valid() {
		fields = append(fields, apperr.Field{Name: "statut_global", Message: "Statut invalide."})
	}
	if len(fields) > 0 {
		return apperr.ValidationFailed(fields)
	}
	return nil
}

// Register opens a user account and its profile in one transaction, recording
// a creation entry for each.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Actor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var actor domain.Actor
	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		u, err := s.users.Create(ctx, tx, strings.ToLower(strings.TrimSpace(in.Email)), hash, domain.RoleUser)
		if err != nil {
			if postgres.IsUniqueViolation(err, "users_email_key") {
				return apperr.Conflict("Un compte existe déjà avec cette adresse e-mail.")
			}
			return err
		}

		p, err := s.profiles.Create(ctx, tx, &domain.Profil{
			UserID:        u.ID,
			NomComplet:    strings.TrimSpace(in.NomComplet),
			Matricule:     in.Matricule,
			TitreID:       in.TitreID,
			StatutGlobal:  in.StatutGlobal,
			AnneeSortieID: in.AnneeSortie,
			DomaineID:     in.DomaineID,
			Telephone:     in.Telephone,
			Ville:         in.Ville,
			Pays:          in.Pays,
		})
		if err != nil {
			return err
		}

		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &u.ID,
			Action:     audit.ActionCreate,
			EntityType: entityUser,
			EntityID:   u.ID,
			NewValues:  userSnapshot(u),
		}); err != nil {
			return err
		}
		if _, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &u.ID,
			Action:     audit.ActionCreate,
			EntityType: entityProfil,
			EntityID:   p.ID,
			NewValues:  profilSnapshot(p),
		}); err != nil {
			return err
		}

		actor = domain.Actor{User: *u, Profil: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// GetActor resolves the acting user for a request. Missing profiles are
// tolerated, a deleted or deactivated account is not.
func (s *Service) GetActor(ctx context.Context, userID uuid.UUID) (*domain.Actor, error) {
	u, err := s.users.GetByID(ctx, s.pool, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.Unauthorized("Compte introuvable ou désactivé.")
		}
		return nil, err
	}
	if !u.Active() {
		return nil, apperr.Unauthorized("Compte introuvable ou désactivé.")
	}
	actor := domain.Actor{User: *u}
	p, err := s.profiles.GetByUserID(ctx, s.pool, u.ID)
	if err == nil {
		actor.Profil = p
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return &actor, nil
}

func (s *Service) GetProfileBySlug(ctx context.Context, slug string) (*domain.Profil, error) {
	p, err := s.profiles.GetBySlug(ctx, s.pool, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Profil introuvable.")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f domain.ListFilters, limit, offset int) ([]domain.Actor, int, error) {
	return s.users.List(ctx, s.pool, f, limit, offset)
}

// UpdateProfileInput holds the editable profile fields. Nil pointers leave the
// stored value untouched.
type UpdateProfileInput struct {
	NomComplet  *string
	Matricule   *string
	TitreID     *uuid.UUID
	Travailleur *bool
	AnneeSortie *uuid.UUID
	Adresse     *string
	Telephone   *string
	Ville       *string
	Pays        *string
	DomaineID   *uuid.UUID
	Bio         *string
}

// UpdateProfile edits a profile. Only the owner or a site admin may do so;
// a refused attempt leaves an access-denied trace.
func (s *Service) UpdateProfile(ctx context.Context, actor *domain.Actor, profilID uuid.UUID, in UpdateProfileInput) (*domain.Profil, error) {
	var updated *domain.Profil
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		p, err := s.profiles.GetByID(ctx, tx, profilID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Profil introuvable.")
			}
			return err
		}
		if err := s.requireOwnerOrAdmin(ctx, actor, p.UserID, entityProfil, p.ID); err != nil {
			return err
		}

		old := profilSnapshot(p)
		applyProfileUpdate(p, in)
		if !p.StatutGlobal.Valid() {
			return apperr.BadRequest("Statut invalide.")
		}

		updated, err = s.profiles.Update(ctx, tx, p)
		if err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityProfil,
			EntityID:   p.ID,
			OldValues:  old,
			NewValues:  profilSnapshot(updated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyProfileUpdate(p *domain.Profil, in UpdateProfileInput) {
	if in.NomComplet != nil {
		p.NomComplet = strings.TrimSpace(*in.NomComplet)
	}
	if in.Matricule != nil {
		p.Matricule = in.Matricule
	}
	if in.TitreID != nil {
		p.TitreID = in.TitreID
	}
	if in.Travailleur != nil {
		p.Travailleur = *in.Travailleur
	}
	if in.AnneeSortie != nil {
		p.AnneeSortieID = in.AnneeSortie
	}
	if in.Adresse != nil {
		p.Adresse = in.Adresse
	}
	if in.Telephone != nil {
		p.Telephone = in.Telephone
	}
	if in.Ville != nil {
		p.Ville = in.Ville
	}
	if in.Pays != nil {
		p.Pays = in.Pays
	}
	if in.DomaineID != nil {
		p.DomaineID = in.DomaineID
	}
	if in.Bio != nil {
		p.Bio = in.Bio
	}
}

// UpdatePhoto stores a new profile photo and drops the previous file.
func (s *Service) UpdatePhoto(ctx context.Context, actor *domain.Actor, profilID uuid.UUID, fh *multipart.FileHeader) (*domain.Profil, error) {
	p, err := s.profiles.GetByID(ctx, s.pool, profilID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Profil introuvable.")
		}
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, actor, p.UserID, entityProfil, p.ID); err != nil {
		return nil, err
	}

	rel, err := s.media.SaveImage(fh, "photos", photoMaxEdge)
	if err != nil {
		return nil, err
	}
	previous := p.PhotoProfil

	err = postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.profiles.UpdatePhoto(ctx, tx, p.ID, rel); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityProfil,
			EntityID:   p.ID,
			OldValues:  map[string]any{"photo_profil": previous},
			NewValues:  map[string]any{"photo_profil": rel},
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
	p.PhotoProfil = &rel
	return p, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, actor *domain.Actor, current, next string) error {
	if !auth.CheckPassword(actor.User.PasswordHash, current) {
		return apperr.BadRequest("Mot de passe actuel incorrect.")
	}
	if len(next) < 8 {
		return apperr.BadRequest("Le mot de passe doit contenir au moins 8 caractères.")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.users.UpdatePassword(ctx, tx, actor.User.ID, hash); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityUser,
			EntityID:   actor.User.ID,
			NewValues:  map[string]any{"password_changed": true},
		})
		return err
	})
}

// SetActive toggles an account. Site admins only.
func (s *Service) SetActive(ctx context.Context, actor *domain.Actor, userID uuid.UUID, active bool) error {
	if !actor.IsSiteAdmin() {
		return s.denied(ctx, actor, entityUser, userID)
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.users.SetActive(ctx, tx, userID, active); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Utilisateur introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityUser,
			EntityID:   userID,
			NewValues:  map[string]any{"est_actif": active},
		})
		return err
	})
}

// UpdateRole changes a user's system role. Super admins only.
func (s *Service) UpdateRole(ctx context.Context, actor *domain.Actor, userID uuid.UUID, role domain.RoleSysteme) error {
	if actor.User.RoleSysteme != domain.RoleSuperAdmin {
		return s.denied(ctx, actor, entityUser, userID)
	}
	if !role.Valid() {
		return apperr.BadRequest("Rôle invalide.")
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.users.UpdateRole(ctx, tx, userID, role); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Utilisateur introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityUser,
			EntityID:   userID,
			NewValues:  map[string]any{"role_systeme": string(role)},
		})
		return err
	})
}

// SoftDelete retires an account and its profile in one transaction. Rows stay
// in place for the audit trail. Repeating the call re-stamps the deletion time.
func (s *Service) SoftDelete(ctx context.Context, actor *domain.Actor, userID uuid.UUID) error {
	if actor.User.ID != userID && !actor.IsSiteAdmin() {
		return s.denied(ctx, actor, entityUser, userID)
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		u, err := s.users.GetByIDAny(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Utilisateur introuvable.")
			}
			return err
		}
		if err := s.users.SoftDelete(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.profiles.SoftDeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityUser,
			EntityID:   userID,
			OldValues:  userSnapshot(u),
		})
		return err
	})
}

// Restore reverses a soft delete. Site admins only.
func (s *Service) Restore(ctx context.Context, actor *domain.Actor, userID uuid.UUID) error {
	if !actor.IsSiteAdmin() {
		return s.denied(ctx, actor, entityUser, userID)
	}
	return postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.users.Restore(ctx, tx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Utilisateur introuvable.")
			}
			return err
		}
		if err := s.profiles.RestoreByUserID(ctx, tx, userID); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityUser,
			EntityID:   userID,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
}

// TouchLastLogin stamps a successful authentication.
func (s *Service) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.users.UpdateLastLogin(ctx, s.pool, userID, at)
}

func (s *Service) requireOwnerOrAdmin(ctx context.Context, actor *domain.Actor, ownerID uuid.UUID, entityType string, entityID uuid.UUID) error {
	if actor.User.ID == ownerID || actor.IsSiteAdmin() {
		return nil
	}
	return s.denied(ctx, actor, entityType, entityID)
}

// denied records the refused attempt outside any transaction so the trace
// survives, then returns the forbidden error.
func (s *Service) denied(ctx context.Context, actor *domain.Actor, entityType string, entityID uuid.UUID) error {
	_, _ = s.audit.Record(ctx, s.pool, audit.Entry{
		ActorID:    &actor.User.ID,
		Action:     audit.ActionAccessDenied,
		EntityType: entityType,
		EntityID:   entityID,
	})
	return apperr.Forbidden("Vous n'avez pas la permission d'effectuer cette action.")
}

func userSnapshot(u *domain.User) map[string]any {
	return map[string]any{
		"email":        u.Email,
		"role_systeme": string(u.RoleSysteme),
		"est_actif":    u.EstActif,
	}
}

func profilSnapshot(p *domain.Profil) map[string]any {
	return map[string]any{
		"nom_complet":   p.NomComplet,
		"matricule":     p.Matricule,
		"statut_global": string(p.StatutGlobal),
		"travailleur":   p.Travailleur,
		"ville":         p.Ville,
		"pays":          p.Pays,
		"slug":          p.Slug,
	}
}
