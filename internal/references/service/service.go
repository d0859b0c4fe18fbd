// Package service owns the reference-data use cases: cached public reads
// and audited admin CRUD with delete-on-write cache invalidation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/references/cache"
	"github.com/enspm-hub/hub-backend/internal/references/domain"
	"github.com/enspm-hub/hub-backend/internal/references/repository"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
)

type Service struct {
	pool  *pgxpool.Pool
	repo  *repository.Repository
	cache *cache.Cache
	audit *audit.Recorder
	now   func() time.Time
}

func NewService(pool *pgxpool.Pool, c *cache.Cache) *Service {
	return &Service{
		pool:  pool,
		repo:  repository.NewRepository(),
		cache: c,
		audit: audit.NewRecorder(),
		now:   time.Now,
	}
}

// Collections exposes the underlying repository for the generic admin
// endpoints and the seed command.
func (s *Service) Collections() *repository.Repository { return s.repo }

func (s *Service) requireSiteAdmin(ctx context.Context, actor *usersdomain.Actor, entityType string) error {
	if actor.IsSiteAdmin() {
		return nil
	}
	_, _ = s.audit.Record(ctx, s.pool, audit.Entry{
		ActorID:    &actor.User.ID,
		Action:     audit.ActionAccessDenied,
		EntityType: entityType,
		EntityID:   uuid.Nil,
	})
	return apperr.Forbidden("Vous n'avez pas la permission d'effectuer cette action.")
}

// refPtr ties a reference type to its pointer so the generic helpers can
// read the row id off a freshly scanned value.
type refPtr[T any] interface {
	*T
	RefID() uuid.UUID
}

func refSnapshot(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// CreateRef inserts one reference row, audits it and drops the cache keys.
func CreateRef[T any, P refPtr[T]](ctx context.Context, s *Service, actor *usersdomain.Actor, col *repository.Collection[T], entityType string, keys []string, v *T) (*T, error) {
	if err := s.requireSiteAdmin(ctx, actor, entityType); err != nil {
		return nil, err
	}

	var created *T
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		created, err = col.Create(ctx, tx, v)
		if err != nil {
			if col.IsConflict(err) {
				return apperr.Conflict("Cette valeur de référence existe déjà.")
			}
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionCreate,
			EntityType: entityType,
			EntityID:   P(created).RefID(),
			NewValues:  refSnapshot(created),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, keys...)
	return created, nil
}

// UpdateRef rewrites one reference row, audits old and new snapshots and
// drops the cache keys.
func UpdateRef[T any, P refPtr[T]](ctx context.Context, s *Service, actor *usersdomain.Actor, col *repository.Collection[T], entityType string, keys []string, id uuid.UUID, v *T) (*T, error) {
	if err := s.requireSiteAdmin(ctx, actor, entityType); err != nil {
		return nil, err
	}

	var updated *T
	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		old, err := col.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Référence introuvable.")
			}
			return err
		}
		updated, err = col.Update(ctx, tx, id, v)
		if err != nil {
			if col.IsConflict(err) {
				return apperr.Conflict("Cette valeur de référence existe déjà.")
			}
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Référence introuvable.")
			}
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityType,
			EntityID:   id,
			OldValues:  refSnapshot(old),
			NewValues:  refSnapshot(updated),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, keys...)
	return updated, nil
}

// DeleteRef soft-deletes one reference row and drops the cache keys.
func DeleteRef[T any, P refPtr[T]](ctx context.Context, s *Service, actor *usersdomain.Actor, col *repository.Collection[T], entityType string, keys []string, id uuid.UUID) error {
	if err := s.requireSiteAdmin(ctx, actor, entityType); err != nil {
		return err
	}

	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		old, err := col.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Référence introuvable.")
			}
			return err
		}
		if err := col.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionDelete,
			EntityType: entityType,
			EntityID:   id,
			OldValues:  refSnapshot(old),
		})
		return err
	})
	if err != nil {
		return err
	}
	s.cache.Delete(ctx, keys...)
	return nil
}

// RestoreRef reverses a soft delete. The row comes back inactive, an admin
// re-enables it explicitly.
func RestoreRef[T any, P refPtr[T]](ctx context.Context, s *Service, actor *usersdomain.Actor, col *repository.Collection[T], entityType string, keys []string, id uuid.UUID) error {
	if err := s.requireSiteAdmin(ctx, actor, entityType); err != nil {
		return err
	}

	err := postgres.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := col.Restore(ctx, tx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperr.NotFound("Référence introuvable.")
			}
			return err
		}
		_, err := s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor.User.ID,
			Action:     audit.ActionUpdate,
			EntityType: entityType,
			EntityID:   id,
			NewValues:  map[string]any{"restored": true},
		})
		return err
	})
	if err != nil {
		return err
	}
	s.cache.Delete(ctx, keys...)
	return nil
}

// ListRef is the uncached admin view of one collection, inactive rows
// included.
func ListRef[T any](ctx context.Context, s *Service, actor *usersdomain.Actor, col *repository.Collection[T], entityType string) ([]T, error) {
	if err := s.requireSiteAdmin(ctx, actor, entityType); err != nil {
		return nil, err
	}
	return col.List(ctx, s.pool, false)
}

// GetRef returns one row by id, public visibility.
func GetRef[T any](ctx context.Context, s *Service, col *repository.Collection[T], id uuid.UUID) (*T, error) {
	v, err := col.GetByID(ctx, s.pool, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Référence introuvable.")
		}
		return nil, err
	}
	return v, nil
}

func listCached[T any](ctx context.Context, s *Service, key string, load func() ([]T, error)) ([]T, error) {
	var out []T
	if s.cache.GetJSON(ctx, key, &out) {
		return out, nil
	}
	out, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, out)
	return out, nil
}

// ListAnnees returns the active graduating classes, newest first.
func (s *Service) ListAnnees(ctx context.Context) ([]domain.AnneePromotion, error) {
	return listCached(ctx, s, cache.KeyAnnees, func() ([]domain.AnneePromotion, error) {
		return s.repo.Annees.List(ctx, s.pool, true)
	})
}

func (s *Service) ListDomaines(ctx context.Context) ([]domain.Domaine, error) {
	return listCached(ctx, s, cache.KeyDomaines, func() ([]domain.Domaine, error) {
		return s.repo.Domaines.List(ctx, s.pool, true)
	})
}

// ListFilieres returns the active tracks, optionally narrowed to one domain.
// Only the unfiltered listing is cached.
func (s *Service) ListFilieres(ctx context.Context, domaineID *uuid.UUID) ([]domain.Filiere, error) {
	if domaineID != nil {
		return s.repo.FilieresByDomaine(ctx, s.pool, *domaineID)
	}
	return listCached(ctx, s, cache.KeyFilieres, func() ([]domain.Filiere, error) {
		return s.repo.Filieres.List(ctx, s.pool, true)
	})
}

// ListSecteurs returns the active sectors, parents only when asked.
func (s *Service) ListSecteurs(ctx context.Context, parentsOnly bool) ([]domain.SecteurActivite, error) {
	if parentsOnly {
		return listCached(ctx, s, cache.KeySecteursParents, func() ([]domain.SecteurActivite, error) {
			return s.repo.SecteursParents(ctx, s.pool)
		})
	}
	return listCached(ctx, s, cache.KeySecteurs, func() ([]domain.SecteurActivite, error) {
		return s.repo.Secteurs.List(ctx, s.pool, true)
	})
}

func (s *Service) ListPostes(ctx context.Context) ([]domain.Poste, error) {
	return listCached(ctx, s, cache.KeyPostes, func() ([]domain.Poste, error) {
		return s.repo.Postes.List(ctx, s.pool, true)
	})
}

func (s *Service) ListDevises(ctx context.Context) ([]domain.Devise, error) {
	return listCached(ctx, s, cache.KeyDevises, func() ([]domain.Devise, error) {
		return s.repo.Devises.List(ctx, s.pool, true)
	})
}

// GetDeviseByCode looks up a currency by ISO code, uncached.
func (s *Service) GetDeviseByCode(ctx context.Context, code string) (*domain.Devise, error) {
	d, err := s.repo.DeviseByCode(ctx, s.pool, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.NotFound("Devise introuvable.")
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) ListTitres(ctx context.Context) ([]domain.TitreHonorifique, error) {
	return listCached(ctx, s, cache.KeyTitres, func() ([]domain.TitreHonorifique, error) {
		return s.repo.Titres.List(ctx, s.pool, true)
	})
}

func (s *Service) ListReseaux(ctx context.Context) ([]domain.ReseauSocial, error) {
	return listCached(ctx, s, cache.KeyReseaux, func() ([]domain.ReseauSocial, error) {
		return s.repo.Reseaux.List(ctx, s.pool, true)
	})
}
