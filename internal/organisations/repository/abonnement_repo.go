package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const abonnementColumns = `id, profil_id, organisation_id, est_actif, created_at, updated_at, deleted, deleted_at`

// AbonnementRepository provides persistence operations for follower
// subscriptions.
type AbonnementRepository struct{}

func NewAbonnementRepository() *AbonnementRepository {
	return &AbonnementRepository{}
}

func scanAbonnement(row pgx.Row) (*domain.Abonnement, error) {
	var a domain.Abonnement
	err := row.Scan(&a.ID, &a.ProfilID, &a.OrganisationID, &a.EstActif,
		&a.CreatedAt, &a.UpdatedAt, &a.Deleted, &a.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Follow creates or revives the subscription for (profil, organisation).
func (r *AbonnementRepository) Follow(ctx context.Context, q postgres.Querier, profilID, orgID uuid.UUID) (*domain.Abonnement, error) {
	const q1 = `
INSERT INTO abonnement_organisation (profil_id, organisation_id, est_actif)
VALUES ($1, $2, TRUE)
ON CONFLICT (profil_id, organisation_id)
DO UPDATE SET est_actif = TRUE, deleted = FALSE, deleted_at = NULL, updated_at = now()
RETURNING ` + abonnementColumns + `;`
	return scanAbonnement(q.QueryRow(ctx, q1, profilID, orgID))
}

// Unfollow deactivates the subscription. Missing rows are reported so the
// caller can 404.
func (r *AbonnementRepository) Unfollow(ctx context.Context, q postgres.Querier, profilID, orgID uuid.UUID) error {
	const q1 = `
UPDATE abonnement_organisation SET est_actif = FALSE, updated_at = now()
WHERE profil_id = $1 AND organisation_id = $2 AND est_actif = TRUE AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, profilID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AbonnementRepository) ListByProfil(ctx context.Context, q postgres.Querier, profilID uuid.UUID) ([]domain.Abonnement, error) {
	const q1 = `
SELECT ` + abonnementColumns + `
FROM abonnement_organisation
WHERE profil_id = $1 AND est_actif = TRUE AND deleted = FALSE
ORDER BY created_at DESC;`
	return r.list(ctx, q, q1, profilID)
}

func (r *AbonnementRepository) ListByOrganisation(ctx context.Context, q postgres.Querier, orgID uuid.UUID) ([]domain.Abonnement, error) {
	const q1 = `
SELECT ` + abonnementColumns + `
FROM abonnement_organisation
WHERE organisation_id = $1 AND est_actif = TRUE AND deleted = FALSE
ORDER BY created_at DESC;`
	return r.list(ctx, q, q1, orgID)
}

func (r *AbonnementRepository) list(ctx context.Context, q postgres.Querier, query string, arg any) ([]domain.Abonnement, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Abonnement
	for rows.Next() {
		var a domain.Abonnement
		if err := rows.Scan(&a.ID, &a.ProfilID, &a.OrganisationID, &a.EstActif,
			&a.CreatedAt, &a.UpdatedAt, &a.Deleted, &a.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AbonnementRepository) CountFollowers(ctx context.Context, q postgres.Querier, orgID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
SELECT count(*) FROM abonnement_organisation
WHERE organisation_id = $1 AND est_actif = TRUE AND deleted = FALSE;`, orgID).Scan(&n)
	return n, err
}

// DeactivateByOrganisation ends every subscription of an organisation, used
// by the soft-delete cascade.
func (r *AbonnementRepository) DeactivateByOrganisation(ctx context.Context, q postgres.Querier, orgID uuid.UUID) (int, error) {
	const q1 = `UPDATE abonnement_organisation SET est_actif = FALSE, updated_at = now() WHERE organisation_id = $1 AND est_actif = TRUE;`
	tag, err := q.Exec(ctx, q1, orgID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
