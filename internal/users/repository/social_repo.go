package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const socialColumns = `id, profil_id, reseau_id, url, est_actif, created_at, updated_at, deleted, deleted_at`

// SocialLinkRepository provides persistence operations for profile social links.
type SocialLinkRepository struct{}

func NewSocialLinkRepository() *SocialLinkRepository {
	return &SocialLinkRepository{}
}

func scanSocialLink(row pgx.Row) (*domain.LienReseauSocial, error) {
	var l domain.LienReseauSocial
	err := row.Scan(&l.ID, &l.ProfilID, &l.ReseauID, &l.URL, &l.EstActif,
		&l.CreatedAt, &l.UpdatedAt, &l.Deleted, &l.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Upsert inserts or refreshes the link for (profil, reseau). A profile keeps
// at most one link per network.
func (r *SocialLinkRepository) Upsert(ctx context.Context, q postgres.Querier, l *domain.LienReseauSocial) (*domain.LienReseauSocial, error) {
	const q1 = `
INSERT INTO lien_reseau_social_profil (profil_id, reseau_id, url, est_actif)
VALUES ($1, $2, $3, $4)
ON CONFLICT (profil_id, reseau_id)
DO UPDATE SET url = EXCLUDED.url, est_actif = EXCLUDED.est_actif,
              deleted = FALSE, deleted_at = NULL, updated_at = now()
RETURNING ` + socialColumns + `;`
	return scanSocialLink(q.QueryRow(ctx, q1, l.ProfilID, l.ReseauID, l.URL, l.EstActif))
}

func (r *SocialLinkRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.LienReseauSocial, error) {
	const q1 = `SELECT ` + socialColumns + ` FROM lien_reseau_social_profil WHERE id = $1 AND deleted = FALSE;`
	return scanSocialLink(q.QueryRow(ctx, q1, id))
}

func (r *SocialLinkRepository) ListByProfil(ctx context.Context, q postgres.Querier, profilID uuid.UUID) ([]domain.LienReseauSocial, error) {
	const q1 = `
SELECT ` + socialColumns + `
FROM lien_reseau_social_profil
WHERE profil_id = $1 AND deleted = FALSE AND est_actif = TRUE
ORDER BY created_at;`
	rows, err := q.Query(ctx, q1, profilID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LienReseauSocial
	for rows.Next() {
		var l domain.LienReseauSocial
		if err := rows.Scan(&l.ID, &l.ProfilID, &l.ReseauID, &l.URL, &l.EstActif,
			&l.CreatedAt, &l.UpdatedAt, &l.Deleted, &l.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ReseauBaseURL returns the base URL of an active social network reference.
func (r *SocialLinkRepository) ReseauBaseURL(ctx context.Context, q postgres.Querier, reseauID uuid.UUID) (string, error) {
	const q1 = `SELECT COALESCE(url_base, '') FROM reseau_social WHERE id = $1 AND est_actif = TRUE AND deleted = FALSE;`
	var base string
	if err := q.QueryRow(ctx, q1, reseauID).Scan(&base); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return base, nil
}

func (r *SocialLinkRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE lien_reseau_social_profil SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
