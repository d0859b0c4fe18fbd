package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const experienceColumns = `id, profil_id, titre_poste, nom_entreprise, lieu, date_debut, date_fin,
est_poste_actuel, description, organisation_id, created_at, updated_at, deleted, deleted_at`

// ExperienceRepository provides persistence operations for work history entries.
type ExperienceRepository struct{}

func NewExperienceRepository() *ExperienceRepository {
	return &ExperienceRepository{}
}

func scanExperience(row pgx.Row) (*domain.Experience, error) {
	var e domain.Experience
	err := row.Scan(&e.ID, &e.ProfilID, &e.TitrePoste, &e.NomEntreprise, &e.Lieu,
		&e.DateDebut, &e.DateFin, &e.EstPosteActuel, &e.Description, &e.OrganisationID,
		&e.CreatedAt, &e.UpdatedAt, &e.Deleted, &e.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *ExperienceRepository) Create(ctx context.Context, q postgres.Querier, e *domain.Experience) (*domain.Experience, error) {
	const q1 = `
INSERT INTO experience_professionnelle (profil_id, titre_poste, nom_entreprise, lieu, date_debut,
                                        date_fin, est_poste_actuel, description, organisation_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + experienceColumns + `;`
	return scanExperience(q.QueryRow(ctx, q1,
		e.ProfilID, e.TitrePoste, e.NomEntreprise, e.Lieu, e.DateDebut,
		e.DateFin, e.EstPosteActuel, e.Description, e.OrganisationID))
}

func (r *ExperienceRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Experience, error) {
	const q1 = `SELECT ` + experienceColumns + ` FROM experience_professionnelle WHERE id = $1 AND deleted = FALSE;`
	return scanExperience(q.QueryRow(ctx, q1, id))
}

// GetByIDForUpdate locks the row for the duration of the surrounding
// transaction so concurrent edits serialize instead of clobbering each other.
func (r *ExperienceRepository) GetByIDForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Experience, error) {
	const q1 = `SELECT ` + experienceColumns + ` FROM experience_professionnelle WHERE id = $1 AND deleted = FALSE FOR UPDATE;`
	return scanExperience(q.QueryRow(ctx, q1, id))
}

func (r *ExperienceRepository) ListByProfil(ctx context.Context, q postgres.Querier, profilID uuid.UUID) ([]domain.Experience, error) {
	const q1 = `
SELECT ` + experienceColumns + `
FROM experience_professionnelle
WHERE profil_id = $1 AND deleted = FALSE
ORDER BY est_poste_actuel DESC, date_debut DESC;`
	rows, err := q.Query(ctx, q1, profilID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Experience
	for rows.Next() {
		var e domain.Experience
		if err := rows.Scan(&e.ID, &e.ProfilID, &e.TitrePoste, &e.NomEntreprise, &e.Lieu,
			&e.DateDebut, &e.DateFin, &e.EstPosteActuel, &e.Description, &e.OrganisationID,
			&e.CreatedAt, &e.UpdatedAt, &e.Deleted, &e.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExperienceRepository) Update(ctx context.Context, q postgres.Querier, e *domain.Experience) (*domain.Experience, error) {
	const q1 = `
UPDATE experience_professionnelle
SET titre_poste = $2, nom_entreprise = $3, lieu = $4, date_debut = $5, date_fin = $6,
    est_poste_actuel = $7, description = $8, organisation_id = $9, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + experienceColumns + `;`
	return scanExperience(q.QueryRow(ctx, q1,
		e.ID, e.TitrePoste, e.NomEntreprise, e.Lieu, e.DateDebut, e.DateFin,
		e.EstPosteActuel, e.Description, e.OrganisationID))
}

func (r *ExperienceRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE experience_professionnelle SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
