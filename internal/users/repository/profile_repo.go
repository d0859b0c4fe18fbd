package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/slug"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const profilColumns = `id, user_id, nom_complet, matricule, titre_id, statut_global, travailleur,
annee_sortie_id, adresse, telephone, ville, pays, photo_profil, domaine_id, bio, slug,
created_at, updated_at, deleted, deleted_at`

func profilColumnsPrefixed(alias string) string {
	cols := strings.Split(strings.ReplaceAll(profilColumns, "\n", " "), ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// ProfileRepository provides persistence operations for member profiles.
type ProfileRepository struct{}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

func scanProfil(row pgx.Row) (*domain.Profil, error) {
	var p domain.Profil
	var statut string
	err := row.Scan(&p.ID, &p.UserID, &p.NomComplet, &p.Matricule, &p.TitreID, &statut,
		&p.Travailleur, &p.AnneeSortieID, &p.Adresse, &p.Telephone, &p.Ville, &p.Pays,
		&p.PhotoProfil, &p.DomaineID, &p.Bio, &p.Slug,
		&p.CreatedAt, &p.UpdatedAt, &p.Deleted, &p.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.StatutGlobal = domain.StatutGlobal(statut)
	return &p, nil
}

// Create inserts a profile with a slug derived from the full name. On a slug
// collision it retries with a fresh random suffix a few times before giving up.
func (r *ProfileRepository) Create(ctx context.Context, q postgres.Querier, p *domain.Profil) (*domain.Profil, error) {
	const q1 = `
INSERT INTO profil (user_id, nom_complet, matricule, titre_id, statut_global, travailleur,
                    annee_sortie_id, adresse, telephone, ville, pays, domaine_id, bio, slug)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + profilColumns + `;`

	for attempt := 0; attempt < 3; attempt++ {
		s, err := slug.New(p.NomComplet)
		if err != nil {
			return nil, err
		}
		created, err := scanProfil(q.QueryRow(ctx, q1,
			p.UserID, p.NomComplet, p.Matricule, p.TitreID, string(p.StatutGlobal), p.Travailleur,
			p.AnneeSortieID, p.Adresse, p.Telephone, p.Ville, p.Pays, p.DomaineID, p.Bio, s))
		if err != nil {
			if postgres.IsUniqueViolation(err, "profil_slug_key") {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errors.New("profil: could not generate a unique slug")
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, q postgres.Querier, userID uuid.UUID) (*domain.Profil, error) {
	const q1 = `SELECT ` + profilColumns + ` FROM profil WHERE user_id = $1 AND deleted = FALSE;`
	return scanProfil(q.QueryRow(ctx, q1, userID))
}

func (r *ProfileRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Profil, error) {
	const q1 = `SELECT ` + profilColumns + ` FROM profil WHERE id = $1 AND deleted = FALSE;`
	return scanProfil(q.QueryRow(ctx, q1, id))
}

func (r *ProfileRepository) GetBySlug(ctx context.Context, q postgres.Querier, s string) (*domain.Profil, error) {
	const q1 = `SELECT ` + profilColumns + ` FROM profil WHERE slug = $1 AND deleted = FALSE;`
	return scanProfil(q.QueryRow(ctx, q1, s))
}

func (r *ProfileRepository) Update(ctx context.Context, q postgres.Querier, p *domain.Profil) (*domain.Profil, error) {
	const q1 = `
UPDATE profil
SET nom_complet = $2, matricule = $3, titre_id = $4, statut_global = $5, travailleur = $6,
    annee_sortie_id = $7, adresse = $8, telephone = $9, ville = $10, pays = $11,
    domaine_id = $12, bio = $13, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + profilColumns + `;`
	return scanProfil(q.QueryRow(ctx, q1,
		p.ID, p.NomComplet, p.Matricule, p.TitreID, string(p.StatutGlobal), p.Travailleur,
		p.AnneeSortieID, p.Adresse, p.Telephone, p.Ville, p.Pays, p.DomaineID, p.Bio))
}

func (r *ProfileRepository) UpdatePhoto(ctx context.Context, q postgres.Querier, id uuid.UUID, path string) error {
	const q1 = `UPDATE profil SET photo_profil = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDeleteByUserID retires the profile together with its owning account.
func (r *ProfileRepository) SoftDeleteByUserID(ctx context.Context, q postgres.Querier, userID uuid.UUID) error {
	const q1 = `UPDATE profil SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE user_id = $1;`
	_, err := q.Exec(ctx, q1, userID)
	return err
}

func (r *ProfileRepository) RestoreByUserID(ctx context.Context, q postgres.Querier, userID uuid.UUID) error {
	const q1 = `UPDATE profil SET deleted = FALSE, deleted_at = NULL, updated_at = now() WHERE user_id = $1;`
	_, err := q.Exec(ctx, q1, userID)
	return err
}
