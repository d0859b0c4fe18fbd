package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/moderation"
	"github.com/enspm-hub/hub-backend/internal/slug"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const groupeColumns = `id, createur_profil_id, nom, slug, photo, description, type_groupe, max_membres,
statut, est_valide, validateur_id, date_validation, commentaire_validation,
created_at, updated_at, deleted, deleted_at`

// GroupeRepository provides persistence operations for community groups.
type GroupeRepository struct{}

func NewGroupeRepository() *GroupeRepository {
	return &GroupeRepository{}
}

func scanGroupe(row pgx.Row) (*domain.Groupe, error) {
	var g domain.Groupe
	var typ, statut string
	err := row.Scan(&g.ID, &g.CreateurProfilID, &g.Nom, &g.Slug, &g.Photo, &g.Description,
		&typ, &g.MaxMembres, &statut, &g.EstValide, &g.ValidateurID, &g.DateValidation,
		&g.CommentaireValidation, &g.CreatedAt, &g.UpdatedAt, &g.Deleted, &g.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	g.Type = domain.TypeGroupe(typ)
	g.Statut = moderation.Status(statut)
	return &g, nil
}

func (r *GroupeRepository) Create(ctx context.Context, q postgres.Querier, g *domain.Groupe) (*domain.Groupe, error) {
	const q1 = `
INSERT INTO groupe (createur_profil_id, nom, slug, description, type_groupe, max_membres, statut, est_valide)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + groupeColumns + `;`

	for attempt := 0; attempt < 3; attempt++ {
		s, err := slug.New(g.Nom)
		if err != nil {
			return nil, err
		}
		created, err := scanGroupe(q.QueryRow(ctx, q1,
			g.CreateurProfilID, g.Nom, s, g.Description, string(g.Type), g.MaxMembres,
			string(g.Statut), g.EstValide))
		if err != nil {
			if postgres.IsUniqueViolation(err, "groupe_slug_key") {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errors.New("groupe: could not generate a unique slug")
}

func (r *GroupeRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Groupe, error) {
	const q1 = `SELECT ` + groupeColumns + ` FROM groupe WHERE id = $1 AND deleted = FALSE;`
	return scanGroupe(q.QueryRow(ctx, q1, id))
}

func (r *GroupeRepository) GetByIDAny(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Groupe, error) {
	const q1 = `SELECT ` + groupeColumns + ` FROM groupe WHERE id = $1;`
	return scanGroupe(q.QueryRow(ctx, q1, id))
}

func (r *GroupeRepository) GetBySlug(ctx context.Context, q postgres.Querier, s string) (*domain.Groupe, error) {
	const q1 = `SELECT ` + groupeColumns + ` FROM groupe WHERE slug = $1 AND deleted = FALSE;`
	return scanGroupe(q.QueryRow(ctx, q1, s))
}

func (r *GroupeRepository) Update(ctx context.Context, q postgres.Querier, g *domain.Groupe) (*domain.Groupe, error) {
	const q1 = `
UPDATE groupe
SET nom = $2, description = $3, type_groupe = $4, max_membres = $5, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + groupeColumns + `;`
	return scanGroupe(q.QueryRow(ctx, q1, g.ID, g.Nom, g.Description, string(g.Type), g.MaxMembres))
}

// UpdateReview persists the validation bookkeeping after an admin decision.
func (r *GroupeRepository) UpdateReview(ctx context.Context, q postgres.Querier, g *domain.Groupe) error {
	const q1 = `
UPDATE groupe
SET statut = $2, est_valide = $3, validateur_id = $4, date_validation = $5,
    commentaire_validation = $6, updated_at = now()
WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, g.ID, string(g.Statut), g.EstValide,
		g.ValidateurID, g.DateValidation, g.CommentaireValidation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupeRepository) UpdatePhoto(ctx context.Context, q postgres.Querier, id uuid.UUID, path string) error {
	const q1 = `UPDATE groupe SET photo = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupeRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE groupe SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE id = $1;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupeRepository) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE groupe SET deleted = FALSE, deleted_at = NULL, updated_at = now() WHERE id = $1;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupeRepository) List(ctx context.Context, q postgres.Querier, f domain.ListFilters, limit, offset int) ([]domain.Groupe, int, error) {
	where := `WHERE deleted = FALSE`
	args := []any{}
	n := 0

	if f.Statut != "" {
		n++
		where += fmt.Sprintf(` AND statut = $%d`, n)
		args = append(args, string(f.Statut))
	}
	if f.Search != "" {
		n++
		where += fmt.Sprintf(` AND (nom ILIKE $%d OR description ILIKE $%d)`, n, n)
		args = append(args, "%"+f.Search+"%")
	}
	if f.Type != "" {
		n++
		where += fmt.Sprintf(` AND type_groupe = $%d`, n)
		args = append(args, string(f.Type))
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM groupe `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+groupeColumns+` FROM groupe %s ORDER BY nom LIMIT $%d OFFSET $%d;`,
		where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Groupe, 0, limit)
	for rows.Next() {
		var g domain.Groupe
		var typ, statut string
		if err := rows.Scan(&g.ID, &g.CreateurProfilID, &g.Nom, &g.Slug, &g.Photo, &g.Description,
			&typ, &g.MaxMembres, &statut, &g.EstValide, &g.ValidateurID, &g.DateValidation,
			&g.CommentaireValidation, &g.CreatedAt, &g.UpdatedAt, &g.Deleted, &g.DeletedAt); err != nil {
			return nil, 0, err
		}
		g.Type = domain.TypeGroupe(typ)
		g.Statut = moderation.Status(statut)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
