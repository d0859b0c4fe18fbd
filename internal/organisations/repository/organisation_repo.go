package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/slug"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const organisationColumns = `id, nom, slug, type, secteur_id, adresse, ville, pays, email, telephone,
logo, description, date_creation, statut, created_at, updated_at, deleted, deleted_at`

// OrganisationRepository provides persistence operations for organisation pages.
type OrganisationRepository struct{}

func NewOrganisationRepository() *OrganisationRepository {
	return &OrganisationRepository{}
}

func scanOrganisation(row pgx.Row) (*domain.Organisation, error) {
	var o domain.Organisation
	var typ, statut string
	err := row.Scan(&o.ID, &o.Nom, &o.Slug, &typ, &o.SecteurID, &o.Adresse, &o.Ville, &o.Pays,
		&o.Email, &o.Telephone, &o.Logo, &o.Description, &o.DateCreation, &statut,
		&o.CreatedAt, &o.UpdatedAt, &o.Deleted, &o.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Type = domain.TypeOrganisation(typ)
	o.Statut = domain.StatutOrganisation(statut)
	return &o, nil
}

func (r *OrganisationRepository) Create(ctx context.Context, q postgres.Querier, o *domain.Organisation) (*domain.Organisation, error) {
	const q1 = `
INSERT INTO organisation (nom, slug, type, secteur_id, adresse, ville, pays, email, telephone,
                          description, date_creation, statut)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + organisationColumns + `;`

	for attempt := 0; attempt < 3; attempt++ {
		s, err := slug.New(o.Nom)
		if err != nil {
			return nil, err
		}
		created, err := scanOrganisation(q.QueryRow(ctx, q1,
			o.Nom, s, string(o.Type), o.SecteurID, o.Adresse, o.Ville, o.Pays, o.Email,
			o.Telephone, o.Description, o.DateCreation, string(o.Statut)))
		if err != nil {
			if postgres.IsUniqueViolation(err, "organisation_slug_key") {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errors.New("organisation: could not generate a unique slug")
}

func (r *OrganisationRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Organisation, error) {
	const q1 = `SELECT ` + organisationColumns + ` FROM organisation WHERE id = $1 AND deleted = FALSE;`
	return scanOrganisation(q.QueryRow(ctx, q1, id))
}

func (r *OrganisationRepository) GetByIDAny(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Organisation, error) {
	const q1 = `SELECT ` + organisationColumns + ` FROM organisation WHERE id = $1;`
	return scanOrganisation(q.QueryRow(ctx, q1, id))
}

func (r *OrganisationRepository) GetBySlug(ctx context.Context, q postgres.Querier, s string) (*domain.Organisation, error) {
	const q1 = `SELECT ` + organisationColumns + ` FROM organisation WHERE slug = $1 AND deleted = FALSE;`
	return scanOrganisation(q.QueryRow(ctx, q1, s))
}

func (r *OrganisationRepository) Update(ctx context.Context, q postgres.Querier, o *domain.Organisation) (*domain.Organisation, error) {
	const q1 = `
UPDATE organisation
SET nom = $2, type = $3, secteur_id = $4, adresse = $5, ville = $6, pays = $7,
    email = $8, telephone = $9, description = $10, date_creation = $11, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + organisationColumns + `;`
	return scanOrganisation(q.QueryRow(ctx, q1,
		o.ID, o.Nom, string(o.Type), o.SecteurID, o.Adresse, o.Ville, o.Pays,
		o.Email, o.Telephone, o.Description, o.DateCreation))
}

func (r *OrganisationRepository) UpdateStatut(ctx context.Context, q postgres.Querier, id uuid.UUID, s domain.StatutOrganisation) error {
	const q1 = `UPDATE organisation SET statut = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, string(s))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrganisationRepository) UpdateLogo(ctx context.Context, q postgres.Querier, id uuid.UUID, path string) error {
	const q1 = `UPDATE organisation SET logo = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrganisationRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE organisation SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE id = $1;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrganisationRepository) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE organisation SET deleted = FALSE, deleted_at = NULL, updated_at = now() WHERE id = $1;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrganisationRepository) List(ctx context.Context, q postgres.Querier, f domain.ListFilters, limit, offset int) ([]domain.Organisation, int, error) {
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
		where += fmt.Sprintf(` AND type = $%d`, n)
		args = append(args, string(f.Type))
	}
	if f.SecteurID != nil {
		n++
		where += fmt.Sprintf(` AND secteur_id = $%d`, n)
		args = append(args, *f.SecteurID)
	}
	if f.Ville != "" {
		n++
		where += fmt.Sprintf(` AND ville ILIKE $%d`, n)
		args = append(args, f.Ville)
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM organisation `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+organisationColumns+` FROM organisation %s ORDER BY nom LIMIT $%d OFFSET $%d;`,
		where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Organisation, 0, limit)
	for rows.Next() {
		var o domain.Organisation
		var typ, statut string
		if err := rows.Scan(&o.ID, &o.Nom, &o.Slug, &typ, &o.SecteurID, &o.Adresse, &o.Ville, &o.Pays,
			&o.Email, &o.Telephone, &o.Logo, &o.Description, &o.DateCreation, &statut,
			&o.CreatedAt, &o.UpdatedAt, &o.Deleted, &o.DeletedAt); err != nil {
			return nil, 0, err
		}
		o.Type = domain.TypeOrganisation(typ)
		o.Statut = domain.StatutOrganisation(statut)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
