package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const membreColumns = `id, profil_id, organisation_id, role, poste_id, est_actif, date_joindre,
created_at, updated_at, deleted, deleted_at`

// MembreRepository provides persistence operations for page memberships.
type MembreRepository struct{}

func NewMembreRepository() *MembreRepository {
	return &MembreRepository{}
}

func scanMembre(row pgx.Row) (*domain.Membre, error) {
	var m domain.Membre
	var role string
	err := row.Scan(&m.ID, &m.ProfilID, &m.OrganisationID, &role, &m.PosteID, &m.EstActif,
		&m.DateJoindre, &m.CreatedAt, &m.UpdatedAt, &m.Deleted, &m.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.Role = domain.RoleMembre(role)
	return &m, nil
}

// Create inserts an active membership. The partial unique index on
// (profil_id, organisation_id) WHERE est_actif rejects a second active row.
func (r *MembreRepository) Create(ctx context.Context, q postgres.Querier, m *domain.Membre) (*domain.Membre, error) {
	const q1 = `
INSERT INTO membre_organisation (profil_id, organisation_id, role, poste_id, est_actif, date_joindre)
VALUES ($1, $2, $3, $4, TRUE, now())
RETURNING ` + membreColumns + `;`
	return scanMembre(q.QueryRow(ctx, q1, m.ProfilID, m.OrganisationID, string(m.Role), m.PosteID))
}

func (r *MembreRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Membre, error) {
	const q1 = `SELECT ` + membreColumns + ` FROM membre_organisation WHERE id = $1 AND deleted = FALSE;`
	return scanMembre(q.QueryRow(ctx, q1, id))
}

// GetActive returns the live membership for a (profil, organisation) pair.
func (r *MembreRepository) GetActive(ctx context.Context, q postgres.Querier, profilID, orgID uuid.UUID) (*domain.Membre, error) {
	const q1 = `
SELECT ` + membreColumns + `
FROM membre_organisation
WHERE profil_id = $1 AND organisation_id = $2 AND est_actif = TRUE AND deleted = FALSE;`
	return scanMembre(q.QueryRow(ctx, q1, profilID, orgID))
}

func (r *MembreRepository) ListByOrganisation(ctx context.Context, q postgres.Querier, orgID uuid.UUID) ([]domain.Membre, error) {
	const q1 = `
SELECT ` + membreColumns + `
FROM membre_organisation
WHERE organisation_id = $1 AND est_actif = TRUE AND deleted = FALSE
ORDER BY date_joindre;`
	return r.list(ctx, q, q1, orgID)
}

func (r *MembreRepository) ListByProfil(ctx context.Context, q postgres.Querier, profilID uuid.UUID) ([]domain.Membre, error) {
	const q1 = `
SELECT ` + membreColumns + `
FROM membre_organisation
WHERE profil_id = $1 AND est_actif = TRUE AND deleted = FALSE
ORDER BY date_joindre;`
	return r.list(ctx, q, q1, profilID)
}

func (r *MembreRepository) list(ctx context.Context, q postgres.Querier, query string, arg any) ([]domain.Membre, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membre
	for rows.Next() {
		var m domain.Membre
		var role string
		if err := rows.Scan(&m.ID, &m.ProfilID, &m.OrganisationID, &role, &m.PosteID, &m.EstActif,
			&m.DateJoindre, &m.CreatedAt, &m.UpdatedAt, &m.Deleted, &m.DeletedAt); err != nil {
			return nil, err
		}
		m.Role = domain.RoleMembre(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MembreRepository) Update(ctx context.Context, q postgres.Querier, m *domain.Membre) (*domain.Membre, error) {
	const q1 = `
UPDATE membre_organisation
SET role = $2, poste_id = $3, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + membreColumns + `;`
	return scanMembre(q.QueryRow(ctx, q1, m.ID, string(m.Role), m.PosteID))
}

// Deactivate ends a membership without touching its history.
func (r *MembreRepository) Deactivate(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE membre_organisation SET est_actif = FALSE, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeactivateByOrganisation ends every active membership of an organisation,
// used when the organisation itself is soft-deleted.
func (r *MembreRepository) DeactivateByOrganisation(ctx context.Context, q postgres.Querier, orgID uuid.UUID) (int, error) {
	const q1 = `UPDATE membre_organisation SET est_actif = FALSE, updated_at = now() WHERE organisation_id = $1 AND est_actif = TRUE;`
	tag, err := q.Exec(ctx, q1, orgID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountActiveAdmins counts the remaining page admins of an organisation.
func (r *MembreRepository) CountActiveAdmins(ctx context.Context, q postgres.Querier, orgID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
SELECT count(*) FROM membre_organisation
WHERE organisation_id = $1 AND role = $2 AND est_actif = TRUE AND deleted = FALSE;`,
		orgID, string(domain.RolePageAdmin)).Scan(&n)
	return n, err
}
