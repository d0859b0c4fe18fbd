package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const membreColumns = `id, profil_id, groupe_id, role_membre, date_adhesion, date_sortie, est_actif,
created_at, updated_at, deleted, deleted_at`

// MembreRepository provides persistence operations for group memberships.
type MembreRepository struct{}

func NewMembreRepository() *MembreRepository {
	return &MembreRepository{}
}

func scanMembre(row pgx.Row) (*domain.Membre, error) {
	var m domain.Membre
	var role string
	err := row.Scan(&m.ID, &m.ProfilID, &m.GroupeID, &role, &m.DateAdhesion, &m.DateSortie,
		&m.EstActif, &m.CreatedAt, &m.UpdatedAt, &m.Deleted, &m.DeletedAt)
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
// (profil_id, groupe_id) WHERE est_actif rejects a second active row.
func (r *MembreRepository) Create(ctx context.Context, q postgres.Querier, m *domain.Membre) (*domain.Membre, error) {
	const q1 = `
INSERT INTO membre_groupe (profil_id, groupe_id, role_membre, date_adhesion, est_actif)
VALUES ($1, $2, $3, now(), TRUE)
RETURNING ` + membreColumns + `;`
	return scanMembre(q.QueryRow(ctx, q1, m.ProfilID, m.GroupeID, string(m.Role)))
}

func (r *MembreRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Membre, error) {
	const q1 = `SELECT ` + membreColumns + ` FROM membre_groupe WHERE id = $1 AND deleted = FALSE;`
	return scanMembre(q.QueryRow(ctx, q1, id))
}

// GetActive returns the live membership for a (profil, groupe) pair.
func (r *MembreRepository) GetActive(ctx context.Context, q postgres.Querier, profilID, groupeID uuid.UUID) (*domain.Membre, error) {
	const q1 = `
SELECT ` + membreColumns + `
FROM membre_groupe
WHERE profil_id = $1 AND groupe_id = $2 AND est_actif = TRUE AND deleted = FALSE;`
	return scanMembre(q.QueryRow(ctx, q1, profilID, groupeID))
}

func (r *MembreRepository) ListByGroupe(ctx context.Context, q postgres.Querier, groupeID uuid.UUID) ([]domain.Membre, error) {
	const q1 = `
SELECT ` + membreColumns + `
FROM membre_groupe
WHERE groupe_id = $1 AND est_actif = TRUE AND deleted = FALSE
ORDER BY date_adhesion;`
	return r.list(ctx, q, q1, groupeID)
}

func (r *MembreRepository) ListByProfil(ctx context.Context, q postgres.Querier, profilID uuid.UUID) ([]domain.Membre, error) {
	const q1 = `
SELECT ` + membreColumns + `
FROM membre_groupe
WHERE profil_id = $1 AND est_actif = TRUE AND deleted = FALSE
ORDER BY date_adhesion;`
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
		if err := rows.Scan(&m.ID, &m.ProfilID, &m.GroupeID, &role, &m.DateAdhesion, &m.DateSortie,
			&m.EstActif, &m.CreatedAt, &m.UpdatedAt, &m.Deleted, &m.DeletedAt); err != nil {
			return nil, err
		}
		m.Role = domain.RoleMembre(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MembreRepository) UpdateRole(ctx context.Context, q postgres.Querier, id uuid.UUID, role domain.RoleMembre) (*domain.Membre, error) {
	const q1 = `
UPDATE membre_groupe
SET role_membre = $2, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + membreColumns + `;`
	return scanMembre(q.QueryRow(ctx, q1, id, string(role)))
}

// Deactivate ends a membership and stamps the departure date. History stays.
func (r *MembreRepository) Deactivate(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `
UPDATE membre_groupe
SET est_actif = FALSE, date_sortie = now(), updated_at = now()
WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeactivateByGroupe ends every active membership of a group, used when the
// group itself is soft-deleted.
func (r *MembreRepository) DeactivateByGroupe(ctx context.Context, q postgres.Querier, groupeID uuid.UUID) (int, error) {
	const q1 = `
UPDATE membre_groupe
SET est_actif = FALSE, date_sortie = now(), updated_at = now()
WHERE groupe_id = $1 AND est_actif = TRUE;`
	tag, err := q.Exec(ctx, q1, groupeID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountActive counts the live members of a group, for the capacity check.
func (r *MembreRepository) CountActive(ctx context.Context, q postgres.Querier, groupeID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
SELECT count(*) FROM membre_groupe
WHERE groupe_id = $1 AND est_actif = TRUE AND deleted = FALSE;`, groupeID).Scan(&n)
	return n, err
}

// CountActiveAdmins counts the remaining group admins.
func (r *MembreRepository) CountActiveAdmins(ctx context.Context, q postgres.Querier, groupeID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
SELECT count(*) FROM membre_groupe
WHERE groupe_id = $1 AND role_membre = $2 AND est_actif = TRUE AND deleted = FALSE;`,
		groupeID, string(domain.RoleAdmin)).Scan(&n)
	return n, err
}
