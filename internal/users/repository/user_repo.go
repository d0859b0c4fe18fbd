package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const userColumns = `id, email, password_hash, role_systeme, est_actif, last_login,
created_at, updated_at, deleted, deleted_at`

// UserRepository provides persistence operations for user accounts.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.EstActif, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt, &u.Deleted, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.RoleSysteme = domain.RoleSysteme(role)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, q postgres.Querier, email, passwordHash string, role domain.RoleSysteme) (*domain.User, error) {
	const q1 = `
INSERT INTO users (email, password_hash, role_systeme)
VALUES ($1, $2, $3)
RETURNING ` + userColumns + `;`
	return scanUser(q.QueryRow(ctx, q1, email, passwordHash, string(role)))
}

// GetByID returns an active (non-deleted) user.
func (r *UserRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.User, error) {
	const q1 = `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted = FALSE;`
	return scanUser(q.QueryRow(ctx, q1, id))
}

// GetByIDAny returns a user regardless of soft-delete state (admin/restore).
func (r *UserRepository) GetByIDAny(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.User, error) {
	const q1 = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(q.QueryRow(ctx, q1, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, q postgres.Querier, email string) (*domain.User, error) {
	const q1 = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1) AND deleted = FALSE;`
	return scanUser(q.QueryRow(ctx, q1, email))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, q postgres.Querier, id uuid.UUID, at time.Time) error {
	const q1 = `UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1;`
	_, err := q.Exec(ctx, q1, id, at)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, q postgres.Querier, id uuid.UUID, passwordHash string) error {
	const q1 = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, q postgres.Querier, id uuid.UUID, role domain.RoleSysteme) error {
	const q1 = `UPDATE users SET role_systeme = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, q postgres.Querier, id uuid.UUID, active bool) error {
	const q1 = `UPDATE users SET est_actif = $2, updated_at = now() WHERE id = $1 AND deleted = FALSE;`
	tag, err := q.Exec(ctx, q1, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marks the account deleted; the row stays for audit history.
func (r *UserRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE users SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE id = $1;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	const q1 = `UPDATE users SET deleted = FALSE, deleted_at = NULL, updated_at = now() WHERE id = $1;`
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the member directory: active accounts joined with their
// profile, filtered and paginated.
func (r *UserRepository) List(ctx context.Context, q postgres.Querier, f domain.ListFilters, limit, offset int) ([]domain.Actor, int, error) {
	where := `WHERE u.deleted = FALSE AND p.deleted = FALSE`
	args := []any{}
	n := 0

	if f.Search != "" {
		n++
		where += fmt.Sprintf(` AND (p.nom_complet ILIKE $%d OR u.email ILIKE $%d OR p.matricule ILIKE $%d)`, n, n, n)
		args = append(args, "%"+f.Search+"%")
	}
	if f.StatutGlobal != "" {
		n++
		where += fmt.Sprintf(` AND p.statut_global = $%d`, n)
		args = append(args, string(f.StatutGlobal))
	}
	if f.DomaineID != nil {
		n++
		where += fmt.Sprintf(` AND p.domaine_id = $%d`, n)
		args = append(args, *f.DomaineID)
	}
	if f.AnneeSortie != nil {
		n++
		where += fmt.Sprintf(` AND p.annee_sortie_id = $%d`, n)
		args = append(args, *f.AnneeSortie)
	}

	var total int
	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM users u JOIN profil p ON p.user_id = u.id `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT u.id, u.email, u.password_hash, u.role_systeme, u.est_actif, u.last_login,
       u.created_at, u.updated_at, u.deleted, u.deleted_at,
       `+profilColumnsPrefixed("p")+`
FROM users u
JOIN profil p ON p.user_id = u.id
%s
ORDER BY p.nom_complet
LIMIT $%d OFFSET $%d;`, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Actor, 0, limit)
	for rows.Next() {
		var (
			a      domain.Actor
			p      domain.Profil
			role   string
			statut string
		)
		if err := rows.Scan(
			&a.User.ID, &a.User.Email, &a.User.PasswordHash, &role, &a.User.EstActif, &a.User.LastLogin,
			&a.User.CreatedAt, &a.User.UpdatedAt, &a.User.Deleted, &a.User.DeletedAt,
			&p.ID, &p.UserID, &p.NomComplet, &p.Matricule, &p.TitreID, &statut, &p.Travailleur,
			&p.AnneeSortieID, &p.Adresse, &p.Telephone, &p.Ville, &p.Pays, &p.PhotoProfil,
			&p.DomaineID, &p.Bio, &p.Slug, &p.CreatedAt, &p.UpdatedAt, &p.Deleted, &p.DeletedAt,
		); err != nil {
			return nil, 0, err
		}
		a.User.RoleSysteme = domain.RoleSysteme(role)
		p.StatutGlobal = domain.StatutGlobal(statut)
		a.Profil = &p
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
