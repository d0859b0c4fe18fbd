package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/moderation"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

// Helpers shared by the three listing repositories. The table name is always
// one of the fixed family tables, never caller input.

func updateReview(ctx context.Context, q postgres.Querier, table string, id uuid.UUID, rev moderation.Review) error {
	query := fmt.Sprintf(`
UPDATE %s
SET statut = $2, est_valide = $3, validateur_id = $4, date_validation = $5,
    commentaire_validation = $6, updated_at = now()
WHERE id = $1 AND deleted = FALSE;`, table)
	tag, err := q.Exec(ctx, query, id, string(rev.Statut), rev.EstValide,
		rev.ValidateurID, rev.DateValidation, rev.CommentaireValidation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func softDelete(ctx context.Context, q postgres.Querier, table string, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted = TRUE, deleted_at = now(), updated_at = now() WHERE id = $1;`, table)
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func restore(ctx context.Context, q postgres.Querier, table string, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted = FALSE, deleted_at = NULL, updated_at = now() WHERE id = $1;`, table)
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func expireOverdue(ctx context.Context, q postgres.Querier, table, dateColumn string, now time.Time) (int, error) {
	query := fmt.Sprintf(`
UPDATE %s SET statut = $1, updated_at = now()
WHERE statut = $2 AND deleted = FALSE AND %s IS NOT NULL AND %s < $3;`, table, dateColumn, dateColumn)
	tag, err := q.Exec(ctx, query,
		string(moderation.StatusExpiree), string(moderation.StatusActive), now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// listingQuery assembles the filtered listing query shared by the families.
type listingQuery struct {
	table      string
	columns    string
	typeColumn string
	filters    domain.ListFilters
	publicOnly bool
}

func newListingQuery(table, columns string, f domain.ListFilters, publicOnly bool) *listingQuery {
	return &listingQuery{table: table, columns: columns, filters: f, publicOnly: publicOnly}
}

func (b *listingQuery) run(ctx context.Context, q postgres.Querier, limit, offset int) (int, pgx.Rows, error) {
	where := `WHERE deleted = FALSE`
	args := []any{}
	n := 0

	if b.publicOnly {
		n++
		where += fmt.Sprintf(` AND statut = $%d AND est_valide = TRUE`, n)
		args = append(args, string(moderation.StatusActive))
	} else if b.filters.Statut != "" {
		n++
		where += fmt.Sprintf(` AND statut = $%d`, n)
		args = append(args, string(b.filters.Statut))
	}
	if b.filters.Search != "" {
		n++
		where += fmt.Sprintf(` AND (titre ILIKE $%d OR nom_structure ILIKE $%d OR description ILIKE $%d)`, n, n, n)
		args = append(args, "%"+b.filters.Search+"%")
	}
	if b.filters.Type != "" && b.typeColumn != "" {
		n++
		where += fmt.Sprintf(` AND %s = $%d`, b.typeColumn, n)
		args = append(args, b.filters.Type)
	}
	if b.filters.Ville != "" {
		n++
		where += fmt.Sprintf(` AND ville ILIKE $%d`, n)
		args = append(args, b.filters.Ville)
	}
	if b.filters.Pays != "" {
		n++
		where += fmt.Sprintf(` AND pays ILIKE $%d`, n)
		args = append(args, b.filters.Pays)
	}

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s %s`, b.table, where), args...).Scan(&total); err != nil {
		return 0, nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY date_publication DESC LIMIT $%d OFFSET $%d;`,
		b.columns, b.table, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return 0, nil, err
	}
	return total, rows, nil
}

func listByCreateur(ctx context.Context, q postgres.Querier, table, columns string, createurID uuid.UUID, limit, offset int) (int, pgx.Rows, error) {
	var total int
	if err := q.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE createur_id = $1 AND deleted = FALSE`, table),
		createurID).Scan(&total); err != nil {
		return 0, nil, err
	}
	rows, err := q.Query(ctx, fmt.Sprintf(`
SELECT %s FROM %s
WHERE createur_id = $1 AND deleted = FALSE
ORDER BY date_publication DESC
LIMIT $2 OFFSET $3;`, columns, table), createurID, limit, offset)
	if err != nil {
		return 0, nil, err
	}
	return total, rows, nil
}

func stats(ctx context.Context, q postgres.Querier, table, typeColumn string) (domain.Stats, error) {
	out := domain.Stats{ParStatut: map[string]int{}, ParType: map[string]int{}}

	rows, err := q.Query(ctx, fmt.Sprintf(`
SELECT statut, count(*) FROM %s WHERE deleted = FALSE GROUP BY statut;`, table))
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var statut string
		var n int
		if err := rows.Scan(&statut, &n); err != nil {
			return out, err
		}
		out.ParStatut[statut] = n
		out.Total += n
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	typeRows, err := q.Query(ctx, fmt.Sprintf(`
SELECT %s, count(*) FROM %s WHERE deleted = FALSE GROUP BY %s;`, typeColumn, table, typeColumn))
	if err != nil {
		return out, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var typ string
		var n int
		if err := typeRows.Scan(&typ, &n); err != nil {
			return out, err
		}
		out.ParType[typ] = n
	}
	return out, typeRows.Err()
}
