// Package repository persists the reference collections. The eight tables
// share one shape, so the CRUD surface is a single generic Collection
// parameterised with each table's columns and scan function.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/references/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const commonColumns = `est_actif, ordre_affichage, id, created_at, updated_at, deleted, deleted_at`

// Collection is the CRUD surface of one reference table.
type Collection[T any] struct {
	table      string
	columns    string
	orderBy    string
	constraint string
	scan       func(row pgx.Row, t *T) error
	insertCols []string
	insertArgs func(t *T) []any
	updateSet  string
	updateArgs func(t *T) []any
}

// Table returns the underlying table name, used by the seed command.
func (c *Collection[T]) Table() string { return c.table }

func (c *Collection[T]) scanOne(row pgx.Row) (*T, error) {
	var t T
	if err := c.scan(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (c *Collection[T]) scanAll(rows pgx.Rows) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		var t T
		if err := c.scan(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (c *Collection[T]) Create(ctx context.Context, q postgres.Querier, t *T) (*T, error) {
	ph := make([]string, len(c.insertCols))
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	q1 := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s;",
		c.table, strings.Join(c.insertCols, ", "), strings.Join(ph, ", "), c.columns)
	return c.scanOne(q.QueryRow(ctx, q1, c.insertArgs(t)...))
}

func (c *Collection[T]) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*T, error) {
	q1 := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND deleted = FALSE;", c.columns, c.table)
	return c.scanOne(q.QueryRow(ctx, q1, id))
}

// List returns the collection in display order. activeOnly is the public
// view; admins see inactive rows too.
func (c *Collection[T]) List(ctx context.Context, q postgres.Querier, activeOnly bool) ([]T, error) {
	q1 := fmt.Sprintf("SELECT %s FROM %s WHERE deleted = FALSE", c.columns, c.table)
	if activeOnly {
		q1 += " AND est_actif = TRUE"
	}
	q1 += " ORDER BY " + c.orderBy + ";"
	rows, err := q.Query(ctx, q1)
	if err != nil {
		return nil, err
	}
	return c.scanAll(rows)
}

// Update rewrites the editable columns. $1 is always the row id.
func (c *Collection[T]) Update(ctx context.Context, q postgres.Querier, id uuid.UUID, t *T) (*T, error) {
	q1 := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $1 AND deleted = FALSE RETURNING %s;",
		c.table, c.updateSet, c.columns)
	args := append([]any{id}, c.updateArgs(t)...)
	return c.scanOne(q.QueryRow(ctx, q1, args...))
}

func (c *Collection[T]) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	q1 := fmt.Sprintf("UPDATE %s SET deleted = TRUE, deleted_at = now(), est_actif = FALSE, updated_at = now() WHERE id = $1 AND deleted = FALSE;", c.table)
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	q1 := fmt.Sprintf("UPDATE %s SET deleted = FALSE, deleted_at = NULL, updated_at = now() WHERE id = $1 AND deleted = TRUE;", c.table)
	tag, err := q.Exec(ctx, q1, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsConflict reports whether err is a duplicate on this collection's
// natural-key constraint.
func (c *Collection[T]) IsConflict(err error) bool {
	return c.constraint != "" && postgres.IsUniqueViolation(err, c.constraint)
}

func scanCommon(c *domain.Common) []any {
	return []any{&c.EstActif, &c.OrdreAffichage, &c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Deleted, &c.DeletedAt}
}

// Repository groups the eight reference collections plus the handful of
// queries that do not fit the generic surface.
type Repository struct {
	Annees   Collection[domain.AnneePromotion]
	Domaines Collection[domain.Domaine]
	Filieres Collection[domain.Filiere]
	Secteurs Collection[domain.SecteurActivite]
	Postes   Collection[domain.Poste]
	Devises  Collection[domain.Devise]
	Titres   Collection[domain.TitreHonorifique]
	Reseaux  Collection[domain.ReseauSocial]
}

func NewRepository() *Repository {
	r := &Repository{}

	r.Annees = Collection[domain.AnneePromotion]{
		table:      "annee_promotion",
		columns:    "annee, libelle, " + commonColumns,
		orderBy:    "annee DESC",
		constraint: "annee_promotion_annee_key",
		scan: func(row pgx.Row, t *domain.AnneePromotion) error {
			return row.Scan(append([]any{&t.Annee, &t.Libelle}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"annee", "libelle", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.AnneePromotion) []any {
			return []any{t.Annee, t.Libelle, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "annee = $2, libelle = $3, est_actif = $4, ordre_affichage = $5",
		updateArgs: func(t *domain.AnneePromotion) []any {
			return []any{t.Annee, t.Libelle, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Domaines = Collection[domain.Domaine]{
		table:      "domaine",
		columns:    "nom, code, description, " + commonColumns,
		orderBy:    "ordre_affichage, nom",
		constraint: "domaine_code_key",
		scan: func(row pgx.Row, t *domain.Domaine) error {
			return row.Scan(append([]any{&t.Nom, &t.Code, &t.Description}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"nom", "code", "description", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.Domaine) []any {
			return []any{t.Nom, t.Code, t.Description, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "nom = $2, code = $3, description = $4, est_actif = $5, ordre_affichage = $6",
		updateArgs: func(t *domain.Domaine) []any {
			return []any{t.Nom, t.Code, t.Description, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Filieres = Collection[domain.Filiere]{
		table:      "filiere",
		columns:    "nom, code, domaine_id, " + commonColumns,
		orderBy:    "ordre_affichage, nom",
		constraint: "filiere_domaine_code_key",
		scan: func(row pgx.Row, t *domain.Filiere) error {
			return row.Scan(append([]any{&t.Nom, &t.Code, &t.DomaineID}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"nom", "code", "domaine_id", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.Filiere) []any {
			return []any{t.Nom, t.Code, t.DomaineID, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "nom = $2, code = $3, domaine_id = $4, est_actif = $5, ordre_affichage = $6",
		updateArgs: func(t *domain.Filiere) []any {
			return []any{t.Nom, t.Code, t.DomaineID, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Secteurs = Collection[domain.SecteurActivite]{
		table:      "secteur_activite",
		columns:    "nom, code, parent_id, " + commonColumns,
		orderBy:    "ordre_affichage, nom",
		constraint: "secteur_activite_code_key",
		scan: func(row pgx.Row, t *domain.SecteurActivite) error {
			return row.Scan(append([]any{&t.Nom, &t.Code, &t.ParentID}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"nom", "code", "parent_id", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.SecteurActivite) []any {
			return []any{t.Nom, t.Code, t.ParentID, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "nom = $2, code = $3, parent_id = $4, est_actif = $5, ordre_affichage = $6",
		updateArgs: func(t *domain.SecteurActivite) []any {
			return []any{t.Nom, t.Code, t.ParentID, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Postes = Collection[domain.Poste]{
		table:   "poste",
		columns: "intitule, description, " + commonColumns,
		orderBy: "ordre_affichage, intitule",
		scan: func(row pgx.Row, t *domain.Poste) error {
			return row.Scan(append([]any{&t.Intitule, &t.Description}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"intitule", "description", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.Poste) []any {
			return []any{t.Intitule, t.Description, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "intitule = $2, description = $3, est_actif = $4, ordre_affichage = $5",
		updateArgs: func(t *domain.Poste) []any {
			return []any{t.Intitule, t.Description, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Devises = Collection[domain.Devise]{
		table:      "devise",
		columns:    "code, nom, symbole, " + commonColumns,
		orderBy:    "ordre_affichage, code",
		constraint: "devise_code_key",
		scan: func(row pgx.Row, t *domain.Devise) error {
			return row.Scan(append([]any{&t.Code, &t.Nom, &t.Symbole}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"code", "nom", "symbole", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.Devise) []any {
			return []any{t.Code, t.Nom, t.Symbole, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "code = $2, nom = $3, symbole = $4, est_actif = $5, ordre_affichage = $6",
		updateArgs: func(t *domain.Devise) []any {
			return []any{t.Code, t.Nom, t.Symbole, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Titres = Collection[domain.TitreHonorifique]{
		table:      "titre_honorifique",
		columns:    "libelle, abreviation, " + commonColumns,
		orderBy:    "ordre_affichage, libelle",
		constraint: "titre_honorifique_libelle_key",
		scan: func(row pgx.Row, t *domain.TitreHonorifique) error {
			return row.Scan(append([]any{&t.Libelle, &t.Abreviation}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"libelle", "abreviation", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.TitreHonorifique) []any {
			return []any{t.Libelle, t.Abreviation, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "libelle = $2, abreviation = $3, est_actif = $4, ordre_affichage = $5",
		updateArgs: func(t *domain.TitreHonorifique) []any {
			return []any{t.Libelle, t.Abreviation, t.EstActif, t.OrdreAffichage}
		},
	}

	r.Reseaux = Collection[domain.ReseauSocial]{
		table:      "reseau_social",
		columns:    "nom, url_base, icone, " + commonColumns,
		orderBy:    "ordre_affichage, nom",
		constraint: "reseau_social_nom_key",
		scan: func(row pgx.Row, t *domain.ReseauSocial) error {
			return row.Scan(append([]any{&t.Nom, &t.URLBase, &t.Icone}, scanCommon(&t.Common)...)...)
		},
		insertCols: []string{"nom", "url_base", "icone", "est_actif", "ordre_affichage"},
		insertArgs: func(t *domain.ReseauSocial) []any {
			return []any{t.Nom, t.URLBase, t.Icone, t.EstActif, t.OrdreAffichage}
		},
		updateSet: "nom = $2, url_base = $3, icone = $4, est_actif = $5, ordre_affichage = $6",
		updateArgs: func(t *domain.ReseauSocial) []any {
			return []any{t.Nom, t.URLBase, t.Icone, t.EstActif, t.OrdreAffichage}
		},
	}

	return r
}

// FilieresByDomaine lists the active tracks of one domain.
func (r *Repository) FilieresByDomaine(ctx context.Context, q postgres.Querier, domaineID uuid.UUID) ([]domain.Filiere, error) {
	q1 := fmt.Sprintf(`
SELECT %s FROM filiere
WHERE domaine_id = $1 AND deleted = FALSE AND est_actif = TRUE
ORDER BY ordre_affichage, nom;`, r.Filieres.columns)
	rows, err := q.Query(ctx, q1, domaineID)
	if err != nil {
		return nil, err
	}
	return r.Filieres.scanAll(rows)
}

// SecteursParents lists the active top-level sectors.
func (r *Repository) SecteursParents(ctx context.Context, q postgres.Querier) ([]domain.SecteurActivite, error) {
	q1 := fmt.Sprintf(`
SELECT %s FROM secteur_activite
WHERE parent_id IS NULL AND deleted = FALSE AND est_actif = TRUE
ORDER BY ordre_affichage, nom;`, r.Secteurs.columns)
	rows, err := q.Query(ctx, q1)
	if err != nil {
		return nil, err
	}
	return r.Secteurs.scanAll(rows)
}

// DeviseByCode looks up a currency by its ISO code.
func (r *Repository) DeviseByCode(ctx context.Context, q postgres.Querier, code string) (*domain.Devise, error) {
	q1 := fmt.Sprintf("SELECT %s FROM devise WHERE upper(code) = upper($1) AND deleted = FALSE;", r.Devises.columns)
	return r.Devises.scanOne(q.QueryRow(ctx, q1, code))
}
