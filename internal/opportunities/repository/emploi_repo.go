package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enspm-hub/hub-backend/internal/moderation"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	"github.com/enspm-hub/hub-backend/internal/slug"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const emploiColumns = listingColumns + `, type_emploi, salaire_min, salaire_max, devise, date_expiration`

// EmploiRepository provides persistence operations for job offers.
type EmploiRepository struct{}

func NewEmploiRepository() *EmploiRepository {
	return &EmploiRepository{}
}

func scanEmploi(row pgx.Row) (*domain.Emploi, error) {
	var e domain.Emploi
	var typ string
	if err := scanListing(row, &e.Listing, &typ, &e.SalaireMin, &e.SalaireMax, &e.Devise, &e.DateExpiration); err != nil {
		return nil, err
	}
	e.TypeEmploi = domain.TypeEmploi(typ)
	return &e, nil
}

func (r *EmploiRepository) Create(ctx context.Context, q postgres.Querier, e *domain.Emploi) (*domain.Emploi, error) {
	const q1 = `
INSERT INTO emploi (titre, slug, nom_structure, description, adresse, ville, pays,
                    email_contact, telephone_contact, lien_offre, lien_candidature,
                    createur_id, organisation_id, statut, est_valide,
                    type_emploi, salaire_min, salaire_max, devise, date_expiration)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
RETURNING ` + emploiColumns + `;`

	for attempt := 0; attempt < 3; attempt++ {
		sl, err := slug.New(e.Titre)
		if err != nil {
			return nil, err
		}
		created, err := scanEmploi(q.QueryRow(ctx, q1,
			e.Titre, sl, e.NomStructure, e.Description, e.Adresse, e.Ville, e.Pays,
			e.EmailContact, e.TelephoneContact, e.LienOffre, e.LienCandidature,
			e.CreateurID, e.OrganisationID, string(e.Statut), e.EstValide,
			string(e.TypeEmploi), e.SalaireMin, e.SalaireMax, e.Devise, e.DateExpiration))
		if err != nil {
			if postgres.IsUniqueViolation(err, "emploi_slug_key") {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errors.New("emploi: could not generate a unique slug")
}

func (r *EmploiRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Emploi, error) {
	const q1 = `SELECT ` + emploiColumns + ` FROM emploi WHERE id = $1 AND deleted = FALSE;`
	return scanEmploi(q.QueryRow(ctx, q1, id))
}

func (r *EmploiRepository) GetByIDAny(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Emploi, error) {
	const q1 = `SELECT ` + emploiColumns + ` FROM emploi WHERE id = $1;`
	return scanEmploi(q.QueryRow(ctx, q1, id))
}

func (r *EmploiRepository) GetByIDForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Emploi, error) {
	const q1 = `SELECT ` + emploiColumns + ` FROM emploi WHERE id = $1 AND deleted = FALSE FOR UPDATE;`
	return scanEmploi(q.QueryRow(ctx, q1, id))
}

func (r *EmploiRepository) GetBySlug(ctx context.Context, q postgres.Querier, s string) (*domain.Emploi, error) {
	const q1 = `SELECT ` + emploiColumns + ` FROM emploi WHERE slug = $1 AND deleted = FALSE;`
	return scanEmploi(q.QueryRow(ctx, q1, s))
}

func (r *EmploiRepository) Update(ctx context.Context, q postgres.Querier, e *domain.Emploi) (*domain.Emploi, error) {
	const q1 = `
UPDATE emploi
SET titre = $2, nom_structure = $3, description = $4, adresse = $5, ville = $6, pays = $7,
    email_contact = $8, telephone_contact = $9, lien_offre = $10, lien_candidature = $11,
    type_emploi = $12, salaire_min = $13, salaire_max = $14, devise = $15,
    date_expiration = $16, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + emploiColumns + `;`
	return scanEmploi(q.QueryRow(ctx, q1,
		e.ID, e.Titre, e.NomStructure, e.Description, e.Adresse, e.Ville, e.Pays,
		e.EmailContact, e.TelephoneContact, e.LienOffre, e.LienCandidature,
		string(e.TypeEmploi), e.SalaireMin, e.SalaireMax, e.Devise, e.DateExpiration))
}

func (r *EmploiRepository) UpdateReview(ctx context.Context, q postgres.Querier, id uuid.UUID, rev moderation.Review) error {
	return updateReview(ctx, q, "emploi", id, rev)
}

func (r *EmploiRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	return softDelete(ctx, q, "emploi", id)
}

func (r *EmploiRepository) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	return restore(ctx, q, "emploi", id)
}

// ExpireOverdue flips active jobs whose expiration date has passed.
func (r *EmploiRepository) ExpireOverdue(ctx context.Context, q postgres.Querier, now time.Time) (int, error) {
	return expireOverdue(ctx, q, "emploi", "date_expiration", now)
}

func (r *EmploiRepository) List(ctx context.Context, q postgres.Querier, f domain.ListFilters, publicOnly bool, limit, offset int) ([]domain.Emploi, int, error) {
	b := newListingQuery("emploi", emploiColumns, f, publicOnly)
	b.typeColumn = "type_emploi"
	total, rows, err := b.run(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Emploi, 0, limit)
	for rows.Next() {
		e, err := scanEmploi(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *EmploiRepository) ListByCreateur(ctx context.Context, q postgres.Querier, createurID uuid.UUID, limit, offset int) ([]domain.Emploi, int, error) {
	total, rows, err := listByCreateur(ctx, q, "emploi", emploiColumns, createurID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Emploi, 0, limit)
	for rows.Next() {
		e, err := scanEmploi(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *EmploiRepository) Stats(ctx context.Context, q postgres.Querier) (domain.Stats, error) {
	return stats(ctx, q, "emploi", "type_emploi")
}
