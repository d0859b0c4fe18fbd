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

const formationColumns = listingColumns + `, type_formation, est_payante, prix, devise,
duree_heures, date_debut, date_fin, lien_formation, lien_inscription`

// FormationRepository provides persistence operations for training offers.
type FormationRepository struct{}

func NewFormationRepository() *FormationRepository {
	return &FormationRepository{}
}

func scanFormation(row pgx.Row) (*domain.Formation, error) {
	var f domain.Formation
	var typ string
	if err := scanListing(row, &f.Listing, &typ, &f.EstPayante, &f.Prix, &f.Devise,
		&f.DureeHeures, &f.DateDebut, &f.DateFin, &f.LienFormation, &f.LienInscription); err != nil {
		return nil, err
	}
	f.TypeFormation = domain.TypeFormation(typ)
	return &f, nil
}

func (r *FormationRepository) Create(ctx context.Context, q postgres.Querier, f *domain.Formation) (*domain.Formation, error) {
	const q1 = `
INSERT INTO formation (titre, slug, nom_structure, description, adresse, ville, pays,
                       email_contact, telephone_contact, lien_offre, lien_candidature,
                       createur_id, organisation_id, statut, est_valide,
                       type_formation, est_payante, prix, devise, duree_heures,
                       date_debut, date_fin, lien_formation, lien_inscription)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
        $19, $20, $21, $22, $23, $24)
RETURNING ` + formationColumns + `;`

	for attempt := 0; attempt < 3; attempt++ {
		sl, err := slug.New(f.Titre)
		if err != nil {
			return nil, err
		}
		created, err := scanFormation(q.QueryRow(ctx, q1,
			f.Titre, sl, f.NomStructure, f.Description, f.Adresse, f.Ville, f.Pays,
			f.EmailContact, f.TelephoneContact, f.LienOffre, f.LienCandidature,
			f.CreateurID, f.OrganisationID, string(f.Statut), f.EstValide,
			string(f.TypeFormation), f.EstPayante, f.Prix, f.Devise, f.DureeHeures,
			f.DateDebut, f.DateFin, f.LienFormation, f.LienInscription))
		if err != nil {
			if postgres.IsUniqueViolation(err, "formation_slug_key") {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errors.New("formation: could not generate a unique slug")
}

func (r *FormationRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Formation, error) {
	const q1 = `SELECT ` + formationColumns + ` FROM formation WHERE id = $1 AND deleted = FALSE;`
	return scanFormation(q.QueryRow(ctx, q1, id))
}

func (r *FormationRepository) GetByIDAny(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Formation, error) {
	const q1 = `SELECT ` + formationColumns + ` FROM formation WHERE id = $1;`
	return scanFormation(q.QueryRow(ctx, q1, id))
}

func (r *FormationRepository) GetByIDForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Formation, error) {
	const q1 = `SELECT ` + formationColumns + ` FROM formation WHERE id = $1 AND deleted = FALSE FOR UPDATE;`
	return scanFormation(q.QueryRow(ctx, q1, id))
}

func (r *FormationRepository) GetBySlug(ctx context.Context, q postgres.Querier, s string) (*domain.Formation, error) {
	const q1 = `SELECT ` + formationColumns + ` FROM formation WHERE slug = $1 AND deleted = FALSE;`
	return scanFormation(q.QueryRow(ctx, q1, s))
}

func (r *FormationRepository) Update(ctx context.Context, q postgres.Querier, f *domain.Formation) (*domain.Formation, error) {
	const q1 = `
UPDATE formation
SET titre = $2, nom_structure = $3, description = $4, adresse = $5, ville = $6, pays = $7,
    email_contact = $8, telephone_contact = $9, lien_offre = $10, lien_candidature = $11,
    type_formation = $12, est_payante = $13, prix = $14, devise = $15, duree_heures = $16,
    date_debut = $17, date_fin = $18, lien_formation = $19, lien_inscription = $20,
    updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + formationColumns + `;`
	return scanFormation(q.QueryRow(ctx, q1,
		f.ID, f.Titre, f.NomStructure, f.Description, f.Adresse, f.Ville, f.Pays,
		f.EmailContact, f.TelephoneContact, f.LienOffre, f.LienCandidature,
		string(f.TypeFormation), f.EstPayante, f.Prix, f.Devise, f.DureeHeures,
		f.DateDebut, f.DateFin, f.LienFormation, f.LienInscription))
}

func (r *FormationRepository) UpdateReview(ctx context.Context, q postgres.Querier, id uuid.UUID, rev moderation.Review) error {
	return updateReview(ctx, q, "formation", id, rev)
}

func (r *FormationRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	return softDelete(ctx, q, "formation", id)
}

func (r *FormationRepository) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	return restore(ctx, q, "formation", id)
}

// ExpireOverdue flips active trainings whose end date has passed.
func (r *FormationRepository) ExpireOverdue(ctx context.Context, q postgres.Querier, now time.Time) (int, error) {
	return expireOverdue(ctx, q, "formation", "date_fin", now)
}

func (r *FormationRepository) List(ctx context.Context, q postgres.Querier, f domain.ListFilters, publicOnly bool, limit, offset int) ([]domain.Formation, int, error) {
	b := newListingQuery("formation", formationColumns, f, publicOnly)
	b.typeColumn = "type_formation"
	total, rows, err := b.run(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Formation, 0, limit)
	for rows.Next() {
		item, err := scanFormation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *FormationRepository) ListByCreateur(ctx context.Context, q postgres.Querier, createurID uuid.UUID, limit, offset int) ([]domain.Formation, int, error) {
	total, rows, err := listByCreateur(ctx, q, "formation", formationColumns, createurID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Formation, 0, limit)
	for rows.Next() {
		item, err := scanFormation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *FormationRepository) Stats(ctx context.Context, q postgres.Querier) (domain.Stats, error) {
	return stats(ctx, q, "formation", "type_formation")
}
