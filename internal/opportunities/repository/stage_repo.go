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

// listingColumns is the shared descriptive and review core, identical across
// the three listing tables. Family columns are appended per repository.
const listingColumns = `id, titre, slug, nom_structure, description, adresse, ville, pays,
email_contact, telephone_contact, lien_offre, lien_candidature, date_publication,
createur_id, organisation_id, statut, est_valide, validateur_id, date_validation,
commentaire_validation, created_at, updated_at, deleted, deleted_at`

const stageColumns = listingColumns + `, type_stage, date_debut, date_fin`

// StageRepository provides persistence operations for internship offers.
type StageRepository struct{}

func NewStageRepository() *StageRepository {
	return &StageRepository{}
}

func scanListing(row pgx.Row, l *domain.Listing, extra ...any) error {
	var statut string
	dest := []any{&l.ID, &l.Titre, &l.Slug, &l.NomStructure, &l.Description, &l.Adresse,
		&l.Ville, &l.Pays, &l.EmailContact, &l.TelephoneContact, &l.LienOffre,
		&l.LienCandidature, &l.DatePublication, &l.CreateurID, &l.OrganisationID,
		&statut, &l.EstValide, &l.ValidateurID, &l.DateValidation, &l.CommentaireValidation,
		&l.CreatedAt, &l.UpdatedAt, &l.Deleted, &l.DeletedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	l.Statut = moderation.Status(statut)
	return nil
}

func scanStage(row pgx.Row) (*domain.Stage, error) {
	var s domain.Stage
	var typ string
	if err := scanListing(row, &s.Listing, &typ, &s.DateDebut, &s.DateFin); err != nil {
		return nil, err
	}
	s.TypeStage = domain.TypeStage(typ)
	return &s, nil
}

func (r *StageRepository) Create(ctx context.Context, q postgres.Querier, s *domain.Stage) (*domain.Stage, error) {
	const q1 = `
INSERT INTO stage (titre, slug, nom_structure, description, adresse, ville, pays,
                   email_contact, telephone_contact, lien_offre, lien_candidature,
                   createur_id, organisation_id, statut, est_valide,
                   type_stage, date_debut, date_fin)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING ` + stageColumns + `;`

	for attempt := 0; attempt < 3; attempt++ {
		sl, err := slug.New(s.Titre)
		if err != nil {
			return nil, err
		}
		created, err := scanStage(q.QueryRow(ctx, q1,
			s.Titre, sl, s.NomStructure, s.Description, s.Adresse, s.Ville, s.Pays,
			s.EmailContact, s.TelephoneContact, s.LienOffre, s.LienCandidature,
			s.CreateurID, s.OrganisationID, string(s.Statut), s.EstValide,
			string(s.TypeStage), s.DateDebut, s.DateFin))
		if err != nil {
			if postgres.IsUniqueViolation(err, "stage_slug_key") {
				continue
			}
			return nil, err
		}
		return created, nil
	}
	return nil, errors.New("stage: could not generate a unique slug")
}

func (r *StageRepository) GetByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Stage, error) {
	const q1 = `SELECT ` + stageColumns + ` FROM stage WHERE id = $1 AND deleted = FALSE;`
	return scanStage(q.QueryRow(ctx, q1, id))
}

func (r *StageRepository) GetByIDAny(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Stage, error) {
	const q1 = `SELECT ` + stageColumns + ` FROM stage WHERE id = $1;`
	return scanStage(q.QueryRow(ctx, q1, id))
}

// GetByIDForUpdate locks the row so the validate and status paths serialize.
func (r *StageRepository) GetByIDForUpdate(ctx context.Context, q postgres.Querier, id uuid.UUID) (*domain.Stage, error) {
	const q1 = `SELECT ` + stageColumns + ` FROM stage WHERE id = $1 AND deleted = FALSE FOR UPDATE;`
	return scanStage(q.QueryRow(ctx, q1, id))
}

func (r *StageRepository) GetBySlug(ctx context.Context, q postgres.Querier, s string) (*domain.Stage, error) {
	const q1 = `SELECT ` + stageColumns + ` FROM stage WHERE slug = $1 AND deleted = FALSE;`
	return scanStage(q.QueryRow(ctx, q1, s))
}

func (r *StageRepository) Update(ctx context.Context, q postgres.Querier, s *domain.Stage) (*domain.Stage, error) {
	const q1 = `
UPDATE stage
SET titre = $2, nom_structure = $3, description = $4, adresse = $5, ville = $6, pays = $7,
    email_contact = $8, telephone_contact = $9, lien_offre = $10, lien_candidature = $11,
    type_stage = $12, date_debut = $13, date_fin = $14, updated_at = now()
WHERE id = $1 AND deleted = FALSE
RETURNING ` + stageColumns + `;`
	return scanStage(q.QueryRow(ctx, q1,
		s.ID, s.Titre, s.NomStructure, s.Description, s.Adresse, s.Ville, s.Pays,
		s.EmailContact, s.TelephoneContact, s.LienOffre, s.LienCandidature,
		string(s.TypeStage), s.DateDebut, s.DateFin))
}

// UpdateReview persists the moderation bookkeeping after Validate or a status
// transition.
func (r *StageRepository) UpdateReview(ctx context.Context, q postgres.Querier, id uuid.UUID, rev moderation.Review) error {
	return updateReview(ctx, q, "stage", id, rev)
}

func (r *StageRepository) SoftDelete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	return softDelete(ctx, q, "stage", id)
}

func (r *StageRepository) Restore(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	return restore(ctx, q, "stage", id)
}

// ExpireOverdue flips active internships whose end date has passed.
func (r *StageRepository) ExpireOverdue(ctx context.Context, q postgres.Querier, now time.Time) (int, error) {
	return expireOverdue(ctx, q, "stage", "date_fin", now)
}

func (r *StageRepository) List(ctx context.Context, q postgres.Querier, f domain.ListFilters, publicOnly bool, limit, offset int) ([]domain.Stage, int, error) {
	b := newListingQuery("stage", stageColumns, f, publicOnly)
	b.typeColumn = "type_stage"
	total, rows, err := b.run(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Stage, 0, limit)
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *StageRepository) ListByCreateur(ctx context.Context, q postgres.Querier, createurID uuid.UUID, limit, offset int) ([]domain.Stage, int, error) {
	total, rows, err := listByCreateur(ctx, q, "stage", stageColumns, createurID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Stage, 0, limit)
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *StageRepository) Stats(ctx context.Context, q postgres.Querier) (domain.Stats, error) {
	return stats(ctx, q, "stage", "type_stage")
}
