package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(context.Background()))
	return pool
}

// seedProfilOrg inserts the user/profil/organisation rows a membership needs.
// Everything lives in the caller's transaction and disappears on rollback.
func seedProfilOrg(t *testing.T, ctx context.Context, tx pgx.Tx) (profilID, orgID uuid.UUID) {
	t.Helper()
	suffix := uuid.NewString()[:8]

	var userID uuid.UUID
	require.NoError(t, tx.QueryRow(ctx, `
INSERT INTO users (email, password_hash, role_systeme)
VALUES ($1, 'x', 'user') RETURNING id;`, "membre-"+suffix+"@test.local").Scan(&userID))

	require.NoError(t, tx.QueryRow(ctx, `
INSERT INTO profil (user_id, nom_complet, statut_global, slug)
VALUES ($1, 'Membre Test', 'alumni', $2) RETURNING id;`, userID, "membre-test-"+suffix).Scan(&profilID))

	require.NoError(t, tx.QueryRow(ctx, `
INSERT INTO organisation (nom, slug, type, statut)
VALUES ($1, $2, 'entreprise', 'active') RETURNING id;`, "Org "+suffix, "org-"+suffix).Scan(&orgID))

	return profilID, orgID
}

func TestMembreSingleActiveMembership(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(context.Background())

	profilID, orgID := seedProfilOrg(t, ctx, tx)
	repo := NewMembreRepository()

	first, err := repo.Create(ctx, tx, &domain.Membre{
		ProfilID:       profilID,
		OrganisationID: orgID,
		Role:           domain.RoleEmploye,
	})
	require.NoError(t, err)
	assert.True(t, first.EstActif)

	t.Run("second active row is rejected", func(t *testing.T) {
		// Savepoint, the unique violation aborts anything inside it.
		inner, err := tx.Begin(ctx)
		require.NoError(t, err)
		defer inner.Rollback(context.Background())

		_, err = repo.Create(ctx, inner, &domain.Membre{
			ProfilID:       profilID,
			OrganisationID: orgID,
			Role:           domain.RolePageAdmin,
		})
		require.Error(t, err)
		assert.True(t, postgres.IsUniqueViolation(err, "membre_organisation_actif_key"))
	})

	t.Run("rejoining after deactivation keeps history", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, tx, first.ID))

		second, err := repo.Create(ctx, tx, &domain.Membre{
			ProfilID:       profilID,
			OrganisationID: orgID,
			Role:           domain.RoleEmploye,
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		active, err := repo.GetActive(ctx, tx, profilID, orgID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, active.ID)

		var rows int
		require.NoError(t, tx.QueryRow(ctx, `
SELECT count(*) FROM membre_organisation
WHERE profil_id = $1 AND organisation_id = $2;`, profilID, orgID).Scan(&rows))
		assert.Equal(t, 2, rows)
	})
}
