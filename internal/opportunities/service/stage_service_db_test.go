package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/internal/audit"
	"github.com/enspm-hub/hub-backend/internal/entity"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	usersdomain "github.com/enspm-hub/hub-backend/internal/users/domain"
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

// seedAdmin commits a site-admin account and registers cleanup for it and
// everything it will create. The service writes through the pool, so the
// test data cannot live in a rolled-back transaction.
func seedAdmin(t *testing.T, ctx context.Context, pool *pgxpool.Pool) *usersdomain.Actor {
	t.Helper()

	var userID uuid.UUID
	require.NoError(t, pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, role_systeme)
VALUES ($1, 'x', 'admin_site') RETURNING id;`,
		"stage-admin-"+uuid.NewString()[:8]+"@test.local").Scan(&userID))

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM audit_log WHERE actor_id = $1;`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM stage WHERE createur_id = $1;`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1;`, userID)
	})

	return &usersdomain.Actor{User: usersdomain.User{
		Base:        entity.Base{ID: userID},
		RoleSysteme: usersdomain.RoleAdminSite,
		EstActif:    true,
	}}
}

func stageInput(titre string) StageInput {
	return StageInput{
		Titre:        titre,
		NomStructure: "ENSPM",
		Description:  "Encadrement d'un stage de fin d'études.",
		TypeStage:    domain.StageAcademique,
	}
}

func TestStageMutationsAreAudited(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	svc := NewService(pool)
	recorder := audit.NewRecorder()
	actor := seedAdmin(t, ctx, pool)

	st, err := svc.CreateStage(ctx, actor, stageInput("Stage audit "+uuid.NewString()[:8]))
	require.NoError(t, err)
	assert.True(t, st.EstValide)

	n, err := recorder.CountForEntity(ctx, pool, "Stage", st.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "creation writes exactly one audit row")

	require.NoError(t, svc.DeleteStage(ctx, actor, st.ID))

	n, err = recorder.CountForEntity(ctx, pool, "Stage", st.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "deletion adds exactly one audit row")
}

func TestCreateStageSlugsStayUnique(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	svc := NewService(pool)
	actor := seedAdmin(t, ctx, pool)

	titre := "Stage doublon " + uuid.NewString()[:8]
	first, err := svc.CreateStage(ctx, actor, stageInput(titre))
	require.NoError(t, err)
	second, err := svc.CreateStage(ctx, actor, stageInput(titre))
	require.NoError(t, err)

	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(first.Slug, "stage-doublon-"))
	assert.True(t, strings.HasPrefix(second.Slug, "stage-doublon-"))
}
