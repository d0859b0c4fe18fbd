package audit

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to the database named by TEST_DB_DSN and skips the test
// when it is not set. Tests run inside a transaction that is rolled back, so
// they leave no rows behind.
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

func TestRecordAndCount(t *testing.T) {
	pool := testPool(t)
	ctx := WithClientMeta(context.Background(), "198.51.100.4", "", "go-test")

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(context.Background())

	rec := NewRecorder()
	entityID := uuid.New()

	e, err := rec.Record(ctx, tx, Entry{
		Action:     ActionCreate,
		EntityType: "Stage",
		EntityID:   entityID,
		NewValues:  map[string]any{"titre": "Stage réseaux"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, "198.51.100.4", e.IPAddress)

	n, err := rec.CountForEntity(ctx, tx, "Stage", entityID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = rec.Record(ctx, tx, Entry{
		Action:     ActionDelete,
		EntityType: "Stage",
		EntityID:   entityID,
		OldValues:  map[string]any{"titre": "Stage réseaux"},
	})
	require.NoError(t, err)

	n, err = rec.CountForEntity(ctx, tx, "Stage", entityID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	rec := NewRecorder()
	_, err := rec.Record(context.Background(), nil, Entry{
		Action:     "DROP",
		EntityType: "Stage",
		EntityID:   uuid.New(),
	})
	assert.Error(t, err)
}

func TestListFilters(t *testing.T) {
	pool := testPool(t)
	ctx := WithClientMeta(context.Background(), "", "203.0.113.9", "go-test")

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(context.Background())

	rec := NewRecorder()
	entityType := "T" + uuid.NewString()[:8]

	for _, action := range []Action{ActionCreate, ActionUpdate, ActionUpdate} {
		_, err := rec.Record(ctx, tx, Entry{
			Action:     action,
			EntityType: entityType,
			EntityID:   uuid.New(),
		})
		require.NoError(t, err)
	}

	entries, total, err := rec.List(ctx, tx, ListFilters{EntityType: entityType}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, entries, 3)

	entries, total, err = rec.List(ctx, tx, ListFilters{EntityType: entityType, Action: ActionUpdate}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, e := range entries {
		assert.Equal(t, ActionUpdate, e.Action)
	}
}
