package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestIssueAndParsePair(t *testing.T) {
	m := testManager()
	userID := uuid.New()

	pair, err := m.IssuePair(userID, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	got, err := m.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	got, err = m.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParseRejectsWrongType(t *testing.T) {
	m := testManager()
	pair, err := m.IssuePair(uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, errWrongTokenType)

	_, err = m.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, errWrongTokenType)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	pair, err := testManager().IssuePair(uuid.New(), time.Now())
	require.NoError(t, err)

	other := NewManager("another-secret", 15*time.Minute, 24*time.Hour)
	_, err = other.ParseAccess(pair.Access)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := testManager()
	pair, err := m.IssuePair(uuid.New(), time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.Access)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := testManager().ParseAccess("not.a.jwt")
	assert.Error(t, err)
}
