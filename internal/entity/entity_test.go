package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDeleted(t *testing.T) {
	var b Base
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	b.MarkDeleted(now)
	assert.True(t, b.Deleted)
	require.NotNil(t, b.DeletedAt)
	assert.Equal(t, now, *b.DeletedAt)

	// Deleting again re-stamps the timestamp.
	later := now.Add(48 * time.Hour)
	b.MarkDeleted(later)
	assert.Equal(t, later, *b.DeletedAt)
}

func TestMarkRestored(t *testing.T) {
	var b Base
	b.MarkDeleted(time.Now())

	b.MarkRestored()
	assert.False(t, b.Deleted)
	assert.Nil(t, b.DeletedAt)

	// Restoring an already live entity is a no-op.
	b.MarkRestored()
	assert.False(t, b.Deleted)
}
