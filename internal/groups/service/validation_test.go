package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/moderation"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok)
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	return names
}

func ptr[T any](v T) *T { return &v }

func validCreate() CreateInput {
	return CreateInput{
		Nom:         "Alumni GI 2018",
		Description: "Promotion 2018 du génie informatique.",
		Type:        domain.TypePublic,
	}
}

func TestCreateInputValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in := validCreate()
		assert.NoError(t, in.validate())
	})

	t.Run("missing fields", func(t *testing.T) {
		in := CreateInput{Nom: "  ", Description: "", Type: domain.TypePrive}
		names := fieldNames(t, in.validate())
		assert.ElementsMatch(t, []string{"nom", "description"}, names)
	})

	t.Run("unknown type", func(t *testing.T) {
		in := validCreate()
		in.Type = "secret"
		assert.Contains(t, fieldNames(t, in.validate()), "type")
	})

	t.Run("capacity below two", func(t *testing.T) {
		in := validCreate()
		in.MaxMembres = ptr(1)
		assert.Contains(t, fieldNames(t, in.validate()), "max_membres")

		in.MaxMembres = ptr(2)
		assert.NoError(t, in.validate())
	})
}

func TestCapacityReached(t *testing.T) {
	assert.False(t, capacityReached(nil, 9999))
	assert.False(t, capacityReached(ptr(10), 9))
	assert.True(t, capacityReached(ptr(10), 10))
	assert.True(t, capacityReached(ptr(10), 11))
}

func TestGroupeVisible(t *testing.T) {
	g := domain.Groupe{}
	g.Statut = moderation.StatusActive
	g.EstValide = true
	assert.True(t, g.Visible())

	g.EstValide = false
	assert.False(t, g.Visible())

	g.EstValide = true
	g.Deleted = true
	assert.False(t, g.Visible())
}
