package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{ValidationFailed(nil), http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.Status())
	}
}

func TestValidationFailed(t *testing.T) {
	e := ValidationFailed([]Field{
		{Name: "titre", Message: "Le titre est obligatoire."},
		{Name: "date_fin", Message: "La date de fin doit être postérieure à la date de début."},
	})
	assert.Equal(t, KindValidation, e.Kind)
	assert.Len(t, e.Fields, 2)
	assert.Equal(t, "titre", e.Fields[0].Name)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("service call: %w", NotFound("Profil introuvable."))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "Profil introuvable.", e.Detail)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
