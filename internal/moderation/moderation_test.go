package moderation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/internal/apperr"
)

func TestInitial(t *testing.T) {
	t.Run("trusted actors publish directly", func(t *testing.T) {
		r := Initial(true)
		assert.Equal(t, StatusActive, r.Statut)
		assert.True(t, r.EstValide)
		assert.Nil(t, r.ValidateurID)
	})

	t.Run("ordinary users enter the pending queue", func(t *testing.T) {
		r := Initial(false)
		assert.Equal(t, StatusEnAttente, r.Statut)
		assert.False(t, r.EstValide)
	})
}

func TestValidate(t *testing.T) {
	admin := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("approval activates and stamps the validator", func(t *testing.T) {
		r := Initial(false)
		require.NoError(t, r.Validate(admin, true, nil, now))

		assert.Equal(t, StatusActive, r.Statut)
		assert.True(t, r.EstValide)
		require.NotNil(t, r.ValidateurID)
		assert.Equal(t, admin, *r.ValidateurID)
		require.NotNil(t, r.DateValidation)
		assert.Equal(t, now, *r.DateValidation)
	})

	t.Run("rejection keeps est_valide false", func(t *testing.T) {
		motif := "description incomplète"
		r := Initial(false)
		require.NoError(t, r.Validate(admin, false, &motif, now))

		assert.Equal(t, StatusRejetee, r.Statut)
		assert.False(t, r.EstValide)
		require.NotNil(t, r.CommentaireValidation)
		assert.Equal(t, motif, *r.CommentaireValidation)
	})

	t.Run("second decision on an approved listing is refused", func(t *testing.T) {
		r := Initial(false)
		require.NoError(t, r.Validate(admin, true, nil, now))

		other := uuid.New()
		err := r.Validate(other, false, nil, now.Add(time.Hour))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "déjà été validée")

		// First decision must stay untouched.
		assert.Equal(t, admin, *r.ValidateurID)
		assert.Equal(t, now, *r.DateValidation)
		assert.True(t, r.EstValide)
	})

	t.Run("second decision on a rejected listing is refused", func(t *testing.T) {
		r := Initial(false)
		require.NoError(t, r.Validate(admin, false, nil, now))

		err := r.Validate(admin, true, nil, now.Add(time.Hour))
		require.Error(t, err)
		assert.Equal(t, StatusRejetee, r.Statut)
		assert.False(t, r.EstValide)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("active listings expire, fill or close", func(t *testing.T) {
		for _, next := range []Status{StatusExpiree, StatusPourvue} {
			r := Review{Statut: StatusActive}
			require.NoError(t, r.UpdateStatus(next, StatusPourvue))
			assert.Equal(t, next, r.Statut)
		}
	})

	t.Run("expired listings can be reactivated", func(t *testing.T) {
		r := Review{Statut: StatusExpiree}
		require.NoError(t, r.UpdateStatus(StatusActive, StatusPourvue))
		assert.Equal(t, StatusActive, r.Statut)
	})

	t.Run("terminal states are terminal", func(t *testing.T) {
		r := Review{Statut: StatusPourvue}
		err := r.UpdateStatus(StatusActive, StatusPourvue)
		require.Error(t, err)
	})

	t.Run("closed state depends on the listing family", func(t *testing.T) {
		r := Review{Statut: StatusActive}
		err := r.UpdateStatus(StatusPourvue, StatusAnnulee)
		require.Error(t, err, "a training never becomes pourvue")

		r = Review{Statut: StatusActive}
		require.NoError(t, r.UpdateStatus(StatusAnnulee, StatusAnnulee))
	})

	t.Run("pending listings cannot be moved without validation", func(t *testing.T) {
		r := Review{Statut: StatusEnAttente}
		err := r.UpdateStatus(StatusActive, StatusPourvue)
		require.Error(t, err)

		var e *apperr.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, apperr.KindBadRequest, e.Kind)
	})
}
