package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("Chaud7!secret")
	require.NoError(t, err)
	require.NotEqual(t, "Chaud7!secret", hash)

	assert.True(t, CheckPassword(hash, "Chaud7!secret"))
	assert.False(t, CheckPassword(hash, "chaud7!secret"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestCheckPasswordBadHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "whatever"))
}
