package bootstrap

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enspm-hub/hub-backend/config"
)

func TestSetGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	SetGinMode("production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())

	// Unknown environments leave the mode alone.
	SetGinMode("development")
	assert.Equal(t, gin.TestMode, gin.Mode())
}

func TestOpenDBRequiresHostAndName(t *testing.T) {
	_, err := OpenDB(context.Background(), &config.DatabaseConfig{Name: "hub"})
	require.Error(t, err)

	_, err = OpenDB(context.Background(), &config.DatabaseConfig{Host: "localhost"})
	require.Error(t, err)
}
