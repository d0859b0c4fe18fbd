package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode keeps gin quiet outside development.
func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}
