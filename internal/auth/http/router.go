package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the auth endpoints. requireAuth protects the
// session-bound ones.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, requireAuth gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/password/recover", h.RecoverPassword)
	g.POST("/password/confirm", h.ConfirmPasswordReset)

	g.GET("/me", requireAuth, h.Me)
	g.POST("/logout", requireAuth, h.Logout)
}
