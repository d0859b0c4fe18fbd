package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the users endpoints. requireAuth protects member
// actions, requireAdmin the account administration ones.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, requireAuth, requireAdmin gin.HandlerFunc) {
	g := rg.Group("/users")
	g.POST("/register", h.Register)
	g.GET("", h.List)
	g.GET("/:slug", h.GetBySlug)

	authed := g.Group("", requireAuth)
	authed.PATCH("/profiles/:id", h.UpdateProfile)
	authed.POST("/profiles/:id/photo", h.UploadPhoto)
	authed.POST("/me/password", h.ChangePassword)
	authed.POST("/me/experiences", h.AddExperience)
	authed.PUT("/experiences/:id", h.UpdateExperience)
	authed.DELETE("/experiences/:id", h.RemoveExperience)
	authed.PUT("/me/social-links", h.SetSocialLink)
	authed.DELETE("/social-links/:id", h.RemoveSocialLink)
	authed.DELETE("/accounts/:id", h.Delete)

	admin := g.Group("/accounts", requireAuth, requireAdmin)
	admin.POST("/:id/active", h.SetActive)
	admin.POST("/:id/role", h.SetRole)
	admin.POST("/:id/restore", h.Restore)
}
