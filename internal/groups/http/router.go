package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the group endpoints. Reads are keyed by slug,
// mutations by id; the actor's own groups and the moderation queue live in
// the shared /me and /moderation subtrees to keep the route tree free of
// wildcard conflicts.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, optionalAuth, requireAuth, requireAdmin gin.HandlerFunc) {
	g := rg.Group("/groups")
	g.GET("", optionalAuth, h.List)
	g.GET("/:slug", optionalAuth, h.GetBySlug)
	g.GET("/:slug/membres", optionalAuth, h.ListMembres)

	authed := g.Group("", requireAuth)
	authed.POST("", h.Create)
	authed.PATCH("/:id", h.Update)
	authed.DELETE("/:id", h.Delete)
	authed.POST("/:id/photo", h.UploadPhoto)
	authed.POST("/:id/join", h.Join)
	authed.DELETE("/:id/join", h.Leave)
	authed.POST("/:id/membres", h.AddMembre)
	authed.PATCH("/:id/membres/:membreId", h.UpdateMembre)
	authed.DELETE("/:id/membres/:membreId", h.RemoveMembre)

	admin := g.Group("", requireAuth, requireAdmin)
	admin.POST("/:id/validate", h.Validate)
	admin.POST("/:id/restore", h.Restore)

	rg.GET("/me/groups", requireAuth, h.MyGroups)
	rg.GET("/moderation/groups", requireAuth, requireAdmin, h.Pending)
}
