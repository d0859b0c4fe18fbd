package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the organisation endpoints. Reads are keyed by slug,
// mutations by id, which keeps each method tree free of wildcard conflicts.
// optionalAuth lets public reads tailor visibility, requireAuth protects the
// member actions and requireAdmin the moderation ones.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, optionalAuth, requireAuth, requireAdmin gin.HandlerFunc) {
	g := rg.Group("/organisations")
	g.GET("", optionalAuth, h.List)
	g.GET("/:slug", optionalAuth, h.GetBySlug)
	g.GET("/:slug/membres", optionalAuth, h.ListMembres)
	g.GET("/:slug/followers", optionalAuth, h.ListFollowers)

	authed := g.Group("", requireAuth)
	authed.POST("", h.Create)
	authed.PATCH("/:id", h.Update)
	authed.DELETE("/:id", h.Delete)
	authed.POST("/:id/logo", h.UploadLogo)
	authed.POST("/:id/membres", h.AddMembre)
	authed.PATCH("/:id/membres/:membreId", h.UpdateMembre)
	authed.DELETE("/:id/membres/:membreId", h.RemoveMembre)
	authed.POST("/:id/follow", h.Follow)
	authed.DELETE("/:id/follow", h.Unfollow)

	admin := g.Group("", requireAuth, requireAdmin)
	admin.POST("/:id/statut", h.UpdateStatut)
	admin.POST("/:id/restore", h.Restore)

	// The actor's own subscriptions live outside the /organisations subtree.
	rg.GET("/me/abonnements", requireAuth, h.MyFollows)
}
