package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the three listing boards. Reads are keyed by slug,
// mutations by id. The actor's own listings and the moderation queues live
// outside the board subtrees so every method tree stays wildcard consistent.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, optionalAuth, requireAuth, requireAdmin gin.HandlerFunc) {
	stages := rg.Group("/internships")
	stages.GET("", optionalAuth, h.ListStages)
	stages.GET("/:slug", optionalAuth, h.GetStage)
	stages.POST("", requireAuth, h.CreateStage)
	stages.PATCH("/:id", requireAuth, h.UpdateStage)
	stages.POST("/:id/validate", requireAuth, requireAdmin, h.ValidateStage)
	stages.POST("/:id/statut", requireAuth, h.UpdateStageStatus)
	stages.POST("/:id/restore", requireAuth, requireAdmin, h.RestoreStage)
	stages.DELETE("/:id", requireAuth, h.DeleteStage)

	emplois := rg.Group("/jobs")
	emplois.GET("", optionalAuth, h.ListEmplois)
	emplois.GET("/:slug", optionalAuth, h.GetEmploi)
	emplois.POST("", requireAuth, h.CreateEmploi)
	emplois.PATCH("/:id", requireAuth, h.UpdateEmploi)
	emplois.POST("/:id/validate", requireAuth, requireAdmin, h.ValidateEmploi)
	emplois.POST("/:id/statut", requireAuth, h.UpdateEmploiStatus)
	emplois.POST("/:id/restore", requireAuth, requireAdmin, h.RestoreEmploi)
	emplois.DELETE("/:id", requireAuth, h.DeleteEmploi)

	formations := rg.Group("/trainings")
	formations.GET("", optionalAuth, h.ListFormations)
	formations.GET("/:slug", optionalAuth, h.GetFormation)
	formations.POST("", requireAuth, h.CreateFormation)
	formations.PATCH("/:id", requireAuth, h.UpdateFormation)
	formations.POST("/:id/validate", requireAuth, requireAdmin, h.ValidateFormation)
	formations.POST("/:id/statut", requireAuth, h.UpdateFormationStatus)
	formations.POST("/:id/restore", requireAuth, requireAdmin, h.RestoreFormation)
	formations.DELETE("/:id", requireAuth, h.DeleteFormation)

	me := rg.Group("/me", requireAuth)
	me.GET("/internships", h.MyStages)
	me.GET("/jobs", h.MyEmplois)
	me.GET("/trainings", h.MyFormations)

	mod := rg.Group("/moderation", requireAuth, requireAdmin)
	mod.GET("/internships", h.PendingStages)
	mod.GET("/internships/stats", h.StageStats)
	mod.GET("/jobs", h.PendingEmplois)
	mod.GET("/jobs/stats", h.EmploiStats)
	mod.GET("/trainings", h.PendingFormations)
	mod.GET("/trainings/stats", h.FormationStats)
}
