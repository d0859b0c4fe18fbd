package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/moderation"
)

// CreateEmploi handles POST /jobs.
func (h *Handler) CreateEmploi(c *gin.Context) {
	var req emploiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	e, err := h.svc.CreateEmploi(c.Request.Context(), auth.MustActor(c), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, e)
}

// ListEmplois handles GET /jobs, the public job board.
func (h *Handler) ListEmplois(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	actor, _ := auth.ActorFrom(c)
	items, total, err := h.svc.ListEmplois(c.Request.Context(), actor, listingFilters(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// PendingEmplois handles GET /moderation/jobs.
func (h *Handler) PendingEmplois(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	items, total, err := h.svc.ListPendingEmplois(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// GetEmploi handles GET /jobs/:slug.
func (h *Handler) GetEmploi(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	e, err := h.svc.GetEmploiBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, e)
}

// UpdateEmploi handles PATCH /jobs/:id.
func (h *Handler) UpdateEmploi(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req emploiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	e, err := h.svc.UpdateEmploi(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, e)
}

// ValidateEmploi handles POST /jobs/:id/validate.
func (h *Handler) ValidateEmploi(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	e, err := h.svc.ValidateEmploi(c.Request.Context(), auth.MustActor(c), id, *req.Approuve, req.Commentaire)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, e)
}

// UpdateEmploiStatus handles POST /jobs/:id/statut.
func (h *Handler) UpdateEmploiStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req statutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	e, err := h.svc.UpdateEmploiStatus(c.Request.Context(), auth.MustActor(c), id, moderation.Status(req.Statut))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, e)
}

// DeleteEmploi handles DELETE /jobs/:id.
func (h *Handler) DeleteEmploi(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteEmploi(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// RestoreEmploi handles POST /jobs/:id/restore.
func (h *Handler) RestoreEmploi(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RestoreEmploi(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Offre d'emploi restaurée."})
}

// MyEmplois handles GET /me/jobs.
func (h *Handler) MyEmplois(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	items, total, err := h.svc.MyEmplois(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// EmploiStats handles GET /moderation/jobs/stats.
func (h *Handler) EmploiStats(c *gin.Context) {
	stats, err := h.svc.EmploiStats(c.Request.Context(), auth.MustActor(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, stats)
}
