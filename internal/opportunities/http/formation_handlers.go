package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/moderation"
)

// CreateFormation handles POST /trainings.
func (h *Handler) CreateFormation(c *gin.Context) {
	var req formationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	f, err := h.svc.CreateFormation(c.Request.Context(), auth.MustActor(c), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, f)
}

// ListFormations handles GET /trainings, the public training board.
func (h *Handler) ListFormations(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	actor, _ := auth.ActorFrom(c)
	items, total, err := h.svc.ListFormations(c.Request.Context(), actor, listingFilters(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// PendingFormations handles GET /moderation/trainings.
func (h *Handler) PendingFormations(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	items, total, err := h.svc.ListPendingFormations(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// GetFormation handles GET /trainings/:slug.
func (h *Handler) GetFormation(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	f, err := h.svc.GetFormationBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, f)
}

// UpdateFormation handles PATCH /trainings/:id.
func (h *Handler) UpdateFormation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req formationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	f, err := h.svc.UpdateFormation(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, f)
}

// ValidateFormation handles POST /trainings/:id/validate.
func (h *Handler) ValidateFormation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	f, err := h.svc.ValidateFormation(c.Request.Context(), auth.MustActor(c), id, *req.Approuve, req.Commentaire)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, f)
}

// UpdateFormationStatus handles POST /trainings/:id/statut.
func (h *Handler) UpdateFormationStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req statutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	f, err := h.svc.UpdateFormationStatus(c.Request.Context(), auth.MustActor(c), id, moderation.Status(req.Statut))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, f)
}

// DeleteFormation handles DELETE /trainings/:id.
func (h *Handler) DeleteFormation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteFormation(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// RestoreFormation handles POST /trainings/:id/restore.
func (h *Handler) RestoreFormation(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RestoreFormation(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Formation restaurée."})
}

// MyFormations handles GET /me/trainings.
func (h *Handler) MyFormations(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	items, total, err := h.svc.MyFormations(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// FormationStats handles GET /moderation/trainings/stats.
func (h *Handler) FormationStats(c *gin.Context) {
	stats, err := h.svc.FormationStats(c.Request.Context(), auth.MustActor(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, stats)
}
