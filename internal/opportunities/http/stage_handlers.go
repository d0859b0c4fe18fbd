// Package http exposes the internship, job and training boards.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/moderation"
	"github.com/enspm-hub/hub-backend/internal/opportunities/domain"
	"github.com/enspm-hub/hub-backend/internal/opportunities/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		api.Fail(c, apperr.BadRequest("Identifiant invalide."))
		return uuid.Nil, false
	}
	return id, true
}

func listingFilters(c *gin.Context) domain.ListFilters {
	return domain.ListFilters{
		Search: c.Query("search"),
		Type:   c.Query("type"),
		Ville:  c.Query("ville"),
		Pays:   c.Query("pays"),
		Statut: moderation.Status(c.Query("statut")),
	}
}

// CreateStage handles POST /internships.
func (h *Handler) CreateStage(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	s, err := h.svc.CreateStage(c.Request.Context(), auth.MustActor(c), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, s)
}

// ListStages handles GET /internships, the public internship board.
func (h *Handler) ListStages(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	actor, _ := auth.ActorFrom(c)
	items, total, err := h.svc.ListStages(c.Request.Context(), actor, listingFilters(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// PendingStages handles GET /moderation/internships, the review queue.
func (h *Handler) PendingStages(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	items, total, err := h.svc.ListPendingStages(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// GetStage handles GET /internships/:slug.
func (h *Handler) GetStage(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	s, err := h.svc.GetStageBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, s)
}

// UpdateStage handles PATCH /internships/:id.
func (h *Handler) UpdateStage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	s, err := h.svc.UpdateStage(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, s)
}

// ValidateStage handles POST /internships/:id/validate.
func (h *Handler) ValidateStage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	s, err := h.svc.ValidateStage(c.Request.Context(), auth.MustActor(c), id, *req.Approuve, req.Commentaire)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, s)
}

// UpdateStageStatus handles POST /internships/:id/statut.
func (h *Handler) UpdateStageStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req statutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	s, err := h.svc.UpdateStageStatus(c.Request.Context(), auth.MustActor(c), id, moderation.Status(req.Statut))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, s)
}

// DeleteStage handles DELETE /internships/:id.
func (h *Handler) DeleteStage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteStage(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// RestoreStage handles POST /internships/:id/restore.
func (h *Handler) RestoreStage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RestoreStage(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Offre de stage restaurée."})
}

// MyStages handles GET /me/internships.
func (h *Handler) MyStages(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	items, total, err := h.svc.MyStages(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// StageStats handles GET /moderation/internships/stats.
func (h *Handler) StageStats(c *gin.Context) {
	stats, err := h.svc.StageStats(c.Request.Context(), auth.MustActor(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, stats)
}
