// Package http exposes the group directory and membership endpoints.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/groups/domain"
	"github.com/enspm-hub/hub-backend/internal/groups/service"
	"github.com/enspm-hub/hub-backend/internal/moderation"
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

// Create handles POST /groups.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	g, err := h.svc.Create(c.Request.Context(), auth.MustActor(c), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, g)
}

// List handles GET /groups.
func (h *Handler) List(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	actor, _ := auth.ActorFrom(c)

	filters := domain.ListFilters{
		Search: c.Query("search"),
		Type:   domain.TypeGroupe(c.Query("type")),
		Statut: moderation.Status(c.Query("statut")),
	}

	groups, total, err := h.svc.List(c.Request.Context(), actor, filters, pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(groups, total, page, pageSize))
}

// Pending handles GET /moderation/groups (admin).
func (h *Handler) Pending(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	groups, total, err := h.svc.ListPending(c.Request.Context(), auth.MustActor(c), pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(groups, total, page, pageSize))
}

// GetBySlug handles GET /groups/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	g, err := h.svc.GetBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, g)
}

// Update handles PATCH /groups/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	g, err := h.svc.Update(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, g)
}

// Validate handles POST /groups/:id/validate (admin).
func (h *Handler) Validate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	g, err := h.svc.Validate(c.Request.Context(), auth.MustActor(c), id, *req.Approuve, req.Commentaire)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, g)
}

// UploadPhoto handles POST /groups/:id/photo (multipart).
func (h *Handler) UploadPhoto(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		api.Fail(c, apperr.BadRequest("Le champ 'photo' est obligatoire."))
		return
	}
	g, err := h.svc.UploadPhoto(c.Request.Context(), auth.MustActor(c), id, fh)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, g)
}

// Delete handles DELETE /groups/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SoftDelete(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// Restore handles POST /groups/:id/restore (admin).
func (h *Handler) Restore(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Restore(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Groupe restauré."})
}

// ListMembres handles GET /groups/:slug/membres.
func (h *Handler) ListMembres(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	g, err := h.svc.GetBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	membres, err := h.svc.ListMembres(c.Request.Context(), g.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"items": membres})
}

// Join handles POST /groups/:id/join.
func (h *Handler) Join(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Join(c.Request.Context(), auth.MustActor(c), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, m)
}

// Leave handles DELETE /groups/:id/join.
func (h *Handler) Leave(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// AddMembre handles POST /groups/:id/membres.
func (h *Handler) AddMembre(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req addMembreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	m, err := h.svc.AddMembre(c.Request.Context(), auth.MustActor(c), id, req.ProfilID, domain.RoleMembre(req.Role))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, m)
}

// UpdateMembre handles PATCH /groups/:id/membres/:membreId.
func (h *Handler) UpdateMembre(c *gin.Context) {
	id, ok := pathUUID(c, "membreId")
	if !ok {
		return
	}
	var req updateMembreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	m, err := h.svc.UpdateMembre(c.Request.Context(), auth.MustActor(c), id, domain.RoleMembre(req.Role))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, m)
}

// RemoveMembre handles DELETE /groups/:id/membres/:membreId.
func (h *Handler) RemoveMembre(c *gin.Context) {
	id, ok := pathUUID(c, "membreId")
	if !ok {
		return
	}
	if err := h.svc.RemoveMembre(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// MyGroups handles GET /me/groups.
func (h *Handler) MyGroups(c *gin.Context) {
	membres, err := h.svc.ListMyGroups(c.Request.Context(), auth.MustActor(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"items": membres})
}
