// Package http exposes the organisation directory, membership and follower
// endpoints.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/organisations/domain"
	"github.com/enspm-hub/hub-backend/internal/organisations/service"
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

// Create handles POST /organisations.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	o, err := h.svc.Create(c.Request.Context(), auth.MustActor(c), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, o)
}

// List handles GET /organisations.
func (h *Handler) List(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	actor, _ := auth.ActorFrom(c)

	filters := domain.ListFilters{
		Search: c.Query("search"),
		Type:   domain.TypeOrganisation(c.Query("type")),
		Ville:  c.Query("ville"),
		Statut: domain.StatutOrganisation(c.Query("statut")),
	}
	if v := c.Query("secteur_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.SecteurID = &id
		}
	}

	orgs, total, err := h.svc.List(c.Request.Context(), actor, filters, pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(orgs, total, page, pageSize))
}

// GetBySlug handles GET /organisations/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	o, err := h.svc.GetBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, o)
}

// Update handles PATCH /organisations/:id.
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
	o, err := h.svc.Update(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, o)
}

// UpdateStatut handles POST /organisations/:id/statut (admin).
func (h *Handler) UpdateStatut(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req statutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	if err := h.svc.UpdateStatut(c.Request.Context(), auth.MustActor(c), id, domain.StatutOrganisation(req.Statut)); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Statut mis à jour."})
}

// UploadLogo handles POST /organisations/:id/logo (multipart).
func (h *Handler) UploadLogo(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("logo")
	if err != nil {
		api.Fail(c, apperr.BadRequest("Le champ 'logo' est obligatoire."))
		return
	}
	o, err := h.svc.UploadLogo(c.Request.Context(), auth.MustActor(c), id, fh)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, o)
}

// Delete handles DELETE /organisations/:id.
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

// Restore handles POST /organisations/:id/restore (admin).
func (h *Handler) Restore(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Restore(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Organisation restaurée."})
}

// ListMembres handles GET /organisations/:slug/membres.
func (h *Handler) ListMembres(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	o, err := h.svc.GetBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	membres, err := h.svc.ListMembres(c.Request.Context(), o.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"items": membres})
}

// AddMembre handles POST /organisations/:id/membres.
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
	m, err := h.svc.AddMembre(c.Request.Context(), auth.MustActor(c), id, req.ProfilID,
		domain.RoleMembre(req.Role), req.PosteID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, m)
}

// UpdateMembre handles PATCH /organisations/:id/membres/:membreId.
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
	m, err := h.svc.UpdateMembre(c.Request.Context(), auth.MustActor(c), id,
		domain.RoleMembre(req.Role), req.PosteID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, m)
}

// RemoveMembre handles DELETE /organisations/:id/membres/:membreId.
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

// Follow handles POST /organisations/:id/follow.
func (h *Handler) Follow(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	ab, err := h.svc.Follow(c.Request.Context(), auth.MustActor(c), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, ab)
}

// Unfollow handles DELETE /organisations/:id/follow.
func (h *Handler) Unfollow(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Unfollow(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// ListFollowers handles GET /organisations/:slug/followers.
func (h *Handler) ListFollowers(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)
	o, err := h.svc.GetBySlug(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	subs, total, err := h.svc.ListFollowers(c.Request.Context(), o.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"items": subs, "total": total})
}

// MyFollows handles GET /organisations/me/follows.
func (h *Handler) MyFollows(c *gin.Context) {
	subs, err := h.svc.ListMyFollows(c.Request.Context(), auth.MustActor(c))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"items": subs})
}
