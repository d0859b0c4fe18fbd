// Package http exposes the member directory, profiles and account management.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
	"github.com/enspm-hub/hub-backend/internal/users/service"
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

// Register handles POST /users/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	actor, err := h.svc.Register(c.Request.Context(), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, toMemberView(*actor))
}

// List handles GET /users, the member directory.
func (h *Handler) List(c *gin.Context) {
	page, pageSize := api.PageParams(c)
	filters := domain.ListFilters{
		Search:       c.Query("search"),
		StatutGlobal: domain.StatutGlobal(c.Query("statut_global")),
	}
	if v := c.Query("domaine_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.DomaineID = &id
		}
	}
	if v := c.Query("annee_sortie_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.AnneeSortie = &id
		}
	}

	members, total, err := h.svc.List(c.Request.Context(), filters, pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	items := make([]memberView, 0, len(members))
	for _, m := range members {
		items = append(items, toMemberView(m))
	}
	c.JSON(nethttp.StatusOK, api.Paginated(items, total, page, pageSize))
}

// GetBySlug handles GET /users/:slug, the public profile page.
func (h *Handler) GetBySlug(c *gin.Context) {
	p, err := h.svc.GetProfileBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		api.Fail(c, err)
		return
	}
	experiences, err := h.svc.ListExperiences(c.Request.Context(), p.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	links, err := h.svc.ListSocialLinks(c.Request.Context(), p.ID)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"profil":        p,
		"experiences":   experiences,
		"liens_sociaux": links,
	})
}

// UpdateProfile handles PATCH /users/profiles/:id.
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, p)
}

// UploadPhoto handles POST /users/profiles/:id/photo (multipart).
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
	p, err := h.svc.UpdatePhoto(c.Request.Context(), auth.MustActor(c), id, fh)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, p)
}

// ChangePassword handles POST /users/me/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), auth.MustActor(c), req.CurrentPassword, req.NewPassword); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Mot de passe modifié."})
}

// AddExperience handles POST /users/me/experiences.
func (h *Handler) AddExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	e, err := h.svc.AddExperience(c.Request.Context(), auth.MustActor(c), req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, e)
}

// UpdateExperience handles PUT /users/experiences/:id.
func (h *Handler) UpdateExperience(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	e, err := h.svc.UpdateExperience(c.Request.Context(), auth.MustActor(c), id, req.toInput())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, e)
}

// RemoveExperience handles DELETE /users/experiences/:id.
func (h *Handler) RemoveExperience(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveExperience(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// SetSocialLink handles PUT /users/me/social-links.
func (h *Handler) SetSocialLink(c *gin.Context) {
	var req socialLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	link, err := h.svc.SetSocialLink(c.Request.Context(), auth.MustActor(c), req.ReseauID, req.URL)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, link)
}

// RemoveSocialLink handles DELETE /users/social-links/:id.
func (h *Handler) RemoveSocialLink(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveSocialLink(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// SetActive handles POST /users/:id/active (admin).
func (h *Handler) SetActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), auth.MustActor(c), id, *req.EstActif); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Statut du compte mis à jour."})
}

// SetRole handles POST /users/:id/role (super admin).
func (h *Handler) SetRole(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	if err := h.svc.UpdateRole(c.Request.Context(), auth.MustActor(c), id, domain.RoleSysteme(req.RoleSysteme)); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Rôle mis à jour."})
}

// Delete handles DELETE /users/:id.
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

// Restore handles POST /users/:id/restore (admin).
func (h *Handler) Restore(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Restore(c.Request.Context(), auth.MustActor(c), id); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Compte restauré."})
}
