// Package http exposes the reference collections: public cached reads and
// the site-admin CRUD.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/references/repository"
	"github.com/enspm-hub/hub-backend/internal/references/service"
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

func respondList(c *gin.Context, items any, err error) {
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"items": items})
}

// Annees handles GET /references/annees.
func (h *Handler) Annees(c *gin.Context) {
	items, err := h.svc.ListAnnees(c.Request.Context())
	respondList(c, items, err)
}

// Domaines handles GET /references/domaines.
func (h *Handler) Domaines(c *gin.Context) {
	items, err := h.svc.ListDomaines(c.Request.Context())
	respondList(c, items, err)
}

// Filieres handles GET /references/filieres, optionally ?domaine_id=….
func (h *Handler) Filieres(c *gin.Context) {
	var domaineID *uuid.UUID
	if v := c.Query("domaine_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			api.Fail(c, apperr.BadRequest("Identifiant de domaine invalide."))
			return
		}
		domaineID = &id
	}
	items, err := h.svc.ListFilieres(c.Request.Context(), domaineID)
	respondList(c, items, err)
}

// Secteurs handles GET /references/secteurs, ?parents=true for the top level.
func (h *Handler) Secteurs(c *gin.Context) {
	items, err := h.svc.ListSecteurs(c.Request.Context(), c.Query("parents") == "true")
	respondList(c, items, err)
}

// Postes handles GET /references/postes.
func (h *Handler) Postes(c *gin.Context) {
	items, err := h.svc.ListPostes(c.Request.Context())
	respondList(c, items, err)
}

// Devises handles GET /references/devises.
func (h *Handler) Devises(c *gin.Context) {
	items, err := h.svc.ListDevises(c.Request.Context())
	respondList(c, items, err)
}

// Devise handles GET /references/devises/:id, accepting either a row id or
// an ISO code.
func (h *Handler) Devise(c *gin.Context) {
	p := c.Param("id")
	if id, err := uuid.Parse(p); err == nil {
		d, err := service.GetRef(c.Request.Context(), h.svc, &h.svc.Collections().Devises, id)
		if err != nil {
			api.Fail(c, err)
			return
		}
		c.JSON(nethttp.StatusOK, d)
		return
	}
	d, err := h.svc.GetDeviseByCode(c.Request.Context(), p)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, d)
}

// Titres handles GET /references/titres.
func (h *Handler) Titres(c *gin.Context) {
	items, err := h.svc.ListTitres(c.Request.Context())
	respondList(c, items, err)
}

// Reseaux handles GET /references/reseaux.
func (h *Handler) Reseaux(c *gin.Context) {
	items, err := h.svc.ListReseaux(c.Request.Context())
	respondList(c, items, err)
}

// publicGet builds the detail handler for one collection.
func publicGet[T any](h *Handler, col *repository.Collection[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		v, err := service.GetRef(c.Request.Context(), h.svc, col, id)
		if err != nil {
			api.Fail(c, err)
			return
		}
		c.JSON(nethttp.StatusOK, v)
	}
}

// adminRoutes mounts the CRUD surface of one collection under the admin
// group: list with inactive rows, create, update, soft delete, restore.
func adminRoutes[T any, P interface {
	*T
	RefID() uuid.UUID
}](g *gin.RouterGroup, h *Handler, name string, col *repository.Collection[T], entityType string, keys []string) {
	g.GET("/"+name, func(c *gin.Context) {
		items, err := service.ListRef(c.Request.Context(), h.svc, auth.MustActor(c), col, entityType)
		respondList(c, items, err)
	})
	g.POST("/"+name, func(c *gin.Context) {
		var v T
		if err := c.ShouldBindJSON(&v); err != nil {
			api.BadBody(c, err)
			return
		}
		out, err := service.CreateRef[T, P](c.Request.Context(), h.svc, auth.MustActor(c), col, entityType, keys, &v)
		if err != nil {
			api.Fail(c, err)
			return
		}
		c.JSON(nethttp.StatusCreated, out)
	})
	g.PATCH("/"+name+"/:id", func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var v T
		if err := c.ShouldBindJSON(&v); err != nil {
			api.BadBody(c, err)
			return
		}
		out, err := service.UpdateRef[T, P](c.Request.Context(), h.svc, auth.MustActor(c), col, entityType, keys, id, &v)
		if err != nil {
			api.Fail(c, err)
			return
		}
		c.JSON(nethttp.StatusOK, out)
	})
	g.DELETE("/"+name+"/:id", func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		if err := service.DeleteRef[T, P](c.Request.Context(), h.svc, auth.MustActor(c), col, entityType, keys, id); err != nil {
			api.Fail(c, err)
			return
		}
		c.Status(nethttp.StatusNoContent)
	})
	g.POST("/"+name+"/:id/restore", func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		if err := service.RestoreRef[T, P](c.Request.Context(), h.svc, auth.MustActor(c), col, entityType, keys, id); err != nil {
			api.Fail(c, err)
			return
		}
		c.JSON(nethttp.StatusOK, gin.H{"detail": "Référence restaurée."})
	})
}
