// Package http exposes the read-only audit trail to site admins.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/apperr"
	"github.com/enspm-hub/hub-backend/internal/audit"
)

type Handler struct {
	pool *pgxpool.Pool
	rec  *audit.Recorder
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool, rec: audit.NewRecorder()}
}

// List handles GET /audit. Entries come back newest first; there is no
// write surface, the trail is append-only and fed by the services.
func (h *Handler) List(c *gin.Context) {
	page, pageSize := api.PageParams(c)

	f := audit.ListFilters{
		EntityType: c.Query("entity_type"),
		Action:     audit.Action(c.Query("action")),
	}
	if f.Action != "" && !f.Action.Valid() {
		api.Fail(c, apperr.BadRequest("Action d'audit inconnue."))
		return
	}
	if v := c.Query("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			api.Fail(c, apperr.BadRequest("Identifiant d'acteur invalide."))
			return
		}
		f.ActorID = &id
	}

	entries, total, err := h.rec.List(c.Request.Context(), h.pool, f, pageSize, api.Offset(page, pageSize))
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, api.Paginated(entries, total, page, pageSize))
}

// RegisterRoutes mounts the audit listing behind the admin gate.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, requireAuth, requireAdmin gin.HandlerFunc) {
	rg.GET("/audit", requireAuth, requireAdmin, h.List)
}
