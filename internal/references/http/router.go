package http

import (
	"github.com/gin-gonic/gin"

	"github.com/enspm-hub/hub-backend/internal/references/cache"
	"github.com/enspm-hub/hub-backend/internal/references/domain"
)

// RegisterRoutes mounts the reference endpoints. Public reads need no
// authentication; the CRUD surface under /references/admin is site-admin
// territory.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, requireAuth, requireAdmin gin.HandlerFunc) {
	g := rg.Group("/references")

	repo := h.svc.Collections()

	g.GET("/annees", h.Annees)
	g.GET("/annees/:id", publicGet(h, &repo.Annees))
	g.GET("/domaines", h.Domaines)
	g.GET("/domaines/:id", publicGet(h, &repo.Domaines))
	g.GET("/filieres", h.Filieres)
	g.GET("/filieres/:id", publicGet(h, &repo.Filieres))
	g.GET("/secteurs", h.Secteurs)
	g.GET("/secteurs/:id", publicGet(h, &repo.Secteurs))
	g.GET("/postes", h.Postes)
	g.GET("/postes/:id", publicGet(h, &repo.Postes))
	g.GET("/devises", h.Devises)
	g.GET("/devises/:id", h.Devise)
	g.GET("/titres", h.Titres)
	g.GET("/titres/:id", publicGet(h, &repo.Titres))
	g.GET("/reseaux", h.Reseaux)
	g.GET("/reseaux/:id", publicGet(h, &repo.Reseaux))

	admin := g.Group("/admin", requireAuth, requireAdmin)
	adminRoutes[domain.AnneePromotion, *domain.AnneePromotion](admin, h, "annees", &repo.Annees, "AnneePromotion", []string{cache.KeyAnnees})
	adminRoutes[domain.Domaine, *domain.Domaine](admin, h, "domaines", &repo.Domaines, "Domaine", []string{cache.KeyDomaines})
	adminRoutes[domain.Filiere, *domain.Filiere](admin, h, "filieres", &repo.Filieres, "Filiere", []string{cache.KeyFilieres})
	adminRoutes[domain.SecteurActivite, *domain.SecteurActivite](admin, h, "secteurs", &repo.Secteurs, "SecteurActivite", []string{cache.KeySecteurs, cache.KeySecteursParents})
	adminRoutes[domain.Poste, *domain.Poste](admin, h, "postes", &repo.Postes, "Poste", []string{cache.KeyPostes})
	adminRoutes[domain.Devise, *domain.Devise](admin, h, "devises", &repo.Devises, "Devise", []string{cache.KeyDevises})
	adminRoutes[domain.TitreHonorifique, *domain.TitreHonorifique](admin, h, "titres", &repo.Titres, "TitreHonorifique", []string{cache.KeyTitres})
	adminRoutes[domain.ReseauSocial, *domain.ReseauSocial](admin, h, "reseaux", &repo.Reseaux, "ReseauSocial", []string{cache.KeyReseaux})
}
