// Package middleware guards routes with bearer token authentication.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

// ActorResolver loads the acting user for a verified token subject.
type ActorResolver interface {
	GetActor(ctx context.Context, userID uuid.UUID) (*domain.Actor, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid access token and stores the
// resolved actor on the context.
func RequireAuth(mgr *auth.Manager, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentification requise."})
			return
		}
		userID, err := mgr.ParseAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Jeton invalide ou expiré."})
			return
		}
		actor, err := resolver.GetActor(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Compte introuvable ou désactivé."})
			return
		}
		auth.SetActor(c, actor)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a valid token is present and lets the
// request through either way. Public listings use it to tailor responses.
func OptionalAuth(mgr *auth.Manager, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		userID, err := mgr.ParseAccess(token)
		if err != nil {
			c.Next()
			return
		}
		if actor, err := resolver.GetActor(c.Request.Context(), userID); err == nil {
			auth.SetActor(c, actor)
		}
		c.Next()
	}
}

// RequireSiteAdmin comes after RequireAuth and narrows access to site admins.
func RequireSiteAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.ActorFrom(c)
		if !ok || !actor.IsSiteAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Vous n'avez pas la permission d'effectuer cette action."})
			return
		}
		c.Next()
	}
}
