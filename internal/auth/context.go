package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

const actorKey = "auth.actor"

// SetActor stores the resolved acting user on the request context.
func SetActor(c *gin.Context, a *domain.Actor) {
	c.Set(actorKey, a)
}

// ActorFrom retrieves the acting user, if a middleware resolved one.
func ActorFrom(c *gin.Context) (*domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*domain.Actor)
	return a, ok
}

// MustActor is for handlers behind RequireAuth, where the actor is always set.
func MustActor(c *gin.Context) *domain.Actor {
	a, _ := ActorFrom(c)
	return a
}
