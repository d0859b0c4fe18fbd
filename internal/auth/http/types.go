package http

import (
	"github.com/enspm-hub/hub-backend/internal/users/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type recoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type confirmResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type actorResponse struct {
	User   domain.User    `json:"user"`
	Profil *domain.Profil `json:"profil,omitempty"`
}

func toActorResponse(a *domain.Actor) actorResponse {
	return actorResponse{User: a.User, Profil: a.Profil}
}
