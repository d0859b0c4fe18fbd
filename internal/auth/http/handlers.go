// Package http exposes the authentication endpoints.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	api "github.com/enspm-hub/hub-backend/internal/api/http"
	"github.com/enspm-hub/hub-backend/internal/auth"
	"github.com/enspm-hub/hub-backend/internal/auth/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	actor, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    toActorResponse(actor),
	})
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, pair)
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	actor := auth.MustActor(c)
	c.JSON(nethttp.StatusOK, toActorResponse(actor))
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	actor := auth.MustActor(c)
	if err := h.svc.Logout(c.Request.Context(), actor); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Déconnexion effectuée."})
}

// RecoverPassword handles POST /auth/password/recover.
func (h *Handler) RecoverPassword(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Si un compte existe avec cette adresse, un code a été envoyé."})
}

// ConfirmPasswordReset handles POST /auth/password/confirm.
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadBody(c, err)
		return
	}
	if err := h.svc.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"detail": "Mot de passe réinitialisé."})
}
