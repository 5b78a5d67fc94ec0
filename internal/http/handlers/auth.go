// Package handlers holds the gin handlers behind the HTTP API. Handlers
// translate between the wire and the services; no business logic lives here.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masterfoodbrokers/crm-backend/internal/http/response"
	"github.com/masterfoodbrokers/crm-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
// body: { "email", "password", "first_name", "last_name" }
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.RespondError(c, http.StatusConflict, "email_taken", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "register_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/login
// body: { "email", "password" }
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "login_failed", err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/refresh
// body: { "refresh_token" }
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; an authenticated request can refresh from context.
	_ = c.ShouldBindJSON(&req)

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			response.RespondError(c, http.StatusUnauthorized, "token_expired", err)
		case errors.Is(err, services.ErrNotAuthenticated):
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		default:
			response.RespondError(c, http.StatusInternalServerError, "refresh_failed", err)
		}
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "logout_failed", err)
		return
	}
	response.RespondNoContent(c)
}
