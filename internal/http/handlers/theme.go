package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masterfoodbrokers/crm-backend/internal/http/response"
	"github.com/masterfoodbrokers/crm-backend/internal/requestdata"
	"github.com/masterfoodbrokers/crm-backend/internal/services"
)

type ThemeHandler struct {
	themeService services.ThemeService
}

func NewThemeHandler(themeService services.ThemeService) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

// GET /api/theme
func (h *ThemeHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	resolved, err := h.themeService.Get(ctx, requestdata.UserID(ctx))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "theme_failed", err)
		return
	}
	response.RespondOK(c, resolved)
}

// PUT /api/theme
// body: { "preset": "...", "overrides": { "accent": "#ff8800" } }
func (h *ThemeHandler) Update(c *gin.Context) {
	var req services.ThemeChoice
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	ctx := c.Request.Context()
	resolved, err := h.themeService.Update(ctx, requestdata.UserID(ctx), req)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_theme", err)
		return
	}
	response.RespondOK(c, resolved)
}
