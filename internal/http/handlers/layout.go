package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masterfoodbrokers/crm-backend/internal/http/response"
	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/render"
	"github.com/masterfoodbrokers/crm-backend/internal/requestdata"
	"github.com/masterfoodbrokers/crm-backend/internal/services"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

// reservedLayoutParams are the query parameters the layout endpoint
// consumes itself; everything else is passed to data bindings as a filter.
var reservedLayoutParams = map[string]bool{
	"mode":        true,
	"entity_type": true,
	"entity_id":   true,
	"token":       true,
}

type LayoutHandler struct {
	renderer      *render.Renderer
	layoutService services.LayoutService
	preferences   services.PreferenceService
}

func NewLayoutHandler(renderer *render.Renderer, layoutService services.LayoutService, preferences services.PreferenceService) *LayoutHandler {
	return &LayoutHandler{
		renderer:      renderer,
		layoutService: layoutService,
		preferences:   preferences,
	}
}

// GET /api/pages/:page/layout?mode=&entity_type=&entity_id=
// Remaining query parameters become binding filters. The response is always
// a rendered page; data failures surface as error nodes inside it.
func (h *LayoutHandler) GetPage(c *gin.Context) {
	mode, err := render.ParseMode(c.Query("mode"), h.renderer.DefaultMode())
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_mode", err)
		return
	}

	filters := map[string]string{}
	for k, vs := range c.Request.URL.Query() {
		if reservedLayoutParams[k] || len(vs) == 0 {
			continue
		}
		filters[k] = vs[0]
	}

	page, err := h.renderer.RenderPage(c.Request.Context(), render.Request{
		Page:       c.Param("page"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Mode:       mode,
		UserID:     requestdata.UserID(c.Request.Context()),
		Filters:    filters,
	})
	if err != nil {
		if errors.Is(err, render.ErrNoDocument) {
			response.RespondError(c, http.StatusNotFound, "page_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/layout/pages
func (h *LayoutHandler) ListPages(c *gin.Context) {
	response.RespondOK(c, gin.H{"pages": h.layoutService.Pages(c.Request.Context())})
}

// POST /api/layout/pages/:page/publish
// body: { "entity_type": "...", "document": { ... } }
func (h *LayoutHandler) Publish(c *gin.Context) {
	var req struct {
		EntityType string          `json:"entity_type"`
		Document   json.RawMessage `json:"document"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	doc, verrs := layout.ParseDocument(req.Document)
	if len(verrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  gin.H{"message": "layout document is invalid", "code": "invalid_document"},
			"fields": verrs,
		})
		return
	}

	rev, err := h.layoutService.Publish(c.Request.Context(), c.Param("page"), req.EntityType, doc)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "publish_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"revision": rev})
}

// GET /api/layout/pages/:page/revisions
func (h *LayoutHandler) ListRevisions(c *gin.Context) {
	revs, err := h.layoutService.Revisions(c.Request.Context(), c.Param("page"))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_revisions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"revisions": revs})
}

// GET /api/layout/preferences?key=&scope=&entity_type=
// Without a key, lists every preference the user has saved.
func (h *LayoutHandler) GetPreference(c *gin.Context) {
	ctx := c.Request.Context()
	userID := requestdata.UserID(ctx)

	key := c.Query("key")
	if key == "" {
		prefs, err := h.preferences.List(ctx, userID)
		if err != nil {
			response.RespondError(c, http.StatusInternalServerError, "list_preferences_failed", err)
			return
		}
		response.RespondOK(c, gin.H{"preferences": prefs})
		return
	}

	raw, err := h.preferences.LoadValue(ctx, userID, key, prefScope(c), c.Query("entity_type"))
	if err != nil {
		h.respondPreferenceError(c, err)
		return
	}
	if raw == nil {
		response.RespondError(c, http.StatusNotFound, "preference_not_found", errors.New("no preference saved"))
		return
	}
	response.RespondOK(c, gin.H{"key": key, "value": raw})
}

// PUT /api/layout/preferences
// body: { "key", "scope", "entity_type", "value": <json> } or, for layout
// documents, { ..., "document": { ... } } which is validated before saving.
func (h *LayoutHandler) SavePreference(c *gin.Context) {
	var req struct {
		Key        string          `json:"key"`
		Scope      string          `json:"scope"`
		EntityType string          `json:"entity_type"`
		Value      json.RawMessage `json:"value"`
		Document   json.RawMessage `json:"document"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	ctx := c.Request.Context()
	userID := requestdata.UserID(ctx)
	scope := types.PreferenceScope(req.Scope)
	if req.Scope == "" {
		scope = types.ScopePage
	}

	if len(req.Document) > 0 {
		doc, verrs := layout.ParseDocument(req.Document)
		if len(verrs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  gin.H{"message": "layout document is invalid", "code": "invalid_document"},
				"fields": verrs,
			})
			return
		}
		if err := h.preferences.SaveDocument(ctx, userID, req.Key, scope, req.EntityType, doc); err != nil {
			h.respondPreferenceError(c, err)
			return
		}
	} else {
		if err := h.preferences.SaveValue(ctx, userID, req.Key, scope, req.EntityType, req.Value); err != nil {
			h.respondPreferenceError(c, err)
			return
		}
	}
	response.RespondOK(c, gin.H{"saved": true})
}

// DELETE /api/layout/preferences?key=&scope=&entity_type=
func (h *LayoutHandler) DeletePreference(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("key is required"))
		return
	}
	ctx := c.Request.Context()
	if err := h.preferences.Delete(ctx, requestdata.UserID(ctx), key, prefScope(c), c.Query("entity_type")); err != nil {
		h.respondPreferenceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

func prefScope(c *gin.Context) types.PreferenceScope {
	if s := c.Query("scope"); s != "" {
		return types.PreferenceScope(s)
	}
	return types.ScopePage
}

func (h *LayoutHandler) respondPreferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrInvalidScope):
		response.RespondError(c, http.StatusBadRequest, "invalid_scope", err)
	default:
		var verrs layout.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  gin.H{"message": "layout document is invalid", "code": "invalid_document"},
				"fields": verrs,
			})
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "preference_failed", err)
	}
}
