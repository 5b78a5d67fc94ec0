package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masterfoodbrokers/crm-backend/internal/http/response"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
)

// ComponentHandler exposes the component and query catalogs to the layout
// builder, which needs them to offer valid choices.
type ComponentHandler struct {
	registry *registry.Registry
	catalog  *binding.Catalog
}

func NewComponentHandler(reg *registry.Registry, catalog *binding.Catalog) *ComponentHandler {
	return &ComponentHandler{registry: reg, catalog: catalog}
}

type componentInfo struct {
	Key      string            `json:"key"`
	Category registry.Category `json:"category"`
}

// GET /api/components?category=
func (h *ComponentHandler) ListComponents(c *gin.Context) {
	var out []componentInfo

	if raw := c.Query("category"); raw != "" {
		cat := registry.Category(raw)
		switch cat {
		case registry.CategoryUI, registry.CategoryForms, registry.CategoryFilters,
			registry.CategoryLayout, registry.CategoryData:
		default:
			response.RespondError(c, http.StatusBadRequest, "invalid_category", errors.New("unknown component category"))
			return
		}
		for _, e := range h.registry.GetByCategory(cat) {
			out = append(out, componentInfo{Key: e.Key, Category: e.Category})
		}
		response.RespondOK(c, gin.H{"components": out})
		return
	}

	for _, cat := range []registry.Category{
		registry.CategoryUI, registry.CategoryForms, registry.CategoryFilters,
		registry.CategoryLayout, registry.CategoryData,
	} {
		for _, e := range h.registry.GetByCategory(cat) {
			out = append(out, componentInfo{Key: e.Key, Category: e.Category})
		}
	}
	response.RespondOK(c, gin.H{"components": out})
}

// GET /api/queries
func (h *ComponentHandler) ListQueries(c *gin.Context) {
	response.RespondOK(c, gin.H{"queries": h.catalog.Names()})
}
