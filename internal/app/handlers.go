package app

import (
	"gorm.io/gorm"

	httpH "github.com/masterfoodbrokers/crm-backend/internal/http/handlers"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/sse"
)

type Handlers struct {
	Auth         *httpH.AuthHandler
	Layout       *httpH.LayoutHandler
	Component    *httpH.ComponentHandler
	Theme        *httpH.ThemeHandler
	Organization *httpH.OrganizationHandler
	SSE          *httpH.SSEHandler
	Health       *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services, engine *Engine, hub *sse.Hub) Handlers {
	log.Info("wiring handlers")
	return Handlers{
		Auth:         httpH.NewAuthHandler(svc.Auth),
		Layout:       httpH.NewLayoutHandler(engine.Renderer, svc.Layout, svc.Preference),
		Component:    httpH.NewComponentHandler(engine.Registry, engine.Catalog),
		Theme:        httpH.NewThemeHandler(svc.Theme),
		Organization: httpH.NewOrganizationHandler(svc.Organization),
		SSE:          httpH.NewSSEHandler(hub),
		Health:       httpH.NewHealthHandler(db),
	}
}
