package app

import (
	internalhttp "github.com/masterfoodbrokers/crm-backend/internal/http"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/envutil"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *internalhttp.Server {
	return internalhttp.NewServer(internalhttp.RouterConfig{
		Log:         log,
		ServiceName: cfg.ServiceName,
		Tracing:     envutil.Bool("OTEL_ENABLED", false),

		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,

		LayoutHandler:       handlers.Layout,
		ComponentHandler:    handlers.Component,
		ThemeHandler:        handlers.Theme,
		OrganizationHandler: handlers.Organization,
		SSEHandler:          handlers.SSE,
		HealthHandler:       handlers.Health,
	})
}
