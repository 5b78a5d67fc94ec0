// Package http assembles the gin engine: routes, middleware order and the
// server wrapper. Handler construction happens in the app package; this
// package only wires what it is given.
package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/masterfoodbrokers/crm-backend/internal/http/handlers"
	httpMW "github.com/masterfoodbrokers/crm-backend/internal/http/middleware"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	// ServiceName labels traces when tracing is enabled.
	ServiceName string
	Tracing     bool

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	LayoutHandler       *httpH.LayoutHandler
	ComponentHandler    *httpH.ComponentHandler
	ThemeHandler        *httpH.ThemeHandler
	OrganizationHandler *httpH.OrganizationHandler
	SSEHandler          *httpH.SSEHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.Check)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Layout rendering and authoring
		if cfg.LayoutHandler != nil {
			protected.GET("/pages/:page/layout", cfg.LayoutHandler.GetPage)

			protected.GET("/layout/pages", cfg.LayoutHandler.ListPages)
			protected.POST("/layout/pages/:page/publish", cfg.LayoutHandler.Publish)
			protected.GET("/layout/pages/:page/revisions", cfg.LayoutHandler.ListRevisions)

			protected.GET("/layout/preferences", cfg.LayoutHandler.GetPreference)
			protected.PUT("/layout/preferences", cfg.LayoutHandler.SavePreference)
			protected.DELETE("/layout/preferences", cfg.LayoutHandler.DeletePreference)
		}

		// Catalogs for the layout builder
		if cfg.ComponentHandler != nil {
			protected.GET("/components", cfg.ComponentHandler.ListComponents)
			protected.GET("/queries", cfg.ComponentHandler.ListQueries)
		}

		if cfg.ThemeHandler != nil {
			protected.GET("/theme", cfg.ThemeHandler.Get)
			protected.PUT("/theme", cfg.ThemeHandler.Update)
		}

		// CRM reads
		if cfg.OrganizationHandler != nil {
			protected.GET("/organizations", cfg.OrganizationHandler.List)
			protected.GET("/organizations/:id", cfg.OrganizationHandler.Get)
		}

		// Realtime (SSE)
		if cfg.SSEHandler != nil {
			protected.GET("/events", cfg.SSEHandler.Stream)
		}
	}

	return r
}
