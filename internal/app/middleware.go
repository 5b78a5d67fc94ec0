package app

import (
	httpMW "github.com/masterfoodbrokers/crm-backend/internal/http/middleware"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	log.Info("wiring middleware")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, svc.Auth),
	}
}
