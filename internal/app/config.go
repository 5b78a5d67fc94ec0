package app

import (
	"time"

	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/render"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/envutil"
)

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// RenderMode is the default when a request does not ask for one.
	RenderMode render.Mode
	// RegistryStrict makes duplicate component keys a startup error.
	RegistryStrict bool
	// CacheTTL is the base freshness window for layout query results.
	CacheTTL time.Duration

	ServiceName string
	Environment string
	Version     string
}

func LoadConfig() Config {
	mode, err := render.ParseMode(envutil.String("LAYOUT_RENDER_MODE", ""), render.ModeAuto)
	if err != nil {
		mode = render.ModeAuto
	}
	return Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Duration("REFRESH_TOKEN_TTL", 24*time.Hour),

		RenderMode:     mode,
		RegistryStrict: envutil.Bool("LAYOUT_REGISTRY_STRICT", true),
		CacheTTL:       envutil.Duration("LAYOUT_CACHE_TTL", binding.DefaultTTL),

		ServiceName: envutil.String("OTEL_SERVICE_NAME", "crm-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", ""),
	}
}
