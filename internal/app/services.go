package app

import (
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/components"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/render"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/static"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/queries"
	"github.com/masterfoodbrokers/crm-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Preference   services.PreferenceService
	Layout       services.LayoutService
	Theme        services.ThemeService
	Organization services.OrganizationService
}

// Engine is the assembled layout pipeline: the component registry, the query
// catalog with its cache, the binding store and the renderer.
type Engine struct {
	Registry   *registry.Registry
	Catalog    *binding.Catalog
	Store      *binding.Store
	Binder     *binding.Binder
	Renderer   *render.Renderer
	QueryCache *queries.Cache
	Static     *static.Catalog
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, rdb *goredis.Client) (Services, *Engine, error) {
	log.Info("wiring services")

	svc := Services{
		Auth: services.NewAuthService(db, log, reposet.User, reposet.UserToken,
			cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Preference:   services.NewPreferenceService(log, reposet.LayoutPreference),
		Organization: services.NewOrganizationService(log, reposet.Organization, reposet.Contact, reposet.Interaction),
	}
	svc.Theme = services.NewThemeService(log, svc.Preference)

	policy := registry.PolicyStrict
	if !cfg.RegistryStrict {
		policy = registry.PolicyOverwrite
	}
	reg := registry.New(log, registry.Options{Policy: policy})
	if err := components.RegisterBuiltins(reg); err != nil {
		return Services{}, nil, err
	}

	queryCache := queries.NewCache(rdb, log)
	catalog := binding.NewCatalog()
	if err := queries.Register(catalog, queries.Deps{
		Orgs:         reposet.Organization,
		Contacts:     reposet.Contact,
		Interactions: reposet.Interaction,
		Cache:        queryCache,
		Log:          log,
		TTL:          cfg.CacheTTL,
	}); err != nil {
		return Services{}, nil, err
	}

	store := binding.NewStore()
	binder := binding.NewBinder(catalog, store, log)
	builtin := static.NewCatalog(log)

	svc.Layout = services.NewLayoutService(log, reposet.LayoutRevision, svc.Preference, builtin)

	engine := &Engine{
		Registry:   reg,
		Catalog:    catalog,
		Store:      store,
		Binder:     binder,
		Renderer:   render.NewRenderer(reg, binder, svc.Layout, builtin, cfg.RenderMode, log),
		QueryCache: queryCache,
		Static:     builtin,
	}
	return svc, engine, nil
}
