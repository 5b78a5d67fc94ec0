// Package app assembles the process: config, database, redis, the layout
// engine, services, handlers and the router. main only calls New, Start and
// Run.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	redisclient "github.com/masterfoodbrokers/crm-backend/internal/clients/redis"
	"github.com/masterfoodbrokers/crm-backend/internal/db"
	internalhttp "github.com/masterfoodbrokers/crm-backend/internal/http"
	"github.com/masterfoodbrokers/crm-backend/internal/observability"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/sse"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *internalhttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Engine   *Engine
	SSEHub   *sse.Hub

	invalidation *redisclient.InvalidationBus
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	rdb, err := redisclient.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	reposet := wireRepos(theDB, log)
	serviceset, engine, err := wireServices(theDB, log, cfg, reposet, rdb)
	if err != nil {
		log.Sync()
		return nil, err
	}

	hub := sse.NewHub(log)
	handlerset := wireHandlers(theDB, log, serviceset, engine, hub)
	middleware := wireMiddleware(log, serviceset)
	server := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Engine:       engine,
		SSEHub:       hub,
		invalidation: redisclient.NewInvalidationBus(rdb, log),
	}, nil
}

// Start launches the background plumbing: tracing, the cache invalidation
// listener, and the forwarders that turn service events into SSE messages.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.ServiceName,
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
	})

	if a.invalidation != nil {
		if err := a.invalidation.StartForwarder(ctx, a.Engine.QueryCache.InvalidateLocal); err != nil {
			a.Log.Warn("cache invalidation listener not started", "error", err)
		}
	}

	go a.forwardPreferenceChanges(ctx)
	go a.forwardLayoutPublishes(ctx)
	go a.forwardBindingUpdates(ctx)
}

func (a *App) forwardPreferenceChanges(ctx context.Context) {
	for ev := range a.Services.Preference.Changes(ctx) {
		a.SSEHub.SendToUser(ev.Payload.UserID, sse.Message{
			Event: sse.EventPreferenceSaved,
			Data:  ev.Payload,
		})
	}
}

func (a *App) forwardLayoutPublishes(ctx context.Context) {
	for ev := range a.Services.Layout.Publishes(ctx) {
		a.SSEHub.Broadcast(sse.Message{
			Event: sse.EventLayoutPublished,
			Data:  ev.Payload,
		})
	}
}

func (a *App) forwardBindingUpdates(ctx context.Context) {
	for ev := range a.Engine.Store.Subscribe(ctx) {
		a.SSEHub.Broadcast(sse.Message{
			Event: sse.EventBindingUpdated,
			Data: map[string]any{
				"name":  ev.Payload.Name,
				"state": ev.Payload.State,
				"seq":   ev.Payload.Seq,
			},
		})
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
		a.otelShutdown = nil
	}
	if a.SSEHub != nil {
		a.SSEHub.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
