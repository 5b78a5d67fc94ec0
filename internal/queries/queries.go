package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

// Query names layout documents bind to. Renaming one is a breaking change
// for every stored document that references it.
const (
	OrganizationsList      = "organizations.list"
	OrganizationDetail     = "organizations.detail"
	ContactsByOrganization = "contacts.byOrganization"
	InteractionsRecent     = "interactions.recent"
	DashboardMetrics       = "dashboard.metrics"
)

const (
	recentInteractionLimit = 20
	defaultListLimit       = 50
)

// Deps is everything the catalog reads from.
type Deps struct {
	Orgs         repos.OrganizationRepo
	Contacts     repos.ContactRepo
	Interactions repos.InteractionRepo
	Cache        *Cache
	Log          *logger.Logger

	// TTL is the base freshness window for query results; per-query windows
	// scale from it. Zero means binding.DefaultTTL.
	TTL time.Duration
}

func (d Deps) baseTTL() time.Duration {
	if d.TTL > 0 {
		return d.TTL
	}
	return binding.DefaultTTL
}

// Register wires every CRM query into the binding catalog. Called once at
// startup; a duplicate name is a programming error. Detail and recency
// queries stay fresher than the base window, the dashboard numbers a little
// staler.
func Register(cat *binding.Catalog, deps Deps) error {
	deps.TTL = deps.baseTTL()
	defs := []binding.QueryDef{
		{Name: OrganizationsList, TTL: deps.TTL, Fetch: deps.organizationsList},
		{Name: OrganizationDetail, TTL: deps.TTL / 2, Fetch: deps.organizationDetail},
		{Name: ContactsByOrganization, TTL: deps.TTL, Fetch: deps.contactsByOrganization},
		{Name: InteractionsRecent, TTL: deps.TTL / 2, Fetch: deps.interactionsRecent},
		{Name: DashboardMetrics, TTL: 2 * deps.TTL, Fetch: deps.dashboardMetrics},
	}
	for _, def := range defs {
		if err := cat.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (d Deps) organizationsList(ctx context.Context, p binding.Params) (any, error) {
	filter := repos.OrganizationFilter{
		Kind:     types.OrganizationKind(p.Filters["kind"]),
		Priority: types.OrganizationPriority(p.Filters["priority"]),
		Query:    p.Filters["q"],
		Limit:    defaultListLimit,
	}
	key := paramsKey(map[string]string{
		"kind":     string(filter.Kind),
		"priority": string(filter.Priority),
		"q":        filter.Query,
	})
	return d.Cache.Do(ctx, OrganizationsList, key, d.baseTTL(), func(ctx context.Context) (any, error) {
		orgs, err := d.Orgs.List(ctx, nil, filter)
		if err != nil {
			return nil, fmt.Errorf("list organizations: %w", err)
		}
		return map[string]any{"organizations": orgs, "count": len(orgs)}, nil
	})
}

// organizationDetail joins the organization with its contacts and latest
// interactions, the shape the detail page's components consume.
func (d Deps) organizationDetail(ctx context.Context, p binding.Params) (any, error) {
	orgID, err := uuid.Parse(p.EntityID)
	if err != nil {
		return nil, fmt.Errorf("organizations.detail needs an organization id: %w", err)
	}
	key := paramsKey(map[string]string{"org": orgID.String()})
	return d.Cache.Do(ctx, OrganizationDetail, key, d.baseTTL()/2, func(ctx context.Context) (any, error) {
		org, err := d.Orgs.GetByID(ctx, nil, orgID)
		if err != nil {
			return nil, fmt.Errorf("get organization %s: %w", orgID, err)
		}
		contacts, err := d.Contacts.ListByOrganization(ctx, nil, orgID)
		if err != nil {
			return nil, fmt.Errorf("list contacts for %s: %w", orgID, err)
		}
		interactions, err := d.Interactions.ListByOrganization(ctx, nil, orgID, recentInteractionLimit)
		if err != nil {
			return nil, fmt.Errorf("list interactions for %s: %w", orgID, err)
		}
		return map[string]any{
			"organization": org,
			"contacts":     contacts,
			"interactions": interactions,
		}, nil
	})
}

func (d Deps) contactsByOrganization(ctx context.Context, p binding.Params) (any, error) {
	orgID, err := uuid.Parse(p.EntityID)
	if err != nil {
		return nil, fmt.Errorf("contacts.byOrganization needs an organization id: %w", err)
	}
	key := paramsKey(map[string]string{"org": orgID.String()})
	return d.Cache.Do(ctx, ContactsByOrganization, key, d.baseTTL(), func(ctx context.Context) (any, error) {
		contacts, err := d.Contacts.ListByOrganization(ctx, nil, orgID)
		if err != nil {
			return nil, fmt.Errorf("list contacts for %s: %w", orgID, err)
		}
		return map[string]any{"contacts": contacts, "count": len(contacts)}, nil
	})
}

func (d Deps) interactionsRecent(ctx context.Context, p binding.Params) (any, error) {
	return d.Cache.Do(ctx, InteractionsRecent, "all", d.baseTTL()/2, func(ctx context.Context) (any, error) {
		interactions, err := d.Interactions.ListRecent(ctx, nil, recentInteractionLimit)
		if err != nil {
			return nil, fmt.Errorf("list recent interactions: %w", err)
		}
		return map[string]any{"interactions": interactions}, nil
	})
}

// dashboardMetrics is the headline numbers on the dashboard page.
func (d Deps) dashboardMetrics(ctx context.Context, p binding.Params) (any, error) {
	return d.Cache.Do(ctx, DashboardMetrics, "all", 2*d.baseTTL(), func(ctx context.Context) (any, error) {
		orgCount, err := d.Orgs.Count(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("count organizations: %w", err)
		}
		contactCount, err := d.Contacts.Count(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("count contacts: %w", err)
		}
		monthAgo := time.Now().AddDate(0, 0, -30)
		recentInteractions, err := d.Interactions.CountSince(ctx, nil, monthAgo)
		if err != nil {
			return nil, fmt.Errorf("count interactions: %w", err)
		}
		return map[string]any{
			"organizations":      orgCount,
			"contacts":           contactCount,
			"interactions_30d":   recentInteractions,
			"metrics_window_end": time.Now().UTC(),
		}, nil
	})
}
