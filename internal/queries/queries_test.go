package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/static"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

func TestCacheReadThrough(t *testing.T) {
	cache := NewCache(nil, logger.Nop())
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return map[string]any{"n": calls}, nil
	}

	v1, err := cache.Do(ctx, "test.query", "k1", time.Minute, fetch)
	require.NoError(t, err)
	v2, err := cache.Do(ctx, "test.query", "k1", time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second call must hit the cache")
	require.Equal(t, v1, v2)

	// A different key is a different cache entry.
	_, err = cache.Do(ctx, "test.query", "k2", time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	// Invalidation forces a refetch for every key of the query.
	cache.Invalidate(ctx, "test.query")
	_, err = cache.Do(ctx, "test.query", "k1", time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewCache(nil, logger.Nop())
	ctx := context.Background()

	calls := 0
	_, err := cache.Do(ctx, "test.err", "k", time.Minute, func(ctx context.Context) (any, error) {
		calls++
		return nil, context.DeadlineExceeded
	})
	require.Error(t, err)

	v, err := cache.Do(ctx, "test.err", "k", time.Minute, func(ctx context.Context) (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 2, calls, "a failed fetch must not be cached")
}

func TestParamsKeyIsOrderIndependent(t *testing.T) {
	a := paramsKey(map[string]string{"kind": "principal", "q": "acme"})
	b := paramsKey(map[string]string{"q": "acme", "kind": "principal"})
	require.Equal(t, a, b)

	c := paramsKey(map[string]string{"kind": "operator", "q": "acme"})
	require.NotEqual(t, a, c)
}

type fakeOrgRepo struct {
	repos.OrganizationRepo
	orgs  []*types.Organization
	lists int
}

func (f *fakeOrgRepo) List(ctx context.Context, tx *gorm.DB, filter repos.OrganizationFilter) ([]*types.Organization, error) {
	f.lists++
	return f.orgs, nil
}

func (f *fakeOrgRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(f.orgs)), nil
}

func TestRegisterAndFetchOrganizationsList(t *testing.T) {
	orgRepo := &fakeOrgRepo{orgs: []*types.Organization{
		{Name: "Acme Foods", Kind: types.OrgKindPrincipal, Priority: types.OrgPriorityA},
	}}
	deps := Deps{
		Orgs:  orgRepo,
		Cache: NewCache(nil, logger.Nop()),
		Log:   logger.Nop(),
	}

	cat := binding.NewCatalog()
	require.NoError(t, Register(cat, deps))
	require.Contains(t, cat.Names(), OrganizationsList)
	require.Contains(t, cat.Names(), DashboardMetrics)

	def, ok := cat.Get(OrganizationsList)
	require.True(t, ok)

	p := binding.Params{Filters: map[string]string{"kind": "principal"}}
	v, err := def.Fetch(context.Background(), p)
	require.NoError(t, err)

	result, ok := v.(map[string]any)
	require.True(t, ok)
	require.Equal(t, 1, result["count"])

	// Same scope hits the cache, not the repo.
	_, err = def.Fetch(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, orgRepo.lists)

	// A different filter misses.
	_, err = def.Fetch(context.Background(), binding.Params{Filters: map[string]string{"kind": "operator"}})
	require.NoError(t, err)
	require.Equal(t, 2, orgRepo.lists)
}

type fakeContactRepo struct {
	repos.ContactRepo
	count int64
}

func (f *fakeContactRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return f.count, nil
}

type fakeInteractionRepo struct {
	repos.InteractionRepo
	countSince int64
}

func (f *fakeInteractionRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	return f.countSince, nil
}

func collectMetricProps(node *layout.ComponentNode, out *[]string) {
	if node == nil {
		return
	}
	if node.DataBinding == DashboardMetrics {
		if metric, ok := node.Props["metric"].(string); ok {
			*out = append(*out, metric)
		}
	}
	for _, child := range node.Children {
		collectMetricProps(child, out)
	}
}

// Every metric card in the built-in dashboard layout has to name a key the
// metrics query actually returns; a mismatch renders as a silently empty
// card.
func TestDashboardLayoutMetricsExist(t *testing.T) {
	deps := Deps{
		Orgs:         &fakeOrgRepo{},
		Contacts:     &fakeContactRepo{count: 3},
		Interactions: &fakeInteractionRepo{countSince: 7},
		Cache:        NewCache(nil, logger.Nop()),
		Log:          logger.Nop(),
	}

	v, err := deps.dashboardMetrics(context.Background(), binding.Params{})
	require.NoError(t, err)
	metrics, ok := v.(map[string]any)
	require.True(t, ok)

	doc, ok := static.NewCatalog(logger.Nop()).SlotDocument("dashboard", "")
	require.True(t, ok)

	var wanted []string
	for _, slot := range doc.SlotOrder() {
		collectMetricProps(doc.Slots[slot], &wanted)
	}
	require.NotEmpty(t, wanted, "dashboard layout should carry metric cards")
	for _, metric := range wanted {
		require.Contains(t, metrics, metric, "layout metric %q missing from dashboard.metrics result", metric)
	}
}

func TestRegisterScalesTTLsFromBase(t *testing.T) {
	deps := Deps{Cache: NewCache(nil, logger.Nop()), Log: logger.Nop(), TTL: time.Minute}
	cat := binding.NewCatalog()
	require.NoError(t, Register(cat, deps))

	list, ok := cat.Get(OrganizationsList)
	require.True(t, ok)
	require.Equal(t, time.Minute, list.TTL)

	detail, ok := cat.Get(OrganizationDetail)
	require.True(t, ok)
	require.Equal(t, 30*time.Second, detail.TTL)

	metrics, ok := cat.Get(DashboardMetrics)
	require.True(t, ok)
	require.Equal(t, 2*time.Minute, metrics.TTL)

	// Unset TTL falls back to the binding default.
	fallback := binding.NewCatalog()
	require.NoError(t, Register(fallback, Deps{Cache: NewCache(nil, logger.Nop()), Log: logger.Nop()}))
	list, ok = fallback.Get(OrganizationsList)
	require.True(t, ok)
	require.Equal(t, binding.DefaultTTL, list.TTL)
}
