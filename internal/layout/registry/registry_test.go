package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

func staticComponent(kind string) Component {
	return Func{
		ComponentKind: kind,
		RenderFunc: func(_ context.Context, in RenderInput) (*layout.RenderNode, error) {
			return &layout.RenderNode{Kind: kind, Slot: in.Slot, State: layout.NodeOK}, nil
		},
	}
}

func newTestRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	return New(logger.Nop(), opts)
}

func TestRegisterAndResolveEager(t *testing.T) {
	r := newTestRegistry(t, Options{})
	require.NoError(t, r.Register(Entry{
		Key:       "crm.orgTable",
		Category:  CategoryData,
		Component: staticComponent("orgTable"),
	}))

	c, err := r.Resolve(context.Background(), "crm.orgTable")
	require.NoError(t, err)
	require.Equal(t, "orgTable", c.Kind())
}

func TestRegisterValidatesEntries(t *testing.T) {
	r := newTestRegistry(t, Options{})
	require.ErrorIs(t, r.Register(Entry{Key: "", Component: staticComponent("x")}), ErrBadEntry)
	require.ErrorIs(t, r.Register(Entry{Key: "crm.empty"}), ErrBadEntry)
	require.ErrorIs(t, r.Register(Entry{
		Key:       "crm.both",
		Component: staticComponent("x"),
		Loader:    func(context.Context) (Component, error) { return staticComponent("x"), nil },
	}), ErrBadEntry)
}

func TestStrictPolicyRejectsDuplicates(t *testing.T) {
	r := newTestRegistry(t, Options{Policy: PolicyStrict})
	require.NoError(t, r.Register(Entry{Key: "crm.orgTable", Component: staticComponent("a")}))
	err := r.Register(Entry{Key: "crm.orgTable", Component: staticComponent("b")})
	require.ErrorIs(t, err, ErrDuplicateKey)

	c, err := r.Resolve(context.Background(), "crm.orgTable")
	require.NoError(t, err)
	require.Equal(t, "a", c.Kind(), "original registration must survive")
}

func TestOverwritePolicyReplaces(t *testing.T) {
	r := newTestRegistry(t, Options{Policy: PolicyOverwrite})
	require.NoError(t, r.Register(Entry{Key: "crm.orgTable", Component: staticComponent("a")}))
	require.NoError(t, r.Register(Entry{Key: "crm.orgTable", Component: staticComponent("b")}))

	c, err := r.Resolve(context.Background(), "crm.orgTable")
	require.NoError(t, err)
	require.Equal(t, "b", c.Kind())
}

func TestResolveUnknownKey(t *testing.T) {
	r := newTestRegistry(t, Options{})
	_, err := r.Resolve(context.Background(), "crm.doesNotExist")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLazyLoadRunsExactlyOnceAcrossConcurrentResolves(t *testing.T) {
	var loads atomic.Int32
	r := newTestRegistry(t, Options{})
	require.NoError(t, r.Register(Entry{
		Key:      "crm.heavyChart",
		Category: CategoryUI,
		Loader: func(context.Context) (Component, error) {
			loads.Add(1)
			time.Sleep(20 * time.Millisecond)
			return staticComponent("heavyChart"), nil
		},
	}))

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	kinds := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := r.Resolve(context.Background(), "crm.heavyChart")
			errs[i] = err
			if err == nil {
				kinds[i] = c.Kind()
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), loads.Load(), "loader must run exactly once")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "heavyChart", kinds[i])
	}
}

func TestFailedLoadRetriesAfterBackoff(t *testing.T) {
	var loads atomic.Int32
	r := newTestRegistry(t, Options{RetryBackoff: 5 * time.Second})
	require.NoError(t, r.Register(Entry{
		Key: "crm.flaky",
		Loader: func(context.Context) (Component, error) {
			if loads.Add(1) == 1 {
				return nil, errors.New("bundle fetch failed")
			}
			return staticComponent("flaky"), nil
		},
	}))

	now := time.Now()
	r.now = func() time.Time { return now }

	_, err := r.Resolve(context.Background(), "crm.flaky")
	require.Error(t, err)
	require.Equal(t, int32(1), loads.Load())

	// Still inside the backoff window: the cached failure is returned and
	// the loader is not hammered.
	_, err = r.Resolve(context.Background(), "crm.flaky")
	require.Error(t, err)
	require.Equal(t, int32(1), loads.Load())

	// Past the window the load is retried and the key recovers.
	now = now.Add(6 * time.Second)
	c, err := r.Resolve(context.Background(), "crm.flaky")
	require.NoError(t, err)
	require.Equal(t, "flaky", c.Kind())
	require.Equal(t, int32(2), loads.Load())

	// The success is cached; no further loads.
	_, err = r.Resolve(context.Background(), "crm.flaky")
	require.NoError(t, err)
	require.Equal(t, int32(2), loads.Load())
}

func TestResolveWithFallbackNeverErrors(t *testing.T) {
	r := newTestRegistry(t, Options{})
	require.NoError(t, r.Register(Entry{
		Key:    "crm.broken",
		Loader: func(context.Context) (Component, error) { return nil, errors.New("nope") },
	}))

	for _, key := range []string{"crm.doesNotExist", "crm.broken", ""} {
		c := r.ResolveWithFallback(context.Background(), key)
		require.NotNil(t, c, "key %q", key)
		require.Equal(t, "fallback", c.Kind(), "key %q", key)

		node, err := c.Render(context.Background(), RenderInput{
			Slot: layout.SlotContent,
			Node: &layout.ComponentNode{ComponentKey: key},
		})
		require.NoError(t, err)
		require.Equal(t, layout.NodeFallback, node.State)
		require.Equal(t, key, node.Props["requestedKey"])
	}
}

func TestResolveHonorsCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	r := newTestRegistry(t, Options{})
	require.NoError(t, r.Register(Entry{
		Key: "crm.slow",
		Loader: func(context.Context) (Component, error) {
			<-release
			return staticComponent("slow"), nil
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, "crm.slow")
	require.ErrorIs(t, err, context.Canceled)

	// The detached load still completes and later resolves hit the cache.
	close(release)
	require.Eventually(t, func() bool {
		c, err := r.Resolve(context.Background(), "crm.slow")
		return err == nil && c.Kind() == "slow"
	}, time.Second, 10*time.Millisecond)
}

func TestKeysAndGetByCategory(t *testing.T) {
	r := newTestRegistry(t, Options{})
	require.NoError(t, r.Register(Entry{Key: "crm.orgTable", Category: CategoryData, Component: staticComponent("orgTable")}))
	require.NoError(t, r.Register(Entry{Key: "crm.filterBar", Category: CategoryFilters, Component: staticComponent("filterBar")}))
	require.NoError(t, r.Register(Entry{Key: "crm.contactForm", Category: CategoryForms, Component: staticComponent("contactForm")}))

	require.Equal(t, []string{"crm.contactForm", "crm.filterBar", "crm.orgTable"}, r.Keys())

	data := r.GetByCategory(CategoryData)
	require.Len(t, data, 1)
	require.Equal(t, "crm.orgTable", data[0].Key)

	require.Empty(t, r.GetByCategory(CategoryLayout))
	require.True(t, r.Has("crm.orgTable"))
	require.False(t, r.Has("crm.nope"))
}
