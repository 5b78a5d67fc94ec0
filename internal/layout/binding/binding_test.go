package binding

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
	"github.com/masterfoodbrokers/crm-backend/internal/pubsub"
)

func testDoc(t *testing.T, bindings ...string) *layout.Document {
	t.Helper()
	children := []any{}
	for _, b := range bindings {
		children = append(children, map[string]any{
			"componentKey": "crm.orgTable",
			"dataBinding":  b,
		})
	}
	doc, errs := layout.Validate(map[string]any{
		"id":      "organizations.list",
		"version": "1.0.0",
		"slots": map[string]any{
			"content": map[string]any{
				"componentKey": "crm.section",
				"children":     children,
			},
		},
	})
	require.Empty(t, errs)
	return doc
}

func TestStoreLoadingToResolved(t *testing.T) {
	store := NewStore()
	defer store.Close()
	ref := NewRef("organizations.list", Params{})

	begun := store.Begin(ref)
	require.Equal(t, StateLoading, begun.State)
	require.Equal(t, uint64(1), begun.Seq)

	snap, ok := store.Get(ref)
	require.True(t, ok)
	require.Equal(t, StateLoading, snap.State)

	resolved, err := store.Resolve(ref, begun.Seq, []string{"acme"})
	require.NoError(t, err)
	require.Equal(t, StateResolved, resolved.State)
	require.Equal(t, []string{"acme"}, resolved.Value)
}

func TestStoreLastWriterWins(t *testing.T) {
	store := NewStore()
	defer store.Close()
	ref := NewRef("organizations.list", Params{})

	first := store.Begin(ref)
	second := store.Begin(ref)
	require.Greater(t, second.Seq, first.Seq)

	// The newer load finishes first.
	_, err := store.Resolve(ref, second.Seq, "new")
	require.NoError(t, err)

	// The older load finishing later must not clobber it.
	_, err = store.Resolve(ref, first.Seq, "old")
	require.ErrorIs(t, err, ErrStaleUpdate)

	snap, _ := store.Get(ref)
	require.Equal(t, "new", snap.Value)
}

func TestStoreKeysByParamsScope(t *testing.T) {
	store := NewStore()
	defer store.Close()

	refX := NewRef("organizations.detail", Params{EntityID: "org-x"})
	refY := NewRef("organizations.detail", Params{EntityID: "org-y"})
	require.NotEqual(t, refX, refY)

	store.Set(refX, "x-data")
	store.Set(refY, "y-data")

	snapX, ok := store.Get(refX)
	require.True(t, ok)
	require.Equal(t, "x-data", snapX.Value)

	snapY, ok := store.Get(refY)
	require.True(t, ok)
	require.Equal(t, "y-data", snapY.Value)

	// Loads for different scopes do not race each other: each ref counts
	// its own seq, so completing one never invalidates the other.
	beginX := store.Begin(refX)
	_, err := store.Resolve(refX, beginX.Seq, "x-data-2")
	require.NoError(t, err)
	snapY, _ = store.Get(refY)
	require.Equal(t, "y-data", snapY.Value)
}

func TestStoreFailedLoadIsNotPoisoned(t *testing.T) {
	store := NewStore()
	defer store.Close()
	ref := NewRef("interactions.recent", Params{})

	begun := store.Begin(ref)
	_, err := store.Fail(ref, begun.Seq, errors.New("db down"))
	require.NoError(t, err)

	snap, _ := store.Get(ref)
	require.Equal(t, StateErrored, snap.State)

	// A later load proceeds as if the failure never happened.
	retry := store.Begin(ref)
	resolved, err := store.Resolve(ref, retry.Seq, 42)
	require.NoError(t, err)
	require.Equal(t, StateResolved, resolved.State)
	require.Equal(t, 42, resolved.Value)
}

func TestStoreBeginKeepsPreviousValueVisible(t *testing.T) {
	store := NewStore()
	defer store.Close()
	ref := NewRef("dashboard.metrics", Params{})

	store.Set(ref, map[string]int{"orgs": 12})
	begun := store.Begin(ref)
	require.Equal(t, StateLoading, begun.State)
	require.Equal(t, map[string]int{"orgs": 12}, begun.Value)
}

func TestStoreSubscribeStreamsChanges(t *testing.T) {
	store := NewStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := store.Subscribe(ctx)

	store.Set(NewRef("contacts.byOrganization", Params{}), "v1")

	select {
	case ev := <-ch:
		require.Equal(t, pubsub.BindingUpdated, ev.Type)
		require.Equal(t, "v1", ev.Payload.Value)
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for store event")
	}
}

func TestCatalogRejectsDuplicates(t *testing.T) {
	cat := NewCatalog()
	def := QueryDef{Name: "organizations.list", Fetch: func(context.Context, Params) (any, error) { return nil, nil }}
	require.NoError(t, cat.Register(def))
	require.ErrorIs(t, cat.Register(def), ErrDuplicateQuery)
	require.Equal(t, []string{"organizations.list"}, cat.Names())
}

func TestParamsFingerprintIsDeterministic(t *testing.T) {
	a := Params{EntityID: "org-x", Filters: map[string]string{"kind": "principal", "q": "acme"}}
	b := Params{EntityID: "org-x", Filters: map[string]string{"q": "acme", "kind": "principal"}}
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := Params{EntityID: "org-y", Filters: a.Filters}
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := Params{EntityID: "org-x", Filters: map[string]string{"kind": "operator", "q": "acme"}}
	require.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

func TestBindIsSynchronousAndNonFetching(t *testing.T) {
	var calls atomic.Int32
	cat := NewCatalog()
	cat.MustRegister(QueryDef{
		Name: "organizations.list",
		Fetch: func(context.Context, Params) (any, error) {
			calls.Add(1)
			return nil, nil
		},
	})
	store := NewStore()
	defer store.Close()
	binder := NewBinder(cat, store, logger.Nop())

	bound := binder.Bind(testDoc(t, "organizations.list"), Params{})
	require.Equal(t, int32(0), calls.Load(), "Bind must not fetch")

	node := bound.Roots[0].Children[0]
	require.True(t, node.HasBinding())
	require.Equal(t, StateLoading, node.Snapshot.State)
}

func TestBindWithErrorHandlingIsolatesFailures(t *testing.T) {
	cat := NewCatalog()
	cat.MustRegister(QueryDef{
		Name:  "organizations.list",
		Fetch: func(context.Context, Params) (any, error) { return []string{"acme", "globex"}, nil },
	})
	cat.MustRegister(QueryDef{
		Name:  "interactions.recent",
		Fetch: func(context.Context, Params) (any, error) { return nil, errors.New("timeout") },
	})
	store := NewStore()
	defer store.Close()
	binder := NewBinder(cat, store, logger.Nop())

	doc := testDoc(t, "organizations.list", "interactions.recent")
	bound, err := binder.BindWithErrorHandling(context.Background(), doc, Params{Page: "organizations.list"})
	require.NoError(t, err, "one failing query must not fail the bind pass")

	orgs := bound.Roots[0].Children[0].Snapshot
	require.Equal(t, StateResolved, orgs.State)
	require.Equal(t, []string{"acme", "globex"}, orgs.Value)

	inter := bound.Roots[0].Children[1].Snapshot
	require.Equal(t, StateErrored, inter.State)
	require.Error(t, inter.Err)
}

func TestBindIsScopedToRequestParams(t *testing.T) {
	var fetches atomic.Int32
	cat := NewCatalog()
	cat.MustRegister(QueryDef{
		Name: "organizations.detail",
		TTL:  time.Minute,
		Fetch: func(_ context.Context, p Params) (any, error) {
			fetches.Add(1)
			return p.EntityID, nil
		},
	})
	store := NewStore()
	defer store.Close()
	binder := NewBinder(cat, store, logger.Nop())
	doc := testDoc(t, "organizations.detail")

	boundX, err := binder.BindWithErrorHandling(context.Background(), doc, Params{EntityID: "org-x"})
	require.NoError(t, err)
	require.Equal(t, "org-x", boundX.Roots[0].Children[0].Snapshot.Value)

	// A second request for another entity inside the TTL must be fetched
	// for that entity, never served the first request's data.
	boundY, err := binder.BindWithErrorHandling(context.Background(), doc, Params{EntityID: "org-y"})
	require.NoError(t, err)
	require.Equal(t, "org-y", boundY.Roots[0].Children[0].Snapshot.Value)
	require.Equal(t, int32(2), fetches.Load())

	// Repeating either request reuses its own fresh snapshot.
	boundX2, err := binder.BindWithErrorHandling(context.Background(), doc, Params{EntityID: "org-x"})
	require.NoError(t, err)
	require.Equal(t, "org-x", boundX2.Roots[0].Children[0].Snapshot.Value)
	require.Equal(t, int32(2), fetches.Load())
}

func TestBindWithErrorHandlingUnknownQuery(t *testing.T) {
	store := NewStore()
	defer store.Close()
	binder := NewBinder(NewCatalog(), store, logger.Nop())

	bound, err := binder.BindWithErrorHandling(context.Background(), testDoc(t, "no.suchQuery"), Params{})
	require.NoError(t, err)

	snap := bound.Roots[0].Children[0].Snapshot
	require.Equal(t, StateErrored, snap.State)
	require.ErrorIs(t, snap.Err, ErrUnknownQuery)
}

func TestPrefetchMarksUnknownQueryOnce(t *testing.T) {
	store := NewStore()
	defer store.Close()
	binder := NewBinder(NewCatalog(), store, logger.Nop())
	doc := testDoc(t, "no.suchQuery")

	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))
	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))
	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))

	// One Begin happened in total: re-rendering a document with a bad
	// reference must not publish fresh store events every pass.
	snap, ok := store.Get(NewRef("no.suchQuery", Params{}))
	require.True(t, ok)
	require.Equal(t, StateErrored, snap.State)
	require.Equal(t, uint64(1), snap.Seq)
}

func TestPrefetchCoalescesFreshSnapshots(t *testing.T) {
	var calls atomic.Int32
	cat := NewCatalog()
	cat.MustRegister(QueryDef{
		Name: "organizations.list",
		TTL:  time.Minute,
		Fetch: func(context.Context, Params) (any, error) {
			calls.Add(1)
			return "rows", nil
		},
	})
	store := NewStore()
	defer store.Close()
	binder := NewBinder(cat, store, logger.Nop())

	doc := testDoc(t, "organizations.list")
	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))
	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))
	require.Equal(t, int32(1), calls.Load(), "fresh snapshot must not refetch")
}

func TestPrefetchCancellationDiscardsInFlightResults(t *testing.T) {
	release := make(chan struct{})
	cat := NewCatalog()
	cat.MustRegister(QueryDef{
		Name: "organizations.list",
		Fetch: func(ctx context.Context, _ Params) (any, error) {
			<-release
			return "late", nil
		},
	})
	store := NewStore()
	defer store.Close()
	binder := NewBinder(cat, store, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	doc := testDoc(t, "organizations.list")
	var wg sync.WaitGroup
	var prefetchErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		prefetchErr = binder.Prefetch(ctx, doc, Params{})
	}()

	// Cancel while the fetch is blocked, then let it finish.
	time.Sleep(10 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()
	require.ErrorIs(t, prefetchErr, context.Canceled)

	snap, ok := store.Get(NewRef("organizations.list", Params{}))
	require.True(t, ok)
	require.NotEqual(t, StateResolved, snap.State, "cancelled fetch must not publish its result")
	require.Nil(t, snap.Value)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var calls atomic.Int32
	cat := NewCatalog()
	cat.MustRegister(QueryDef{
		Name: "organizations.list",
		TTL:  time.Hour,
		Fetch: func(context.Context, Params) (any, error) {
			return calls.Add(1), nil
		},
	})
	store := NewStore()
	defer store.Close()
	binder := NewBinder(cat, store, logger.Nop())

	doc := testDoc(t, "organizations.list")
	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))
	store.Invalidate("organizations.list")
	require.NoError(t, binder.Prefetch(context.Background(), doc, Params{}))
	require.Equal(t, int32(2), calls.Load())

	snap, _ := store.Get(NewRef("organizations.list", Params{}))
	require.Equal(t, int32(2), snap.Value)
}
