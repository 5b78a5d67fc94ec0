package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

var (
	ErrNotFound     = errors.New("registry: component not found")
	ErrDuplicateKey = errors.New("registry: duplicate component key")
	ErrBadEntry     = errors.New("registry: invalid entry")
)

// Policy decides what Register does with a key that already exists.
type Policy int

const (
	// PolicyStrict rejects duplicate keys. Production wiring runs strict so
	// two modules cannot silently fight over a key.
	PolicyStrict Policy = iota
	// PolicyOverwrite replaces the existing entry and logs the replacement.
	// Preview and test environments use it to stub components in place.
	PolicyOverwrite
)

// Options configures a Registry.
type Options struct {
	// Policy is the duplicate-key policy. Default PolicyStrict.
	Policy Policy
	// RetryBackoff is how long a failed lazy load blocks further attempts
	// for that key. Default 5s.
	RetryBackoff time.Duration
	// Fallback overrides the component handed out by ResolveWithFallback.
	Fallback Component
}

const defaultRetryBackoff = 5 * time.Second

type entry struct {
	def       Entry
	component Component
	lastErr   error
	retryAt   time.Time
}

// Registry resolves component keys to components. Lazy entries load at most
// once per attempt regardless of how many requests resolve them
// concurrently; a failed load is remembered only for the backoff window, so
// one bad deploy of a component bundle does not wedge the key until restart.
type Registry struct {
	log      *logger.Logger
	policy   Policy
	backoff  time.Duration
	fallback Component

	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
	now     func() time.Time
}

func New(log *logger.Logger, opts Options) *Registry {
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = fallbackComponent{}
	}
	return &Registry{
		log:      log.With("component", "layout.registry"),
		policy:   opts.Policy,
		backoff:  backoff,
		fallback: fallback,
		entries:  make(map[string]*entry),
		now:      time.Now,
	}
}

// Register adds an entry under its key, honoring the duplicate policy.
func (r *Registry) Register(e Entry) error {
	if e.Key == "" {
		return fmt.Errorf("%w: key is required", ErrBadEntry)
	}
	if (e.Component == nil) == (e.Loader == nil) {
		return fmt.Errorf("%w: %s must set exactly one of Component or Loader", ErrBadEntry, e.Key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Key]; exists {
		if r.policy == PolicyStrict {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
		}
		r.log.Warn("overwriting component registration", "key", e.Key)
	}
	r.entries[e.Key] = &entry{def: e, component: e.Component}
	return nil
}

// MustRegister is Register for startup wiring, where a bad entry is fatal.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Resolve returns the component for key, loading it first when the entry is
// lazy. Concurrent resolves of the same loading key coalesce into a single
// loader execution. A load failure is returned to every waiter and retried
// only after the backoff window passes.
func (r *Registry) Resolve(ctx context.Context, key string) (Component, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if e.component != nil {
		c := e.component
		r.mu.RUnlock()
		return c, nil
	}
	if e.lastErr != nil && r.now().Before(e.retryAt) {
		err := e.lastErr
		r.mu.RUnlock()
		return nil, err
	}
	r.mu.RUnlock()

	// The load itself is detached from the caller: other requests are
	// waiting on the same flight, and the result is cached for everyone.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.load(loadCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Component), nil
	}
}

func (r *Registry) load(ctx context.Context, key string) (Component, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if e.component != nil {
		return e.component, nil
	}

	component, err := e.def.Loader(ctx)
	if err == nil && component == nil {
		err = fmt.Errorf("registry: loader for %q returned no component", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		e.lastErr = fmt.Errorf("registry: load %q: %w", key, err)
		e.retryAt = r.now().Add(r.backoff)
		r.log.Warn("component load failed", "key", key, "error", err, "retry_after", r.backoff)
		return nil, e.lastErr
	}
	e.component = component
	e.lastErr = nil
	e.retryAt = time.Time{}
	r.log.Debug("component loaded", "key", key, "kind", component.Kind())
	return component, nil
}

// ResolveWithFallback always returns a renderable component. Unknown keys
// and failed loads come back as the fallback component; the cause is logged
// and the page keeps rendering.
func (r *Registry) ResolveWithFallback(ctx context.Context, key string) Component {
	c, err := r.Resolve(ctx, key)
	if err != nil {
		r.log.Warn("resolving to fallback component", "key", key, "error", err)
		return r.fallback
	}
	return c
}

// Keys returns every registered key, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GetByCategory returns the entries in one category, sorted by key. The
// builder palette is fed from this.
func (r *Registry) GetByCategory(cat Category) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.def.Category == cat {
			out = append(out, e.def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Has reports whether key is registered, without triggering a load.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}
