// Package binding connects layout documents to data. A Catalog names the
// queries documents may reference, a Store holds the latest snapshot per
// binding with last-writer-wins semantics, and a Binder attaches snapshots
// to component trees. Binding itself never fetches; fetching is an explicit,
// cancellable prefetch step.
package binding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownQuery   = errors.New("binding: unknown query")
	ErrDuplicateQuery = errors.New("binding: duplicate query name")
)

// DefaultTTL is how long a resolved snapshot stays fresh when its query does
// not declare its own TTL.
const DefaultTTL = 30 * time.Second

// Params carries the request scope a query may use. Queries must treat the
// user ID as the authorization boundary; it comes from the auth middleware,
// never from document props.
type Params struct {
	UserID     uuid.UUID
	EntityType string
	EntityID   string
	Page       string
	Filters    map[string]string
}

// Fingerprint is the deterministic identity of the request scope. Every
// field participates, so two requests share a snapshot only when their full
// scope matches; a fetch for one entity can never be served under another.
func (p Params) Fingerprint() string {
	var b strings.Builder
	b.WriteString("u=")
	if p.UserID != uuid.Nil {
		b.WriteString(p.UserID.String())
	}
	b.WriteString("|t=")
	b.WriteString(p.EntityType)
	b.WriteString("|e=")
	b.WriteString(p.EntityID)
	b.WriteString("|p=")
	b.WriteString(p.Page)

	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("|f:")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(p.Filters[k])
	}
	return b.String()
}

// FetchFunc loads the data for one binding. Implementations live in the
// query catalog package and go through repos and caches; the binding layer
// only sees the result.
type FetchFunc func(ctx context.Context, p Params) (any, error)

// QueryDef is one named query a document can bind to.
type QueryDef struct {
	Name  string
	TTL   time.Duration
	Fetch FetchFunc
}

func (d QueryDef) ttl() time.Duration {
	if d.TTL > 0 {
		return d.TTL
	}
	return DefaultTTL
}

// Catalog is the injected set of known queries. Handlers and the renderer
// receive an instance; nothing registers into a package-level default.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]QueryDef
}

func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]QueryDef)}
}

// Register adds a query definition. Names are unique; a second registration
// under the same name is a programming error and fails loudly.
func (c *Catalog) Register(def QueryDef) error {
	if def.Name == "" {
		return fmt.Errorf("binding: query name is required")
	}
	if def.Fetch == nil {
		return fmt.Errorf("binding: query %q has no fetch func", def.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.defs[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateQuery, def.Name)
	}
	c.defs[def.Name] = def
	return nil
}

// MustRegister is Register for wiring code where a duplicate is fatal.
func (c *Catalog) MustRegister(def QueryDef) {
	if err := c.Register(def); err != nil {
		panic(err)
	}
}

func (c *Catalog) Get(name string) (QueryDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[name]
	return def, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.defs))
	for name := range c.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
