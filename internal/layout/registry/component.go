// Package registry maps component keys from layout documents to renderable
// component implementations. A registry instance is built at startup and
// injected into the renderer; nothing registers through package-level state,
// so tests and previews can run against their own registries.
package registry

import (
	"context"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
)

// Category groups components for the builder palette.
type Category string

const (
	CategoryUI      Category = "ui"
	CategoryForms   Category = "forms"
	CategoryFilters Category = "filters"
	CategoryLayout  Category = "layout"
	CategoryData    Category = "data"
)

// RenderInput is everything a component gets to render one node: the node
// itself, the page scope, and the data snapshot for the node's binding
// (zero-valued when the node binds nothing). Children are composed by the
// renderer, not by components.
type RenderInput struct {
	Page       string
	Slot       layout.Slot
	EntityType string
	EntityID   string
	Node       *layout.ComponentNode
	Data       binding.Snapshot
}

// Props returns the node's props, never nil.
func (in RenderInput) Props() map[string]any {
	if in.Node == nil || in.Node.Props == nil {
		return map[string]any{}
	}
	return in.Node.Props
}

// Component renders one layout node into its client representation.
// Implementations must be safe for concurrent use; one instance serves every
// request.
type Component interface {
	Kind() string
	Render(ctx context.Context, in RenderInput) (*layout.RenderNode, error)
}

// Func adapts a bare function into a Component, for components with no
// state of their own.
type Func struct {
	ComponentKind string
	RenderFunc    func(ctx context.Context, in RenderInput) (*layout.RenderNode, error)
}

func (f Func) Kind() string { return f.ComponentKind }

func (f Func) Render(ctx context.Context, in RenderInput) (*layout.RenderNode, error) {
	return f.RenderFunc(ctx, in)
}

// Loader produces a component on first resolve. Loaders run at most once per
// load attempt across concurrent resolvers; the result is cached on success.
type Loader func(ctx context.Context) (Component, error)

// Entry registers one component key. Exactly one of Component or Loader is
// set: Component for eagerly built components, Loader for ones that are
// expensive to construct.
type Entry struct {
	Key       string
	Category  Category
	Component Component
	Loader    Loader
}

// fallbackComponent is what ResolveWithFallback hands out when a key cannot
// be served. It renders the standard fallback placeholder.
type fallbackComponent struct{}

func (fallbackComponent) Kind() string { return "fallback" }

func (fallbackComponent) Render(_ context.Context, in RenderInput) (*layout.RenderNode, error) {
	key := ""
	if in.Node != nil {
		key = in.Node.ComponentKey
	}
	return layout.FallbackNode(in.Slot, key), nil
}
