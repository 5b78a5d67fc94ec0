package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

// ErrNoDocument is returned by document sources when no layout exists for a
// page. In auto mode it triggers the slots fallback; in schema mode it
// surfaces to the caller.
var ErrNoDocument = errors.New("render: no layout document for page")

// DocumentSource provides the schema-mode document for a page. The layout
// service implements it on top of the preference and layout stores.
type DocumentSource interface {
	Document(ctx context.Context, page, entityType string) (*layout.Document, error)
}

// SlotSource provides the built-in legacy layout for a page.
type SlotSource interface {
	SlotDocument(page, entityType string) (*layout.Document, bool)
}

// Request scopes one page render.
type Request struct {
	Page       string
	EntityType string
	EntityID   string
	Mode       Mode
	UserID     uuid.UUID
	Filters    map[string]string
}

// BindingView is the per-binding metadata attached to a rendered page, so
// clients can correlate later push updates with what they received.
type BindingView struct {
	State     binding.State `json:"state"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Error     string        `json:"error,omitempty"`
}

// Page is one rendered page: the resolved node tree plus how it was
// produced. FellBack is set only by auto mode.
type Page struct {
	Page          string                 `json:"page"`
	Mode          Mode                   `json:"mode"`
	FellBack      bool                   `json:"fellBack,omitempty"`
	FallbackCause string                 `json:"fallbackCause,omitempty"`
	Root          *layout.RenderNode     `json:"root"`
	Bindings      map[string]BindingView `json:"bindings,omitempty"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}

// Renderer composes pages from documents, components and data. It holds no
// per-request state; one instance serves every request.
type Renderer struct {
	registry    *registry.Registry
	binder      *binding.Binder
	documents   DocumentSource
	slots       SlotSource
	defaultMode Mode
	log         *logger.Logger
}

func NewRenderer(reg *registry.Registry, binder *binding.Binder, documents DocumentSource, slots SlotSource, defaultMode Mode, log *logger.Logger) *Renderer {
	if defaultMode == "" {
		defaultMode = ModeAuto
	}
	return &Renderer{
		registry:    reg,
		binder:      binder,
		documents:   documents,
		slots:       slots,
		defaultMode: defaultMode,
		log:         log.With("component", "layout.renderer"),
	}
}

// DefaultMode is the mode used when a request does not name one.
func (r *Renderer) DefaultMode() Mode { return r.defaultMode }

// RenderPage renders one page in the requested mode. Data failures stay
// inside their nodes; the returned error is reserved for cancellation and
// pages that cannot be rendered at all (no document in a non-auto mode).
func (r *Renderer) RenderPage(ctx context.Context, req Request) (*Page, error) {
	mode := req.Mode
	if mode == "" {
		mode = r.defaultMode
	}

	doc, effective, cause, err := r.selectDocument(ctx, req, mode)
	if err != nil {
		return nil, err
	}

	params := binding.Params{
		UserID:     req.UserID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Page:       req.Page,
		Filters:    req.Filters,
	}
	bound, err := r.binder.BindWithErrorHandling(ctx, doc, params)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Page:          req.Page,
		Mode:          effective,
		FellBack:      cause != "",
		FallbackCause: cause,
		Root:          r.composeRoot(ctx, req, bound),
		Bindings:      bindingViews(r.binder.Store(), doc, params),
		GeneratedAt:   time.Now(),
	}
	return page, nil
}

// selectDocument picks the document for the requested mode and decides the
// auto fallback. The fallback is whole-page and happens exactly once, before
// any node renders; a document that passes validation but has failing nodes
// stays on the schema path.
func (r *Renderer) selectDocument(ctx context.Context, req Request, mode Mode) (*layout.Document, Mode, string, error) {
	switch mode {
	case ModeSlots:
		doc, ok := r.slots.SlotDocument(req.Page, req.EntityType)
		if !ok {
			return nil, mode, "", fmt.Errorf("%w: %s", ErrNoDocument, req.Page)
		}
		return doc, ModeSlots, "", nil

	case ModeSchema:
		doc, err := r.documents.Document(ctx, req.Page, req.EntityType)
		if err != nil {
			return nil, mode, "", err
		}
		return doc, ModeSchema, "", nil

	default: // ModeAuto
		doc, err := r.documents.Document(ctx, req.Page, req.EntityType)
		if err == nil {
			return doc, ModeSchema, "", nil
		}
		if ctx.Err() != nil {
			return nil, mode, "", ctx.Err()
		}
		cause := fallbackCause(err)
		r.log.Warn("schema render unavailable, falling back to slots",
			"page", req.Page, "entity_type", req.EntityType, "cause", cause, "error", err)

		slotDoc, ok := r.slots.SlotDocument(req.Page, req.EntityType)
		if !ok {
			return nil, mode, "", fmt.Errorf("%w: %s (and no slot layout)", ErrNoDocument, req.Page)
		}
		return slotDoc, ModeSlots, cause, nil
	}
}

func fallbackCause(err error) string {
	var verrs layout.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return "invalid_document"
	case errors.Is(err, ErrNoDocument):
		return "no_document"
	default:
		return "document_unavailable"
	}
}

// composeRoot builds the page's node tree. Every node failure is contained
// at that node: resolution misses become fallback nodes, render errors and
// errored bindings become error nodes, loading bindings render as loading.
func (r *Renderer) composeRoot(ctx context.Context, req Request, bound *binding.BoundDocument) *layout.RenderNode {
	root := &layout.RenderNode{
		Kind:  "page",
		State: layout.NodeOK,
		Props: map[string]any{"page": req.Page},
	}
	for _, b := range bound.Roots {
		if node := r.renderNode(ctx, req, b); node != nil {
			root.Children = append(root.Children, node)
		}
	}
	return root
}

func (r *Renderer) renderNode(ctx context.Context, req Request, b *binding.BoundNode) (out *layout.RenderNode) {
	if b == nil || b.Node == nil {
		return nil
	}

	// A panicking component loses its own node, nothing more.
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("component panicked", "key", b.Node.ComponentKey, "page", req.Page, "panic", rec)
			out = layout.ErrorNode(b.Slot, "error", "component failed to render")
			out.Binding = b.Node.DataBinding
		}
	}()

	component := r.registry.ResolveWithFallback(ctx, b.Node.ComponentKey)

	var node *layout.RenderNode
	switch {
	case b.HasBinding() && b.Snapshot.State == binding.StateErrored:
		node = layout.ErrorNode(b.Slot, component.Kind(), "data unavailable")

	case b.HasBinding() && b.Snapshot.State == binding.StateLoading && b.Snapshot.Value == nil:
		node = &layout.RenderNode{
			Kind:  component.Kind(),
			Slot:  b.Slot,
			State: layout.NodeLoading,
			Props: b.Node.Props,
		}

	default:
		rendered, err := component.Render(ctx, registry.RenderInput{
			Page:       req.Page,
			Slot:       b.Slot,
			EntityType: req.EntityType,
			EntityID:   req.EntityID,
			Node:       b.Node,
			Data:       b.Snapshot,
		})
		if err != nil || rendered == nil {
			r.log.Warn("component render failed", "key", b.Node.ComponentKey, "page", req.Page, "error", err)
			node = layout.ErrorNode(b.Slot, component.Kind(), "component failed to render")
		} else {
			node = rendered
		}
	}

	if node.Slot == "" {
		node.Slot = b.Slot
	}
	if node.State == "" {
		node.State = layout.NodeOK
	}
	node.Binding = b.Node.DataBinding

	for _, child := range b.Children {
		if c := r.renderNode(ctx, req, child); c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

func bindingViews(store *binding.Store, doc *layout.Document, p binding.Params) map[string]BindingView {
	refs := doc.BindingRefs()
	if len(refs) == 0 {
		return nil
	}
	fp := p.Fingerprint()
	out := make(map[string]BindingView, len(refs))
	for _, name := range refs {
		snap, ok := store.Get(binding.Ref{Query: name, Params: fp})
		if !ok {
			out[name] = BindingView{State: binding.StateLoading}
			continue
		}
		view := BindingView{State: snap.State, UpdatedAt: snap.UpdatedAt}
		if snap.Err != nil {
			view.Error = snap.Err.Error()
		}
		out[name] = view
	}
	return out
}
