package binding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
)

// maxConcurrentFetches bounds how many queries one prefetch runs at once.
const maxConcurrentFetches = 8

// BoundNode pairs a component node with the data snapshot its binding had at
// bind time. Snapshot is the zero value when the node declares no binding.
type BoundNode struct {
	Node     *layout.ComponentNode
	Slot     layout.Slot
	Snapshot Snapshot
	Children []*BoundNode
}

// HasBinding reports whether the underlying node references a query.
func (b *BoundNode) HasBinding() bool {
	return b.Node != nil && b.Node.DataBinding != ""
}

// BoundDocument is a document with snapshots attached, in slot render order.
type BoundDocument struct {
	Doc   *layout.Document
	Roots []*BoundNode
}

// Binder ties the three pieces together: it prefetches catalog queries into
// the store and attaches store snapshots to documents.
type Binder struct {
	catalog *Catalog
	store   *Store
	log     *logger.Logger
}

func NewBinder(catalog *Catalog, store *Store, log *logger.Logger) *Binder {
	return &Binder{
		catalog: catalog,
		store:   store,
		log:     log.With("component", "layout.binder"),
	}
}

func (b *Binder) Store() *Store { return b.store }

// Bind attaches the current snapshots for the request scope to the
// document's nodes. It is synchronous and performs no fetching: bindings
// with no snapshot yet come back in the loading state, and the caller
// decides whether to prefetch. Snapshots are looked up per params
// fingerprint, so a bind never sees data fetched for a different scope.
func (b *Binder) Bind(doc *layout.Document, p Params) *BoundDocument {
	out := &BoundDocument{Doc: doc}
	if doc == nil {
		return out
	}
	fp := p.Fingerprint()
	for _, slot := range doc.SlotOrder() {
		out.Roots = append(out.Roots, b.bindNode(slot, doc.Slots[slot], fp))
	}
	return out
}

func (b *Binder) bindNode(slot layout.Slot, node *layout.ComponentNode, fp string) *BoundNode {
	bound := &BoundNode{Node: node, Slot: slot}
	if node == nil {
		return bound
	}
	if name := node.DataBinding; name != "" {
		snap, ok := b.store.Get(Ref{Query: name, Params: fp})
		if !ok || snap.State == "" {
			snap = Snapshot{Name: name, State: StateLoading, Seq: snap.Seq}
		}
		bound.Snapshot = snap
	}
	for _, child := range node.Children {
		bound.Children = append(bound.Children, b.bindNode(slot, child, fp))
	}
	return bound
}

// BindWithErrorHandling prefetches every binding the document references and
// then binds. Failures stay isolated to their own binding: a query that
// errors produces an errored snapshot for its nodes while every other
// binding resolves normally. The only error returned is ctx cancellation.
func (b *Binder) BindWithErrorHandling(ctx context.Context, doc *layout.Document, p Params) (*BoundDocument, error) {
	if err := b.Prefetch(ctx, doc, p); err != nil {
		return nil, err
	}
	return b.Bind(doc, p), nil
}

// Prefetch loads every stale or missing binding the document references.
// Fetches run concurrently and each one is isolated: one failing query marks
// only its own binding errored. When ctx is cancelled, results from still
// in-flight fetches are discarded instead of written, so a page the client
// navigated away from never publishes data.
func (b *Binder) Prefetch(ctx context.Context, doc *layout.Document, p Params) error {
	refs := doc.BindingRefs()
	if len(refs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	now := time.Now()
	fp := p.Fingerprint()

	for _, name := range refs {
		ref := Ref{Query: name, Params: fp}
		def, ok := b.catalog.Get(name)
		if !ok {
			// Mark the ref errored once. The catalog is fixed at startup,
			// so re-marking on every render of a bad stored document would
			// only churn store events.
			if snap, seen := b.store.Get(ref); seen && errors.Is(snap.Err, ErrUnknownQuery) {
				continue
			}
			snap := b.store.Begin(ref)
			_, _ = b.store.Fail(ref, snap.Seq, fmt.Errorf("%w: %s", ErrUnknownQuery, name))
			b.log.Warn("document references unknown query", "query", name, "page", p.Page)
			continue
		}
		if snap, ok := b.store.Get(ref); ok && snap.Fresh(def.ttl(), now) {
			continue
		}

		g.Go(func() error {
			snap := b.store.Begin(ref)
			value, err := def.Fetch(gctx, p)
			if gctx.Err() != nil {
				// The page is gone; drop the result on the floor.
				return nil
			}
			if err != nil {
				b.log.Warn("query failed", "query", def.Name, "page", p.Page, "error", err)
				if _, serr := b.store.Fail(ref, snap.Seq, err); serr != nil {
					b.log.Debug("discarding stale failure", "query", def.Name, "seq", snap.Seq)
				}
				return nil
			}
			if _, serr := b.store.Resolve(ref, snap.Seq, value); serr != nil {
				b.log.Debug("discarding stale result", "query", def.Name, "seq", snap.Seq)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
