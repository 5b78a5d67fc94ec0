// Package layout defines the schema-driven page description consumed by the
// CRM front-end: versioned layout documents composed of named slots, each
// holding a tree of component nodes with optional data bindings. The package
// also carries the validator that turns untrusted JSON into a typed Document.
package layout

import (
	"encoding/json"
	"sort"
)

// Slot is a named position in a page layout.
type Slot string

const (
	SlotHeader  Slot = "header"
	SlotFilters Slot = "filters"
	SlotContent Slot = "content"
	SlotSidebar Slot = "sidebar"
	SlotFooter  Slot = "footer"
)

// KnownSlots returns the canonical render order for well-known slots.
// Documents may introduce additional slot names; those render after the
// known ones in lexical order (see Document.SlotOrder).
func KnownSlots() []Slot {
	return []Slot{SlotHeader, SlotFilters, SlotContent, SlotSidebar, SlotFooter}
}

// Size is the closed set of component size values. The validator and every
// component that consumes a "size" prop share this single definition.
type Size string

const (
	SizeXS   Size = "xs"
	SizeSM   Size = "sm"
	SizeMD   Size = "md"
	SizeLG   Size = "lg"
	SizeXL   Size = "xl"
	SizeFull Size = "full"
)

// AllSizes returns every valid size value.
func AllSizes() []Size {
	return []Size{SizeXS, SizeSM, SizeMD, SizeLG, SizeXL, SizeFull}
}

func (s Size) Valid() bool {
	for _, v := range AllSizes() {
		if s == v {
			return true
		}
	}
	return false
}

// ComponentNode is one node in a layout tree. ComponentKey names an entry in
// the component registry; resolution happens at render time, never here.
type ComponentNode struct {
	ComponentKey string           `json:"componentKey"`
	Props        map[string]any   `json:"props,omitempty"`
	DataBinding  string           `json:"dataBinding,omitempty"`
	Children     []*ComponentNode `json:"children,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *ComponentNode) Clone() *ComponentNode {
	if n == nil {
		return nil
	}
	out := &ComponentNode{
		ComponentKey: n.ComponentKey,
		DataBinding:  n.DataBinding,
	}
	if n.Props != nil {
		out.Props = cloneAnyMap(n.Props)
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

// Document is a versioned, named description of one page's composition.
// It is created by the layout builder or authored statically, mutated only
// by explicit saves, and superseded rather than deleted.
type Document struct {
	ID         string                  `json:"id"`
	Version    string                  `json:"version"`
	EntityType string                  `json:"entityType,omitempty"`
	Slots      map[Slot]*ComponentNode `json:"slots"`
}

// SlotOrder returns the document's slots in deterministic render order:
// known slots first in their canonical order, then any custom slots sorted
// lexically.
func (d *Document) SlotOrder() []Slot {
	if d == nil || len(d.Slots) == 0 {
		return nil
	}
	known := map[Slot]bool{}
	out := make([]Slot, 0, len(d.Slots))
	for _, s := range KnownSlots() {
		known[s] = true
		if _, ok := d.Slots[s]; ok {
			out = append(out, s)
		}
	}
	var extra []Slot
	for s := range d.Slots {
		if !known[s] {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Walk visits every node in slot order, depth-first. Returning false from fn
// stops the walk.
func (d *Document) Walk(fn func(slot Slot, node *ComponentNode) bool) {
	if d == nil {
		return
	}
	for _, slot := range d.SlotOrder() {
		if !walkNode(slot, d.Slots[slot], fn) {
			return
		}
	}
}

func walkNode(slot Slot, node *ComponentNode, fn func(Slot, *ComponentNode) bool) bool {
	if node == nil {
		return true
	}
	if !fn(slot, node) {
		return false
	}
	for _, c := range node.Children {
		if !walkNode(slot, c, fn) {
			return false
		}
	}
	return true
}

// BindingRefs returns the distinct data binding names referenced anywhere in
// the document, in first-seen order.
func (d *Document) BindingRefs() []string {
	seen := map[string]bool{}
	var out []string
	d.Walk(func(_ Slot, node *ComponentNode) bool {
		if b := node.DataBinding; b != "" && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		ID:         d.ID,
		Version:    d.Version,
		EntityType: d.EntityType,
	}
	if d.Slots != nil {
		out.Slots = make(map[Slot]*ComponentNode, len(d.Slots))
		for s, n := range d.Slots {
			out.Slots[s] = n.Clone()
		}
	}
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneAnyMap(t)
		case []any:
			cp := make([]any, len(t))
			for i, e := range t {
				if m, ok := e.(map[string]any); ok {
					cp[i] = cloneAnyMap(m)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// MarshalRaw round-trips the document through JSON into the generic map form
// the validator accepts. Useful for persisting and re-validating documents.
func (d *Document) MarshalRaw() (map[string]any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
