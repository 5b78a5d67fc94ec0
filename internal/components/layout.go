package components

import (
	"context"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
)

// container is the shared implementation for pure grouping components; the
// renderer attaches children.
type container struct {
	kind string
}

func (c container) Kind() string { return c.kind }

func (c container) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	return node(c.kind, in), nil
}

// grid is a container with a column count, defaulted when absent or bogus.
type grid struct{}

func (grid) Kind() string { return "grid" }

const defaultGridColumns = 2

func (grid) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("grid", in)
	switch cols := out.Props["columns"].(type) {
	case int:
		if cols < 1 {
			out.Props["columns"] = defaultGridColumns
		}
	case float64:
		if cols < 1 {
			out.Props["columns"] = defaultGridColumns
		} else {
			out.Props["columns"] = int(cols)
		}
	default:
		out.Props["columns"] = defaultGridColumns
	}
	return out, nil
}
