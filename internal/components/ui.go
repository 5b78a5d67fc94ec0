package components

import (
	"context"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
)

// pageHeader renders the page title bar. With a bound entity it can pull the
// title out of the entity's fields via the titleField prop.
type pageHeader struct{}

func (pageHeader) Kind() string { return "pageHeader" }

func (pageHeader) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("pageHeader", in)
	if field := stringProp(in, "titleField"); field != "" && in.Data.State == binding.StateResolved {
		if entity, ok := in.Data.Value.(map[string]any); ok {
			if title, ok := entity[field].(string); ok && title != "" {
				out.Props["title"] = title
			}
		}
	}
	return out, nil
}

// metricCard shows one number from a metrics binding, selected by the
// metric prop.
type metricCard struct{}

func (metricCard) Kind() string { return "metricCard" }

func (metricCard) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("metricCard", in)
	if in.Data.State == binding.StateResolved {
		if metrics, ok := in.Data.Value.(map[string]any); ok {
			out.Props["value"] = metrics[stringProp(in, "metric")]
		}
	}
	return out, nil
}

// contactCard shows one contact inline.
type contactCard struct{}

func (contactCard) Kind() string { return "contactCard" }

func (contactCard) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("contactCard", in)
	if in.Data.State == binding.StateResolved {
		out.Props["contact"] = in.Data.Value
	}
	return out, nil
}
