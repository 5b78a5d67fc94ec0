package components

import (
	"context"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
)

// Column describes one table column for the client.
type Column struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Width string `json:"width,omitempty"`
}

var orgColumns = []Column{
	{Field: "name", Label: "Organization"},
	{Field: "kind", Label: "Type", Width: "sm"},
	{Field: "priority", Label: "Priority", Width: "xs"},
	{Field: "region", Label: "Region", Width: "sm"},
	{Field: "primary_contact", Label: "Primary Contact"},
	{Field: "last_interaction_at", Label: "Last Touch", Width: "sm"},
}

var contactColumns = []Column{
	{Field: "name", Label: "Name"},
	{Field: "title", Label: "Title"},
	{Field: "email", Label: "Email"},
	{Field: "phone", Label: "Phone", Width: "sm"},
	{Field: "organization", Label: "Organization"},
}

// table renders bound rows with a fixed column spec.
type table struct {
	kind    string
	columns []Column
}

func (t table) Kind() string { return t.kind }

func (t table) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node(t.kind, in)
	out.Props["columns"] = t.columns
	if in.Data.State == binding.StateResolved {
		out.Props["rows"] = in.Data.Value
	}
	return out, nil
}

// timeline renders a bound list of interactions, newest first (ordering is
// the query's job).
type timeline struct{}

func (timeline) Kind() string { return "interactionTimeline" }

func (timeline) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("interactionTimeline", in)
	if in.Data.State == binding.StateResolved {
		out.Props["entries"] = in.Data.Value
	}
	return out, nil
}

// detailPanel renders the bound entity's fields as a label/value panel.
type detailPanel struct{}

func (detailPanel) Kind() string { return "detailPanel" }

func (detailPanel) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("detailPanel", in)
	if in.Data.State == binding.StateResolved {
		out.Props["entity"] = in.Data.Value
	}
	return out, nil
}
