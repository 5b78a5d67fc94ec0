package components

import (
	"context"
	"strings"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type searchInput struct{}

func (searchInput) Kind() string { return "searchInput" }

func (searchInput) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("searchInput", in)
	if _, ok := out.Props["placeholder"]; !ok {
		out.Props["placeholder"] = "Search"
	}
	out.Props["param"] = "q"
	return out, nil
}

// option is a select choice sent to the client.
type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// kindSelect filters by organization kind. Options come from the domain
// enum, not from document props, so documents cannot invent kinds.
type kindSelect struct{}

func (kindSelect) Kind() string { return "kindSelect" }

func (kindSelect) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("kindSelect", in)
	opts := make([]option, 0, 3)
	for _, k := range types.OrganizationKinds() {
		opts = append(opts, option{Value: string(k), Label: kindLabels[k]})
	}
	out.Props["options"] = opts
	out.Props["param"] = "kind"
	return out, nil
}

var kindLabels = map[types.OrganizationKind]string{
	types.OrgKindPrincipal:   "Principal",
	types.OrgKindDistributor: "Distributor",
	types.OrgKindOperator:    "Operator",
}

// prioritySelect filters by account priority.
type prioritySelect struct{}

func (prioritySelect) Kind() string { return "prioritySelect" }

func (prioritySelect) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node("prioritySelect", in)
	opts := make([]option, 0, 4)
	for _, p := range types.OrganizationPriorities() {
		opts = append(opts, option{Value: string(p), Label: "Priority " + strings.ToUpper(string(p))})
	}
	out.Props["options"] = opts
	out.Props["param"] = "priority"
	return out, nil
}
