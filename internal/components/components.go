// Package components holds the built-in component catalog: every component
// key the CRM's layout documents may reference, grouped by the categories
// the builder palette shows. RegisterBuiltins wires them into a registry
// instance at startup.
package components

import (
	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
)

// RegisterBuiltins registers the full built-in catalog. It is called once
// during app wiring; a duplicate key here is a programming error surfaced by
// the registry's strict policy.
func RegisterBuiltins(reg *registry.Registry) error {
	entries := []registry.Entry{
		{Key: "crm.pageHeader", Category: registry.CategoryUI, Component: pageHeader{}},
		{Key: "crm.metricCard", Category: registry.CategoryUI, Component: metricCard{}},
		{Key: "crm.contactCard", Category: registry.CategoryUI, Component: contactCard{}},

		{Key: "crm.section", Category: registry.CategoryLayout, Component: container{kind: "section"}},
		{Key: "crm.grid", Category: registry.CategoryLayout, Component: grid{}},

		{Key: "crm.orgTable", Category: registry.CategoryData, Component: table{kind: "orgTable", columns: orgColumns}},
		{Key: "crm.contactTable", Category: registry.CategoryData, Component: table{kind: "contactTable", columns: contactColumns}},
		{Key: "crm.interactionTimeline", Category: registry.CategoryData, Component: timeline{}},
		{Key: "crm.detailPanel", Category: registry.CategoryData, Component: detailPanel{}},

		{Key: "crm.filterBar", Category: registry.CategoryFilters, Component: container{kind: "filterBar"}},
		{Key: "crm.searchInput", Category: registry.CategoryFilters, Component: searchInput{}},
		{Key: "crm.kindSelect", Category: registry.CategoryFilters, Component: kindSelect{}},
		{Key: "crm.prioritySelect", Category: registry.CategoryFilters, Component: prioritySelect{}},

		{Key: "crm.orgForm", Category: registry.CategoryForms, Component: form{kind: "orgForm", fields: orgFormFields}},
		{Key: "crm.contactForm", Category: registry.CategoryForms, Component: form{kind: "contactForm", fields: contactFormFields}},
	}
	for _, e := range entries {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// node starts a RenderNode for a component, copying the document props so a
// render never mutates the (shared, cached) document.
func node(kind string, in registry.RenderInput) *layout.RenderNode {
	props := make(map[string]any, len(in.Props())+2)
	for k, v := range in.Props() {
		props[k] = v
	}
	return &layout.RenderNode{
		Kind:  kind,
		Slot:  in.Slot,
		State: layout.NodeOK,
		Props: props,
	}
}

func stringProp(in registry.RenderInput, key string) string {
	if s, ok := in.Props()[key].(string); ok {
		return s
	}
	return ""
}
