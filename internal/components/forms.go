package components

import (
	"context"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/binding"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/registry"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

// Field describes one form field for the client.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []option `json:"options,omitempty"`
}

func orgFormFields() []Field {
	kinds := make([]option, 0, 3)
	for _, k := range types.OrganizationKinds() {
		kinds = append(kinds, option{Value: string(k), Label: kindLabels[k]})
	}
	priorities := make([]option, 0, 4)
	for _, p := range types.OrganizationPriorities() {
		priorities = append(priorities, option{Value: string(p), Label: string(p)})
	}
	return []Field{
		{Name: "name", Label: "Name", Type: "text", Required: true},
		{Name: "kind", Label: "Type", Type: "select", Required: true, Options: kinds},
		{Name: "priority", Label: "Priority", Type: "select", Options: priorities},
		{Name: "region", Label: "Region", Type: "text"},
		{Name: "city", Label: "City", Type: "text"},
		{Name: "state", Label: "State", Type: "text"},
		{Name: "phone", Label: "Phone", Type: "tel"},
		{Name: "website", Label: "Website", Type: "url"},
		{Name: "notes", Label: "Notes", Type: "textarea"},
	}
}

func contactFormFields() []Field {
	return []Field{
		{Name: "first_name", Label: "First Name", Type: "text", Required: true},
		{Name: "last_name", Label: "Last Name", Type: "text", Required: true},
		{Name: "title", Label: "Title", Type: "text"},
		{Name: "email", Label: "Email", Type: "email"},
		{Name: "phone", Label: "Phone", Type: "tel"},
		{Name: "is_primary", Label: "Primary Contact", Type: "checkbox"},
		{Name: "notes", Label: "Notes", Type: "textarea"},
	}
}

// form renders an editable form descriptor. With a bound entity the form is
// pre-filled for editing; without one it is a create form.
type form struct {
	kind   string
	fields func() []Field
}

func (f form) Kind() string { return f.kind }

func (f form) Render(_ context.Context, in registry.RenderInput) (*layout.RenderNode, error) {
	out := node(f.kind, in)
	out.Props["fields"] = f.fields()
	if in.Data.State == binding.StateResolved {
		out.Props["initial"] = in.Data.Value
	}
	return out, nil
}
