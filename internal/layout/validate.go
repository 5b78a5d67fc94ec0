package layout

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validation error codes. Stable strings: the front-end builder keys its
// inline field messages off these.
const (
	CodeMalformed          = "malformed_document"
	CodeRequired           = "required_field"
	CodeInvalidType        = "invalid_type"
	CodeInvalidEnum        = "invalid_enum"
	CodeEmptyValue         = "empty_value"
	CodeUnsupportedVersion = "unsupported_version"
	CodeMaxDepth           = "max_depth_exceeded"
)

// maxNodeDepth bounds component tree nesting. Documents are authored by the
// layout builder, which never produces trees this deep; anything beyond it
// is corrupt or adversarial input.
const maxNodeDepth = 64

// ValidationError describes one field-level problem in a layout document.
// Path is a dotted locator into the raw document ("slots.content.children[1].componentKey").
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationErrors aggregates every problem found in a single pass. The
// validator never stops at the first failure; builder users fix whole
// documents, not one field at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "layout: no validation errors"
	}
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Error())
	}
	return "layout: invalid document: " + strings.Join(parts, "; ")
}

// ParseDocument decodes raw JSON bytes and validates the result. It is the
// single entry point for untrusted document input (HTTP bodies, stored rows,
// static files converted from YAML).
func ParseDocument(data []byte) (*Document, ValidationErrors) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ValidationErrors{{
			Path:    "",
			Code:    CodeMalformed,
			Message: fmt.Sprintf("document is not valid JSON: %v", err),
		}}
	}
	return Validate(raw)
}

// Validate checks generic structured data against the layout schema and, when
// clean, returns the typed document. It is pure: no I/O, no registry lookups,
// no data fetches, and the same input always yields the same output.
//
// Unknown fields are ignored so older services keep accepting documents from
// newer builders within the same schema major version.
func Validate(raw map[string]any) (*Document, ValidationErrors) {
	var errs ValidationErrors
	if raw == nil {
		return nil, ValidationErrors{{Path: "", Code: CodeRequired, Message: "document is required"}}
	}

	doc := &Document{}

	if id, ok := requireString(raw, "id", "id", &errs); ok {
		doc.ID = id
	}

	if version, ok := requireString(raw, "version", "version", &errs); ok {
		doc.Version = version
		if err := CheckVersion(version); err != nil {
			errs = append(errs, ValidationError{
				Path:    "version",
				Code:    CodeUnsupportedVersion,
				Message: err.Error(),
			})
		}
	}

	if v, present := raw["entityType"]; present {
		if s, ok := v.(string); ok {
			doc.EntityType = strings.TrimSpace(s)
		} else {
			errs = append(errs, typeError("entityType", "string", v))
		}
	}

	slotsRaw, present := raw["slots"]
	switch {
	case !present:
		errs = append(errs, ValidationError{Path: "slots", Code: CodeRequired, Message: "slots is required"})
	default:
		slotMap, ok := slotsRaw.(map[string]any)
		if !ok {
			errs = append(errs, typeError("slots", "object", slotsRaw))
			break
		}
		doc.Slots = make(map[Slot]*ComponentNode, len(slotMap))
		for name, nodeRaw := range slotMap {
			path := "slots." + name
			if strings.TrimSpace(name) == "" {
				errs = append(errs, ValidationError{Path: "slots", Code: CodeEmptyValue, Message: "slot name must not be empty"})
				continue
			}
			node := validateNode(path, nodeRaw, 0, &errs)
			if node != nil {
				doc.Slots[Slot(name)] = node
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

func validateNode(path string, raw any, depth int, errs *ValidationErrors) *ComponentNode {
	if depth > maxNodeDepth {
		*errs = append(*errs, ValidationError{
			Path:    path,
			Code:    CodeMaxDepth,
			Message: fmt.Sprintf("component nesting exceeds %d levels", maxNodeDepth),
		})
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		*errs = append(*errs, typeError(path, "object", raw))
		return nil
	}

	node := &ComponentNode{}

	if key, ok := requireString(m, "componentKey", path+".componentKey", errs); ok {
		node.ComponentKey = key
	}

	if v, present := m["props"]; present {
		props, ok := v.(map[string]any)
		if !ok {
			*errs = append(*errs, typeError(path+".props", "object", v))
		} else {
			node.Props = props
			validateProps(path+".props", props, errs)
		}
	}

	if v, present := m["dataBinding"]; present {
		s, ok := v.(string)
		switch {
		case !ok:
			*errs = append(*errs, typeError(path+".dataBinding", "string", v))
		case strings.TrimSpace(s) == "":
			*errs = append(*errs, ValidationError{
				Path:    path + ".dataBinding",
				Code:    CodeEmptyValue,
				Message: "dataBinding must name a query when present",
			})
		default:
			node.DataBinding = strings.TrimSpace(s)
		}
	}

	if v, present := m["children"]; present {
		arr, ok := v.([]any)
		if !ok {
			*errs = append(*errs, typeError(path+".children", "array", v))
		} else {
			for i, childRaw := range arr {
				child := validateNode(fmt.Sprintf("%s.children[%d]", path, i), childRaw, depth+1, errs)
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}
		}
	}

	return node
}

// validateProps checks the prop keys the schema assigns meaning to. Sizes are
// the closed Size enum; every other prop passes through untouched for the
// component to interpret.
func validateProps(path string, props map[string]any, errs *ValidationErrors) {
	if v, present := props["size"]; present {
		s, ok := v.(string)
		switch {
		case !ok:
			*errs = append(*errs, typeError(path+".size", "string", v))
		case !Size(s).Valid():
			*errs = append(*errs, ValidationError{
				Path:    path + ".size",
				Code:    CodeInvalidEnum,
				Message: fmt.Sprintf("size %q is not one of %s", s, sizeList()),
			})
		}
	}
}

func requireString(m map[string]any, key, path string, errs *ValidationErrors) (string, bool) {
	v, present := m[key]
	if !present {
		*errs = append(*errs, ValidationError{Path: path, Code: CodeRequired, Message: key + " is required"})
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		*errs = append(*errs, typeError(path, "string", v))
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*errs = append(*errs, ValidationError{Path: path, Code: CodeEmptyValue, Message: key + " must not be empty"})
		return "", false
	}
	return s, true
}

func typeError(path, want string, got any) ValidationError {
	return ValidationError{
		Path:    path,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("expected %s, got %s", want, typeName(got)),
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sizeList() string {
	all := AllSizes()
	parts := make([]string, 0, len(all))
	for _, s := range all {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, "|")
}
