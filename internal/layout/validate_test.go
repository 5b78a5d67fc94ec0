package layout

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validOrgListRaw() map[string]any {
	return map[string]any{
		"id":         "organizations.list",
		"version":    "1.1.0",
		"entityType": "organization",
		"slots": map[string]any{
			"header": map[string]any{
				"componentKey": "crm.pageHeader",
				"props":        map[string]any{"title": "Organizations", "size": "full"},
			},
			"filters": map[string]any{
				"componentKey": "crm.filterBar",
				"children": []any{
					map[string]any{
						"componentKey": "crm.prioritySelect",
						"props":        map[string]any{"size": "sm"},
					},
				},
			},
			"content": map[string]any{
				"componentKey": "crm.orgTable",
				"dataBinding":  "organizations.list",
			},
		},
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	doc, errs := Validate(validOrgListRaw())
	require.Empty(t, errs)
	require.NotNil(t, doc)
	require.Equal(t, "organizations.list", doc.ID)
	require.Equal(t, "organization", doc.EntityType)
	require.Len(t, doc.Slots, 3)
	require.Equal(t, "crm.orgTable", doc.Slots[SlotContent].ComponentKey)
	require.Equal(t, "organizations.list", doc.Slots[SlotContent].DataBinding)
	require.Len(t, doc.Slots[SlotFilters].Children, 1)
}

func TestValidateCollectsOneErrorPerField(t *testing.T) {
	raw := map[string]any{
		// id missing entirely
		"version": "1.0.0",
		"slots": map[string]any{
			"content": map[string]any{
				"componentKey": "",
				"props":        map[string]any{"size": "gigantic"},
				"dataBinding":  "   ",
			},
			"sidebar": "not an object",
		},
	}
	doc, errs := Validate(raw)
	require.Nil(t, doc)

	byPath := map[string]ValidationError{}
	for _, e := range errs {
		byPath[e.Path] = e
	}
	require.Equal(t, CodeRequired, byPath["id"].Code)
	require.Equal(t, CodeEmptyValue, byPath["slots.content.componentKey"].Code)
	require.Equal(t, CodeInvalidEnum, byPath["slots.content.props.size"].Code)
	require.Equal(t, CodeEmptyValue, byPath["slots.content.dataBinding"].Code)
	require.Equal(t, CodeInvalidType, byPath["slots.sidebar"].Code)
	// Four field errors plus the malformed sidebar; nothing else invented.
	require.Len(t, errs, 5)
}

func TestValidateRejectsNewerSchemaVersion(t *testing.T) {
	raw := validOrgListRaw()
	raw["version"] = "99.0.0"
	doc, errs := Validate(raw)
	require.Nil(t, doc)
	require.Len(t, errs, 1)
	require.Equal(t, "version", errs[0].Path)
	require.Equal(t, CodeUnsupportedVersion, errs[0].Code)
}

func TestValidateRejectsGarbageVersion(t *testing.T) {
	for _, v := range []string{"not-a-version", "1.2", ""} {
		raw := validOrgListRaw()
		raw["version"] = v
		doc, errs := Validate(raw)
		require.Nil(t, doc, "version %q", v)
		require.NotEmpty(t, errs, "version %q", v)
	}
}

func TestValidateIgnoresUnknownFields(t *testing.T) {
	raw := validOrgListRaw()
	raw["experimentalFlag"] = true
	node := raw["slots"].(map[string]any)["content"].(map[string]any)
	node["futureField"] = map[string]any{"x": 1}

	doc, errs := Validate(raw)
	require.Empty(t, errs)
	require.NotNil(t, doc)
}

func TestValidateIsPureAndIdempotent(t *testing.T) {
	raw := validOrgListRaw()
	first, errs := Validate(raw)
	require.Empty(t, errs)

	// Feed the validated document back through marshal + validate and the
	// result must be structurally identical.
	roundTripped, err := first.MarshalRaw()
	require.NoError(t, err)
	second, errs := Validate(roundTripped)
	require.Empty(t, errs)
	require.Equal(t, first, second)

	// And running it again on the same input changes nothing.
	third, errs := Validate(raw)
	require.Empty(t, errs)
	require.Equal(t, first, third)
}

func TestValidateCustomSlotsOrderAfterKnown(t *testing.T) {
	raw := validOrgListRaw()
	slots := raw["slots"].(map[string]any)
	slots["zeta"] = map[string]any{"componentKey": "crm.metricCard"}
	slots["alpha"] = map[string]any{"componentKey": "crm.metricCard"}

	doc, errs := Validate(raw)
	require.Empty(t, errs)

	order := doc.SlotOrder()
	require.Equal(t, []Slot{SlotHeader, SlotFilters, SlotContent, "alpha", "zeta"}, order)
}

func TestValidateDepthLimit(t *testing.T) {
	leaf := map[string]any{"componentKey": "crm.metricCard"}
	node := leaf
	for i := 0; i < maxNodeDepth+2; i++ {
		node = map[string]any{
			"componentKey": "crm.section",
			"children":     []any{node},
		}
	}
	raw := validOrgListRaw()
	raw["slots"].(map[string]any)["content"] = node

	doc, errs := Validate(raw)
	require.Nil(t, doc)
	found := false
	for _, e := range errs {
		if e.Code == CodeMaxDepth {
			found = true
		}
	}
	require.True(t, found, "expected a depth error, got %v", errs)
}

func TestParseDocumentMalformedJSON(t *testing.T) {
	doc, errs := ParseDocument([]byte("{not json"))
	require.Nil(t, doc)
	require.Len(t, errs, 1)
	require.Equal(t, CodeMalformed, errs[0].Code)
}

func TestParseDocumentRoundTrip(t *testing.T) {
	data, err := json.Marshal(mustValidate(t, validOrgListRaw()))
	require.NoError(t, err)
	doc, errs := ParseDocument(data)
	require.Empty(t, errs)
	require.Equal(t, "organizations.list", doc.ID)
}

func TestBindingRefsDistinctFirstSeen(t *testing.T) {
	doc := mustValidate(t, map[string]any{
		"id":      "contacts.detail",
		"version": "1.0.0",
		"slots": map[string]any{
			"content": map[string]any{
				"componentKey": "crm.section",
				"dataBinding":  "contacts.byOrganization",
				"children": []any{
					map[string]any{"componentKey": "crm.contactCard", "dataBinding": "contacts.byOrganization"},
					map[string]any{"componentKey": "crm.timeline", "dataBinding": "interactions.recent"},
				},
			},
		},
	})
	require.Equal(t, []string{"contacts.byOrganization", "interactions.recent"}, doc.BindingRefs())
}

func TestCloneIsDeep(t *testing.T) {
	doc := mustValidate(t, validOrgListRaw())
	clone := doc.Clone()
	require.Equal(t, doc, clone)

	clone.Slots[SlotHeader].Props["title"] = "changed"
	require.Equal(t, "Organizations", doc.Slots[SlotHeader].Props["title"])
}

func TestSizeEnumIsClosed(t *testing.T) {
	require.Equal(t, []Size{SizeXS, SizeSM, SizeMD, SizeLG, SizeXL, SizeFull}, AllSizes())
	for _, s := range AllSizes() {
		require.True(t, s.Valid())
	}
	require.False(t, Size("medium").Valid())
	require.False(t, Size("").Valid())
}

func TestCheckVersionBounds(t *testing.T) {
	require.NoError(t, CheckVersion("1.0.0"))
	require.NoError(t, CheckVersion(SchemaVersion))
	require.Error(t, CheckVersion("1.3.0"))
	require.Error(t, CheckVersion("2.0.0"))
	require.Error(t, CheckVersion("0.9.0"))
	require.Error(t, CheckVersion("abc"))
}

func TestValidationErrorsErrorString(t *testing.T) {
	errs := ValidationErrors{
		{Path: "id", Code: CodeRequired, Message: "id is required"},
		{Path: "version", Code: CodeUnsupportedVersion, Message: "too new"},
	}
	msg := errs.Error()
	require.True(t, strings.Contains(msg, "id: id is required"), msg)
	require.True(t, strings.Contains(msg, "version: too new"), msg)
}

func mustValidate(t *testing.T, raw map[string]any) *Document {
	t.Helper()
	doc, errs := Validate(raw)
	if len(errs) > 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	return doc
}

func ExampleValidate() {
	doc, _ := Validate(map[string]any{
		"id":      "dashboard",
		"version": "1.0.0",
		"slots": map[string]any{
			"content": map[string]any{"componentKey": "crm.metricCard"},
		},
	})
	fmt.Println(doc.ID, doc.Slots[SlotContent].ComponentKey)
	// Output: dashboard crm.metricCard
}
