// Package render turns validated layout documents into the resolved node
// trees served to the client. It owns the three render modes and the
// whole-page fallback rule: auto mode degrades to the legacy slot layout
// when a schema document cannot be used, never mid-render.
package render

import (
	"fmt"
	"strings"
)

// Mode selects which layout pipeline renders a page.
type Mode string

const (
	// ModeSlots renders the built-in slot layout for the page, ignoring any
	// stored schema document. This is the legacy path and the fallback
	// target.
	ModeSlots Mode = "slots"
	// ModeSchema renders the schema document and fails if it cannot.
	ModeSchema Mode = "schema"
	// ModeAuto prefers the schema document and falls back to slots for the
	// whole page when the document is missing or invalid.
	ModeAuto Mode = "auto"
)

// ParseMode parses a user-supplied mode string. Empty input selects def.
func ParseMode(s string, def Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case ModeSlots:
		return ModeSlots, nil
	case ModeSchema:
		return ModeSchema, nil
	case ModeAuto:
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("render: unknown mode %q (want slots, schema or auto)", s)
	}
}
