// Package theme defines the CRM's design tokens and built-in presets. The
// front-end receives a fully resolved token map; it never hardcodes colors,
// so a preset switch or a per-user override restyles every component.
package theme

import (
	"fmt"
	"maps"
	"regexp"
	"sort"
)

// Token is a named, themeable design token.
type Token string

const (
	// Surfaces
	TokenBgApp     Token = "bg.app"
	TokenBgSurface Token = "bg.surface"
	TokenBgRaised  Token = "bg.raised"

	// Text hierarchy
	TokenTextPrimary Token = "text.primary"
	TokenTextMuted   Token = "text.muted"
	TokenTextInverse Token = "text.inverse"

	// Accents and borders
	TokenAccent      Token = "accent"
	TokenAccentHover Token = "accent.hover"
	TokenBorder      Token = "border"
	TokenBorderFocus Token = "border.focus"

	// Status
	TokenStatusSuccess Token = "status.success"
	TokenStatusWarning Token = "status.warning"
	TokenStatusError   Token = "status.error"

	// Account priority badges
	TokenPriorityA Token = "priority.a"
	TokenPriorityB Token = "priority.b"
	TokenPriorityC Token = "priority.c"
	TokenPriorityD Token = "priority.d"

	// Organization kind badges
	TokenKindPrincipal   Token = "kind.principal"
	TokenKindDistributor Token = "kind.distributor"
	TokenKindOperator    Token = "kind.operator"
)

// AllTokens returns every valid token, sorted.
func AllTokens() []Token {
	out := make([]Token, 0, len(validTokens))
	for t := range validTokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var validTokens = map[Token]bool{
	TokenBgApp: true, TokenBgSurface: true, TokenBgRaised: true,
	TokenTextPrimary: true, TokenTextMuted: true, TokenTextInverse: true,
	TokenAccent: true, TokenAccentHover: true,
	TokenBorder: true, TokenBorderFocus: true,
	TokenStatusSuccess: true, TokenStatusWarning: true, TokenStatusError: true,
	TokenPriorityA: true, TokenPriorityB: true, TokenPriorityC: true, TokenPriorityD: true,
	TokenKindPrincipal: true, TokenKindDistributor: true, TokenKindOperator: true,
}

func (t Token) Valid() bool { return validTokens[t] }

var hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Preset is a complete, named token assignment.
type Preset struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Colors      map[Token]string `json:"colors"`
}

// Get returns a built-in preset by name.
func Get(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Names lists the built-in presets, sorted.
func Names() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve produces the final token map for a user: the default preset,
// overlaid with the chosen preset, overlaid with per-token overrides.
// Unknown tokens and non-hex colors in overrides are rejected so a stored
// preference can never smuggle arbitrary values to other surfaces.
func Resolve(presetName string, overrides map[string]string) (map[Token]string, error) {
	colors := maps.Clone(presets[DefaultPresetName].Colors)

	if presetName != "" && presetName != DefaultPresetName {
		preset, ok := presets[presetName]
		if !ok {
			return nil, fmt.Errorf("theme: unknown preset %q", presetName)
		}
		maps.Copy(colors, preset.Colors)
	}

	for key, value := range overrides {
		token := Token(key)
		if !token.Valid() {
			return nil, fmt.Errorf("theme: unknown token %q", key)
		}
		if !hexColorRE.MatchString(value) {
			return nil, fmt.Errorf("theme: invalid color %q for token %s", value, key)
		}
		colors[token] = value
	}
	return colors, nil
}
