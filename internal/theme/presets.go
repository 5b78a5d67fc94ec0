package theme

// DefaultPresetName is the preset used when a user has no theme preference.
const DefaultPresetName = "classic"

var presets = map[string]Preset{
	"classic":       classicPreset,
	"harvest":       harvestPreset,
	"slate":         slatePreset,
	"high-contrast": highContrastPreset,
}

var classicPreset = Preset{
	Name:        "classic",
	Description: "Light default theme",
	Colors: map[Token]string{
		TokenBgApp:     "#F5F6F8",
		TokenBgSurface: "#FFFFFF",
		TokenBgRaised:  "#EEF0F3",

		TokenTextPrimary: "#1E2429",
		TokenTextMuted:   "#5E6B76",
		TokenTextInverse: "#FFFFFF",

		TokenAccent:      "#1A5276",
		TokenAccentHover: "#2471A3",
		TokenBorder:      "#D5DBE1",
		TokenBorderFocus: "#1A5276",

		TokenStatusSuccess: "#1E8449",
		TokenStatusWarning: "#B9770E",
		TokenStatusError:   "#B03A2E",

		TokenPriorityA: "#B03A2E",
		TokenPriorityB: "#B9770E",
		TokenPriorityC: "#1A5276",
		TokenPriorityD: "#5E6B76",

		TokenKindPrincipal:   "#6C3483",
		TokenKindDistributor: "#1A5276",
		TokenKindOperator:    "#117864",
	},
}

var harvestPreset = Preset{
	Name:        "harvest",
	Description: "Warm food-industry palette",
	Colors: map[Token]string{
		TokenBgApp:     "#FAF6F0",
		TokenBgSurface: "#FFFDF9",
		TokenBgRaised:  "#F3ECE1",

		TokenTextPrimary: "#33261A",
		TokenTextMuted:   "#7A6A58",
		TokenTextInverse: "#FFFDF9",

		TokenAccent:      "#9C5518",
		TokenAccentHover: "#B96A25",
		TokenBorder:      "#E2D6C4",
		TokenBorderFocus: "#9C5518",

		TokenStatusSuccess: "#4D7C2A",
		TokenStatusWarning: "#B07D10",
		TokenStatusError:   "#A3362A",

		TokenPriorityA: "#A3362A",
		TokenPriorityB: "#B07D10",
		TokenPriorityC: "#9C5518",
		TokenPriorityD: "#7A6A58",

		TokenKindPrincipal:   "#7B4B94",
		TokenKindDistributor: "#9C5518",
		TokenKindOperator:    "#4D7C2A",
	},
}

var slatePreset = Preset{
	Name:        "slate",
	Description: "Dark theme",
	Colors: map[Token]string{
		TokenBgApp:     "#181C20",
		TokenBgSurface: "#22272C",
		TokenBgRaised:  "#2B3138",

		TokenTextPrimary: "#E4E8EC",
		TokenTextMuted:   "#9AA5AF",
		TokenTextInverse: "#181C20",

		TokenAccent:      "#58A6D8",
		TokenAccentHover: "#7CBCE4",
		TokenBorder:      "#3A424A",
		TokenBorderFocus: "#58A6D8",

		TokenStatusSuccess: "#5FB878",
		TokenStatusWarning: "#D8A949",
		TokenStatusError:   "#D86C5F",

		TokenPriorityA: "#D86C5F",
		TokenPriorityB: "#D8A949",
		TokenPriorityC: "#58A6D8",
		TokenPriorityD: "#9AA5AF",

		TokenKindPrincipal:   "#B78BD8",
		TokenKindDistributor: "#58A6D8",
		TokenKindOperator:    "#5FB8A5",
	},
}

var highContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "Maximum contrast for accessibility",
	Colors: map[Token]string{
		TokenBgApp:     "#FFFFFF",
		TokenBgSurface: "#FFFFFF",
		TokenBgRaised:  "#F0F0F0",

		TokenTextPrimary: "#000000",
		TokenTextMuted:   "#333333",
		TokenTextInverse: "#FFFFFF",

		TokenAccent:      "#0000CC",
		TokenAccentHover: "#0000FF",
		TokenBorder:      "#000000",
		TokenBorderFocus: "#0000CC",

		TokenStatusSuccess: "#006600",
		TokenStatusWarning: "#884400",
		TokenStatusError:   "#CC0000",

		TokenPriorityA: "#CC0000",
		TokenPriorityB: "#884400",
		TokenPriorityC: "#0000CC",
		TokenPriorityD: "#333333",

		TokenKindPrincipal:   "#660066",
		TokenKindDistributor: "#0000CC",
		TokenKindOperator:    "#006600",
	},
}
