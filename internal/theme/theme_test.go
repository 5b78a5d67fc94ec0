package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresetsAreComplete(t *testing.T) {
	all := AllTokens()
	require.NotEmpty(t, all)

	for _, name := range Names() {
		preset, ok := Get(name)
		require.True(t, ok)
		for _, token := range all {
			color, present := preset.Colors[token]
			require.True(t, present, "preset %s missing token %s", name, token)
			require.Regexp(t, hexColorRE, color, "preset %s token %s", name, token)
		}
	}
}

func TestNamesIncludeBuiltins(t *testing.T) {
	require.Equal(t, []string{"classic", "harvest", "high-contrast", "slate"}, Names())
	_, ok := Get("classic")
	require.True(t, ok)
	_, ok = Get("neon")
	require.False(t, ok)
}

func TestResolveDefault(t *testing.T) {
	colors, err := Resolve("", nil)
	require.NoError(t, err)
	require.Equal(t, classicPreset.Colors[TokenAccent], colors[TokenAccent])
}

func TestResolvePresetAndOverrides(t *testing.T) {
	colors, err := Resolve("slate", map[string]string{"accent": "#ABC123"})
	require.NoError(t, err)
	require.Equal(t, "#ABC123", colors[TokenAccent])
	require.Equal(t, slatePreset.Colors[TokenBgApp], colors[TokenBgApp])
}

func TestResolveRejectsBadInput(t *testing.T) {
	_, err := Resolve("neon", nil)
	require.Error(t, err)

	_, err = Resolve("classic", map[string]string{"not.a.token": "#FFFFFF"})
	require.Error(t, err)

	_, err = Resolve("classic", map[string]string{"accent": "red"})
	require.Error(t, err)

	_, err = Resolve("classic", map[string]string{"accent": "#12345"})
	require.Error(t, err)
}

func TestResolveDoesNotMutatePresets(t *testing.T) {
	before := classicPreset.Colors[TokenAccent]
	_, err := Resolve("classic", map[string]string{"accent": "#000000"})
	require.NoError(t, err)
	require.Equal(t, before, classicPreset.Colors[TokenAccent])
}
