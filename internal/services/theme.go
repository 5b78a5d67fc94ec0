package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/theme"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

// themePreferenceKey is where a user's theme choice lives in the
// preference store.
const themePreferenceKey = "theme"

// ThemeChoice is what the user picked: a preset plus optional per-token
// overrides. The resolved token map is derived, never stored.
type ThemeChoice struct {
	Preset    string            `json:"preset"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// ResolvedTheme is what the front-end applies as CSS variables.
type ResolvedTheme struct {
	Preset  string                 `json:"preset"`
	Presets []string               `json:"presets"`
	Colors  map[theme.Token]string `json:"colors"`
}

type ThemeService interface {
	Get(ctx context.Context, userID uuid.UUID) (*ResolvedTheme, error)
	Update(ctx context.Context, userID uuid.UUID, choice ThemeChoice) (*ResolvedTheme, error)
}

type themeService struct {
	log         *logger.Logger
	preferences PreferenceService
}

func NewThemeService(log *logger.Logger, preferences PreferenceService) ThemeService {
	return &themeService{
		log:         log.With("service", "ThemeService"),
		preferences: preferences,
	}
}

func (s *themeService) Get(ctx context.Context, userID uuid.UUID) (*ResolvedTheme, error) {
	choice := ThemeChoice{Preset: theme.DefaultPresetName}

	raw, err := s.preferences.LoadValue(ctx, userID, themePreferenceKey, types.ScopeUser, "")
	if err != nil {
		return nil, err
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &choice); err != nil {
			// A corrupt stored choice falls back to the default theme rather
			// than breaking every page load.
			s.log.Warn("stored theme choice is corrupt, using default", "user_id", userID, "error", err)
			choice = ThemeChoice{Preset: theme.DefaultPresetName}
		}
	}

	colors, err := theme.Resolve(choice.Preset, choice.Overrides)
	if err != nil {
		s.log.Warn("stored theme no longer resolves, using default", "user_id", userID, "error", err)
		colors, _ = theme.Resolve(theme.DefaultPresetName, nil)
		choice.Preset = theme.DefaultPresetName
	}

	return &ResolvedTheme{
		Preset:  choice.Preset,
		Presets: theme.Names(),
		Colors:  colors,
	}, nil
}

func (s *themeService) Update(ctx context.Context, userID uuid.UUID, choice ThemeChoice) (*ResolvedTheme, error) {
	if choice.Preset == "" {
		choice.Preset = theme.DefaultPresetName
	}

	// Resolve first: an unknown preset or bad override never reaches the
	// preference store.
	colors, err := theme.Resolve(choice.Preset, choice.Overrides)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(choice)
	if err != nil {
		return nil, fmt.Errorf("marshal theme choice: %w", err)
	}
	if err := s.preferences.SaveValue(ctx, userID, themePreferenceKey, types.ScopeUser, "", raw); err != nil {
		return nil, err
	}

	return &ResolvedTheme{
		Preset:  choice.Preset,
		Presets: theme.Names(),
		Colors:  colors,
	}, nil
}
