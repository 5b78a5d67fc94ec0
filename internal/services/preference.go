package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/pubsub"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

var ErrInvalidScope = errors.New("services: invalid preference scope")

// PreferenceChange is published after every accepted save or delete, so the
// SSE hub can tell the owning user's other sessions to reload.
type PreferenceChange struct {
	UserID     uuid.UUID             `json:"user_id"`
	Key        string                `json:"key"`
	Scope      types.PreferenceScope `json:"scope"`
	EntityType string                `json:"entity_type,omitempty"`
	Deleted    bool                  `json:"deleted,omitempty"`
}

// PreferenceService stores per-user customization. Every operation is keyed
// by the caller-supplied user ID, which handlers take from the authenticated
// request context; one user's rows are unreachable from another's requests.
type PreferenceService interface {
	// LoadDocument returns the user's saved layout document for the scope
	// tuple, or nil when none is saved. A stored document that no longer
	// validates is an error, not a panic and not a silently-served document.
	LoadDocument(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) (*layout.Document, error)
	SaveDocument(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string, doc *layout.Document) error

	// LoadValue and SaveValue handle non-document preferences (theme choice,
	// collapsed panels) as raw JSON.
	LoadValue(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) (json.RawMessage, error)
	SaveValue(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string, value json.RawMessage) error

	Delete(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) error
	List(ctx context.Context, userID uuid.UUID) ([]*types.LayoutPreference, error)

	Changes(ctx context.Context) <-chan pubsub.Event[PreferenceChange]
}

const prefCacheTTL = 5 * time.Minute

type preferenceService struct {
	log    *logger.Logger
	repo   repos.LayoutPreferenceRepo
	cache  *gocache.Cache
	broker *pubsub.Broker[PreferenceChange]
}

func NewPreferenceService(log *logger.Logger, repo repos.LayoutPreferenceRepo) PreferenceService {
	return &preferenceService{
		log:    log.With("service", "PreferenceService"),
		repo:   repo,
		cache:  gocache.New(prefCacheTTL, 10*time.Minute),
		broker: pubsub.NewBroker[PreferenceChange](),
	}
}

func cacheKey(userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) string {
	return userID.String() + "|" + key + "|" + string(scope) + "|" + entityType
}

func (s *preferenceService) LoadValue(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) (json.RawMessage, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if !scope.Valid() {
		return nil, ErrInvalidScope
	}

	ck := cacheKey(userID, key, scope, entityType)
	if v, ok := s.cache.Get(ck); ok {
		if raw, ok := v.(json.RawMessage); ok {
			return raw, nil
		}
	}

	pref, err := s.repo.Get(ctx, nil, userID, key, scope, entityType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load preference: %w", err)
	}

	raw := json.RawMessage(pref.Value)
	s.cache.Set(ck, raw, prefCacheTTL)
	return raw, nil
}

func (s *preferenceService) SaveValue(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string, value json.RawMessage) error {
	return s.save(ctx, userID, key, scope, entityType, value, "")
}

// save is the single write path. version is the document schema version for
// document saves and empty for plain values.
func (s *preferenceService) save(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string, value json.RawMessage, version string) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if key == "" {
		return fmt.Errorf("services: preference key is required")
	}
	if !scope.Valid() {
		return ErrInvalidScope
	}
	if !json.Valid(value) {
		return fmt.Errorf("services: preference value is not valid JSON")
	}

	pref := &types.LayoutPreference{
		ID:            uuid.New(),
		UserID:        userID,
		PreferenceKey: key,
		Scope:         scope,
		EntityType:    entityType,
		Value:         []byte(value),
		Version:       version,
	}
	if _, err := s.repo.Upsert(ctx, nil, pref); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}

	s.cache.Set(cacheKey(userID, key, scope, entityType), value, prefCacheTTL)
	s.broker.Publish(pubsub.PreferenceSaved, PreferenceChange{
		UserID: userID, Key: key, Scope: scope, EntityType: entityType,
	})
	return nil
}

func (s *preferenceService) LoadDocument(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) (*layout.Document, error) {
	raw, err := s.LoadValue(ctx, userID, key, scope, entityType)
	if err != nil || raw == nil {
		return nil, err
	}

	doc, verrs := layout.ParseDocument(raw)
	if len(verrs) > 0 {
		s.log.Warn("stored layout preference no longer validates",
			"user_id", userID, "key", key, "scope", scope, "errors", verrs.Error())
		return nil, verrs
	}
	return doc, nil
}

func (s *preferenceService) SaveDocument(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string, doc *layout.Document) error {
	if doc == nil {
		return fmt.Errorf("services: nil layout document")
	}

	// Re-validate through the same path that will read it back.
	raw, err := doc.MarshalRaw()
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, verrs := layout.Validate(raw); len(verrs) > 0 {
		return verrs
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return s.save(ctx, userID, key, scope, entityType, data, doc.Version)
}

func (s *preferenceService) Delete(ctx context.Context, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if !scope.Valid() {
		return ErrInvalidScope
	}
	if err := s.repo.Delete(ctx, nil, userID, key, scope, entityType); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	s.cache.Delete(cacheKey(userID, key, scope, entityType))
	s.broker.Publish(pubsub.PreferenceSaved, PreferenceChange{
		UserID: userID, Key: key, Scope: scope, EntityType: entityType, Deleted: true,
	})
	return nil
}

func (s *preferenceService) List(ctx context.Context, userID uuid.UUID) ([]*types.LayoutPreference, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.repo.ListByUser(ctx, nil, userID)
}

func (s *preferenceService) Changes(ctx context.Context) <-chan pubsub.Event[PreferenceChange] {
	return s.broker.Subscribe(ctx)
}
