package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/layout"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/render"
	"github.com/masterfoodbrokers/crm-backend/internal/layout/static"
	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/pubsub"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/requestdata"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

// LayoutPublish is announced when a new revision of a page's schema
// document is published.
type LayoutPublish struct {
	Page     string    `json:"page"`
	Revision int       `json:"revision"`
	By       uuid.UUID `json:"by"`
}

// LayoutService resolves the schema document for a page and manages the
// published revisions behind it. Resolution order: the requesting user's
// saved override, then the latest published revision, then the built-in
// layout shipped with the binary.
type LayoutService interface {
	render.DocumentSource

	Publish(ctx context.Context, page, entityType string, doc *layout.Document) (*types.LayoutRevision, error)
	Revisions(ctx context.Context, page string) ([]*types.LayoutRevision, error)
	Pages(ctx context.Context) []string

	Publishes(ctx context.Context) <-chan pubsub.Event[LayoutPublish]
}

type layoutService struct {
	log         *logger.Logger
	revisions   repos.LayoutRevisionRepo
	preferences PreferenceService
	builtin     *static.Catalog
	broker      *pubsub.Broker[LayoutPublish]
}

func NewLayoutService(log *logger.Logger, revisions repos.LayoutRevisionRepo, preferences PreferenceService, builtin *static.Catalog) LayoutService {
	return &layoutService{
		log:         log.With("service", "LayoutService"),
		revisions:   revisions,
		preferences: preferences,
		builtin:     builtin,
		broker:      pubsub.NewBroker[LayoutPublish](),
	}
}

// Document implements render.DocumentSource. The requesting user comes from
// the request context, so a user can only ever see their own override.
func (s *layoutService) Document(ctx context.Context, page, entityType string) (*layout.Document, error) {
	if userID := requestdata.UserID(ctx); userID != uuid.Nil {
		doc, err := s.preferences.LoadDocument(ctx, userID, page, types.ScopePage, entityType)
		if err != nil {
			// An override that no longer validates must not block the page;
			// surface the validation failure so auto mode falls back.
			return nil, fmt.Errorf("user layout for page %s: %w", page, err)
		}
		if doc != nil {
			return doc, nil
		}
	}

	rev, err := s.revisions.GetLatest(ctx, nil, page)
	switch {
	case err == nil:
		doc, verrs := layout.ParseDocument(rev.Document)
		if len(verrs) > 0 {
			return nil, fmt.Errorf("published layout for page %s (revision %d): %w", page, rev.Revision, verrs)
		}
		return doc, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to the built-in layout
	default:
		return nil, fmt.Errorf("load layout revision for page %s: %w", page, err)
	}

	if doc, ok := s.builtin.SlotDocument(page, entityType); ok {
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s", render.ErrNoDocument, page)
}

// Publish validates and appends a new revision for a page.
func (s *layoutService) Publish(ctx context.Context, page, entityType string, doc *layout.Document) (*types.LayoutRevision, error) {
	if page == "" {
		return nil, fmt.Errorf("services: page is required")
	}
	if doc == nil {
		return nil, fmt.Errorf("services: nil layout document")
	}

	raw, err := doc.MarshalRaw()
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if _, verrs := layout.Validate(raw); len(verrs) > 0 {
		return nil, verrs
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	rev := &types.LayoutRevision{
		ID:         uuid.New(),
		Page:       page,
		EntityType: entityType,
		Document:   data,
		CreatedBy:  requestdata.UserID(ctx),
	}
	created, err := s.revisions.Create(ctx, nil, rev)
	if err != nil {
		return nil, fmt.Errorf("create layout revision: %w", err)
	}

	s.log.Info("layout published", "page", page, "revision", created.Revision)
	s.broker.Publish(pubsub.LayoutPublished, LayoutPublish{
		Page: page, Revision: created.Revision, By: created.CreatedBy,
	})
	return created, nil
}

func (s *layoutService) Revisions(ctx context.Context, page string) ([]*types.LayoutRevision, error) {
	return s.revisions.ListByPage(ctx, nil, page)
}

// Pages lists every page that can render: built-in pages plus any page that
// has published revisions.
func (s *layoutService) Pages(ctx context.Context) []string {
	pages := s.builtin.Pages()
	seen := make(map[string]bool, len(pages))
	for _, p := range pages {
		seen[p] = true
	}
	published, err := s.revisions.ListPages(ctx, nil)
	if err != nil {
		s.log.Warn("listing published pages failed", "error", err)
		return pages
	}
	for _, p := range published {
		if !seen[p] {
			pages = append(pages, p)
		}
	}
	return pages
}

func (s *layoutService) Publishes(ctx context.Context) <-chan pubsub.Event[LayoutPublish] {
	return s.broker.Subscribe(ctx)
}
