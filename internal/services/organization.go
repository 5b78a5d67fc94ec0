package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

var ErrOrganizationNotFound = errors.New("services: organization not found")

// OrganizationDetail is the organization with the related rows the detail
// page shows.
type OrganizationDetail struct {
	Organization *types.Organization  `json:"organization"`
	Contacts     []*types.Contact     `json:"contacts"`
	Interactions []*types.Interaction `json:"interactions"`
}

// OrganizationService serves the thin CRM reads the front-end uses outside
// of layout rendering (pickers, link targets). The layout path reads the
// same repos through the query catalog instead.
type OrganizationService interface {
	List(ctx context.Context, filter repos.OrganizationFilter) ([]*types.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*OrganizationDetail, error)
}

const detailInteractionLimit = 20

type organizationService struct {
	log          *logger.Logger
	orgs         repos.OrganizationRepo
	contacts     repos.ContactRepo
	interactions repos.InteractionRepo
}

func NewOrganizationService(log *logger.Logger, orgs repos.OrganizationRepo, contacts repos.ContactRepo, interactions repos.InteractionRepo) OrganizationService {
	return &organizationService{
		log:          log.With("service", "OrganizationService"),
		orgs:         orgs,
		contacts:     contacts,
		interactions: interactions,
	}
}

func (s *organizationService) List(ctx context.Context, filter repos.OrganizationFilter) ([]*types.Organization, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("services: unknown organization kind %q", filter.Kind)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, fmt.Errorf("services: unknown organization priority %q", filter.Priority)
	}
	return s.orgs.List(ctx, nil, filter)
}

func (s *organizationService) Get(ctx context.Context, id uuid.UUID) (*OrganizationDetail, error) {
	org, err := s.orgs.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}

	contacts, err := s.contacts.ListByOrganization(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	interactions, err := s.interactions.ListByOrganization(ctx, nil, id, detailInteractionLimit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	return &OrganizationDetail{
		Organization: org,
		Contacts:     contacts,
		Interactions: interactions,
	}, nil
}
