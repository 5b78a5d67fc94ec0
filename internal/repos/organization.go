package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

// OrganizationFilter narrows List. Zero values mean "no constraint".
type OrganizationFilter struct {
	Kind     types.OrganizationKind
	Priority types.OrganizationPriority
	Query    string
	Limit    int
	Offset   int
}

type OrganizationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, org *types.Organization) (*types.Organization, error)
	Update(ctx context.Context, tx *gorm.DB, org *types.Organization) (*types.Organization, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Organization, error)
	List(ctx context.Context, tx *gorm.DB, filter OrganizationFilter) ([]*types.Organization, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *organizationRepo) Create(ctx context.Context, tx *gorm.DB, org *types.Organization) (*types.Organization, error) {
	if err := r.conn(tx).WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

func (r *organizationRepo) Update(ctx context.Context, tx *gorm.DB, org *types.Organization) (*types.Organization, error) {
	if err := r.conn(tx).WithContext(ctx).Save(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

func (r *organizationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Organization, error) {
	var org types.Organization
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepo) List(ctx context.Context, tx *gorm.DB, filter OrganizationFilter) ([]*types.Organization, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Organization{})

	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var out []*types.Organization
	if err := q.Order("priority asc, name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *organizationRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Organization{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *organizationRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Organization{}).Error
}
