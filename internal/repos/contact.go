package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type ContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contact *types.Contact) (*types.Contact, error)
	Update(ctx context.Context, tx *gorm.DB, contact *types.Contact) (*types.Contact, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error)
	ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.Contact, error)
	PrimaryByOrganization(ctx context.Context, tx *gorm.DB, orgIDs []uuid.UUID) (map[uuid.UUID]*types.Contact, error)
	Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Contact, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (r *contactRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *contactRepo) Create(ctx context.Context, tx *gorm.DB, contact *types.Contact) (*types.Contact, error) {
	if err := r.conn(tx).WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRepo) Update(ctx context.Context, tx *gorm.DB, contact *types.Contact) (*types.Contact, error) {
	if err := r.conn(tx).WithContext(ctx).Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error) {
	var contact types.Contact
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.Contact, error) {
	var out []*types.Contact
	if err := r.conn(tx).WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("is_primary desc, last_name asc, first_name asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// PrimaryByOrganization returns each organization's primary contact, when one
// exists. Organizations without a primary contact are absent from the result.
func (r *contactRepo) PrimaryByOrganization(ctx context.Context, tx *gorm.DB, orgIDs []uuid.UUID) (map[uuid.UUID]*types.Contact, error) {
	out := make(map[uuid.UUID]*types.Contact, len(orgIDs))
	if len(orgIDs) == 0 {
		return out, nil
	}
	var contacts []*types.Contact
	if err := r.conn(tx).WithContext(ctx).
		Where("organization_id IN ? AND is_primary = ?", orgIDs, true).
		Order("created_at asc").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if _, ok := out[c.OrganizationID]; !ok {
			out[c.OrganizationID] = c
		}
	}
	return out, nil
}

func (r *contactRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Contact, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Contact{})
	if s := strings.TrimSpace(query); s != "" {
		needle := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", needle, needle, needle)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Contact
	if err := q.Order("last_name asc, first_name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Contact{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *contactRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Contact{}).Error
}
