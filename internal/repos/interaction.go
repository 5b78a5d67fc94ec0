package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type InteractionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, interaction *types.Interaction) (*types.Interaction, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Interaction, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Interaction, error)
	ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, limit int) ([]*types.Interaction, error)
	CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	LatestPerOrganization(ctx context.Context, tx *gorm.DB, orgIDs []uuid.UUID) (map[uuid.UUID]time.Time, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{db: db, log: baseLog.With("repo", "InteractionRepo")}
}

func (r *interactionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *interactionRepo) Create(ctx context.Context, tx *gorm.DB, interaction *types.Interaction) (*types.Interaction, error) {
	if err := r.conn(tx).WithContext(ctx).Create(interaction).Error; err != nil {
		return nil, err
	}
	return interaction, nil
}

func (r *interactionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Interaction, error) {
	var interaction types.Interaction
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&interaction).Error; err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (r *interactionRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []*types.Interaction
	if err := r.conn(tx).WithContext(ctx).
		Order("occurred_at desc").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interactionRepo) ListByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, limit int) ([]*types.Interaction, error) {
	q := r.conn(tx).WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("occurred_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Interaction
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interactionRepo) CountSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Interaction{}).
		Where("occurred_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LatestPerOrganization returns the most recent interaction time for each of
// the given organizations. Organizations with no interactions are absent from
// the result.
func (r *interactionRepo) LatestPerOrganization(ctx context.Context, tx *gorm.DB, orgIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	out := make(map[uuid.UUID]time.Time, len(orgIDs))
	if len(orgIDs) == 0 {
		return out, nil
	}
	type row struct {
		OrganizationID uuid.UUID `gorm:"column:organization_id"`
		LastAt         time.Time `gorm:"column:last_at"`
	}
	var rows []row
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Interaction{}).
		Select("organization_id, MAX(occurred_at) AS last_at").
		Where("organization_id IN ?", orgIDs).
		Group("organization_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.OrganizationID] = r.LastAt
	}
	return out, nil
}

func (r *interactionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Interaction{}).Error
}
