package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type LayoutRevisionRepo interface {
	// Create appends the next revision for rev.Page. The revision number is
	// assigned here; any value on rev.Revision is overwritten. Concurrent
	// appenders race on the (page, revision) unique index, so callers should
	// treat a duplicate-key error as "retry once".
	Create(ctx context.Context, tx *gorm.DB, rev *types.LayoutRevision) (*types.LayoutRevision, error)
	GetLatest(ctx context.Context, tx *gorm.DB, page string) (*types.LayoutRevision, error)
	GetByRevision(ctx context.Context, tx *gorm.DB, page string, revision int) (*types.LayoutRevision, error)
	ListByPage(ctx context.Context, tx *gorm.DB, page string) ([]*types.LayoutRevision, error)
	ListPages(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type layoutRevisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLayoutRevisionRepo(db *gorm.DB, baseLog *logger.Logger) LayoutRevisionRepo {
	return &layoutRevisionRepo{db: db, log: baseLog.With("repo", "LayoutRevisionRepo")}
}

func (r *layoutRevisionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *layoutRevisionRepo) Create(ctx context.Context, tx *gorm.DB, rev *types.LayoutRevision) (*types.LayoutRevision, error) {
	db := r.conn(tx).WithContext(ctx)
	var latest int
	if err := db.Model(&types.LayoutRevision{}).
		Where("page = ?", rev.Page).
		Select("COALESCE(MAX(revision), 0)").
		Scan(&latest).Error; err != nil {
		return nil, err
	}
	rev.Revision = latest + 1
	if err := db.Create(rev).Error; err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *layoutRevisionRepo) GetLatest(ctx context.Context, tx *gorm.DB, page string) (*types.LayoutRevision, error) {
	var rev types.LayoutRevision
	if err := r.conn(tx).WithContext(ctx).
		Where("page = ?", page).
		Order("revision desc").
		First(&rev).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *layoutRevisionRepo) GetByRevision(ctx context.Context, tx *gorm.DB, page string, revision int) (*types.LayoutRevision, error) {
	var rev types.LayoutRevision
	if err := r.conn(tx).WithContext(ctx).
		Where("page = ? AND revision = ?", page, revision).
		First(&rev).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *layoutRevisionRepo) ListByPage(ctx context.Context, tx *gorm.DB, page string) ([]*types.LayoutRevision, error) {
	var out []*types.LayoutRevision
	if err := r.conn(tx).WithContext(ctx).
		Where("page = ?", page).
		Order("revision desc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *layoutRevisionRepo) ListPages(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var pages []string
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.LayoutRevision{}).
		Distinct("page").
		Order("page asc").
		Pluck("page", &pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}
