package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/types"
)

type LayoutPreferenceRepo interface {
	// Upsert inserts the preference or, when the user already saved one for
	// the same (preference_key, scope, entity_type), replaces its value.
	Upsert(ctx context.Context, tx *gorm.DB, pref *types.LayoutPreference) (*types.LayoutPreference, error)
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) (*types.LayoutPreference, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LayoutPreference, error)
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) error
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type layoutPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLayoutPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) LayoutPreferenceRepo {
	return &layoutPreferenceRepo{db: db, log: baseLog.With("repo", "LayoutPreferenceRepo")}
}

func (r *layoutPreferenceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *layoutPreferenceRepo) Upsert(ctx context.Context, tx *gorm.DB, pref *types.LayoutPreference) (*types.LayoutPreference, error) {
	if err := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "preference_key"},
				{Name: "scope"},
				{Name: "entity_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"value", "version", "updated_at"}),
		}).
		Create(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

func (r *layoutPreferenceRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) (*types.LayoutPreference, error) {
	var pref types.LayoutPreference
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND preference_key = ? AND scope = ? AND entity_type = ?", userID, key, scope, entityType).
		First(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *layoutPreferenceRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LayoutPreference, error) {
	var out []*types.LayoutPreference
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("preference_key asc, scope asc, entity_type asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *layoutPreferenceRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, key string, scope types.PreferenceScope, entityType string) error {
	return r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND preference_key = ? AND scope = ? AND entity_type = ?", userID, key, scope, entityType).
		Delete(&types.LayoutPreference{}).Error
}

func (r *layoutPreferenceRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.LayoutPreference{}).Error
}
