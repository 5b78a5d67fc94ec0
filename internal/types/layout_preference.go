package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PreferenceScope is what a layout preference applies to.
type PreferenceScope string

const (
	// ScopeUser is a global preference for the user (e.g. theme).
	ScopeUser PreferenceScope = "user"
	// ScopePage customizes one page for the user.
	ScopePage PreferenceScope = "page"
	// ScopeEntity customizes pages of one entity type for the user.
	ScopeEntity PreferenceScope = "entity"
)

func (s PreferenceScope) Valid() bool {
	switch s {
	case ScopeUser, ScopePage, ScopeEntity:
		return true
	}
	return false
}

// LayoutPreference is one user's saved customization: a page layout
// override, a theme choice, collapsed sidebar state. Rows are strictly
// per-user; the unique index makes a save an upsert of that user's value and
// the user_id column is always filled from the authenticated request.
// Version carries the document schema version for document-valued rows and is
// empty for plain value preferences.
type LayoutPreference struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_layout_pref,unique,priority:1" json:"user_id"`
	User          *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	PreferenceKey string          `gorm:"not null;index:idx_layout_pref,unique,priority:2;column:preference_key" json:"preference_key"`
	Scope         PreferenceScope `gorm:"not null;index:idx_layout_pref,unique,priority:3;column:scope" json:"scope"`
	EntityType    string          `gorm:"index:idx_layout_pref,unique,priority:4;column:entity_type" json:"entity_type,omitempty"`
	Value         datatypes.JSON  `gorm:"type:jsonb;not null;column:value" json:"value"`
	Version       string          `gorm:"column:version" json:"version,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (LayoutPreference) TableName() string { return "layout_preference" }
