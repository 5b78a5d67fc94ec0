package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LayoutRevision is one saved schema document for a page. Saves append
// revisions; older ones are superseded, never deleted, so a bad publish is
// always one revision away from recovery.
type LayoutRevision struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Page       string         `gorm:"not null;index:idx_layout_revision_page,unique,priority:1;column:page" json:"page"`
	Revision   int            `gorm:"not null;index:idx_layout_revision_page,unique,priority:2;column:revision" json:"revision"`
	EntityType string         `gorm:"column:entity_type" json:"entity_type,omitempty"`
	Document   datatypes.JSON `gorm:"type:jsonb;not null;column:document" json:"document"`
	CreatedBy  uuid.UUID      `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (LayoutRevision) TableName() string { return "layout_revision" }
