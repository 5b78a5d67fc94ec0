package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contact struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization  `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"-"`
	FirstName      string         `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string         `gorm:"not null;column:last_name" json:"last_name"`
	Title          string         `gorm:"column:title" json:"title,omitempty"`
	Email          string         `gorm:"index;column:email" json:"email,omitempty"`
	Phone          string         `gorm:"column:phone" json:"phone,omitempty"`
	IsPrimary      bool           `gorm:"not null;default:false;column:is_primary" json:"is_primary"`
	Notes          string         `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Contact) TableName() string { return "contact" }
