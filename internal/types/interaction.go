package types

import (
	"time"

	"github.com/google/uuid"
)

// InteractionKind is how a touchpoint happened.
type InteractionKind string

const (
	InteractionCall    InteractionKind = "call"
	InteractionEmail   InteractionKind = "email"
	InteractionMeeting InteractionKind = "meeting"
	InteractionNote    InteractionKind = "note"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionCall, InteractionEmail, InteractionMeeting, InteractionNote:
		return true
	}
	return false
}

type Interaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization   `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"-"`
	ContactID      *uuid.UUID      `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	Contact        *Contact        `gorm:"constraint:OnDelete:SET NULL;foreignKey:ContactID;references:ID" json:"-"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Kind           InteractionKind `gorm:"not null;column:kind" json:"kind"`
	Summary        string          `gorm:"not null;column:summary" json:"summary"`
	OccurredAt     time.Time       `gorm:"not null;index;column:occurred_at" json:"occurred_at"`
	CreatedAt      time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Interaction) TableName() string { return "interaction" }
