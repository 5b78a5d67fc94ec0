package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationKind is the brokerage role of an organization.
type OrganizationKind string

const (
	OrgKindPrincipal   OrganizationKind = "principal"
	OrgKindDistributor OrganizationKind = "distributor"
	OrgKindOperator    OrganizationKind = "operator"
)

func OrganizationKinds() []OrganizationKind {
	return []OrganizationKind{OrgKindPrincipal, OrgKindDistributor, OrgKindOperator}
}

func (k OrganizationKind) Valid() bool {
	switch k {
	case OrgKindPrincipal, OrgKindDistributor, OrgKindOperator:
		return true
	}
	return false
}

// OrganizationPriority is the account's call priority, A highest.
type OrganizationPriority string

const (
	OrgPriorityA OrganizationPriority = "a"
	OrgPriorityB OrganizationPriority = "b"
	OrgPriorityC OrganizationPriority = "c"
	OrgPriorityD OrganizationPriority = "d"
)

func OrganizationPriorities() []OrganizationPriority {
	return []OrganizationPriority{OrgPriorityA, OrgPriorityB, OrgPriorityC, OrgPriorityD}
}

func (p OrganizationPriority) Valid() bool {
	switch p {
	case OrgPriorityA, OrgPriorityB, OrgPriorityC, OrgPriorityD:
		return true
	}
	return false
}

type Organization struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string               `gorm:"not null;index;column:name" json:"name"`
	Kind      OrganizationKind     `gorm:"not null;index;column:kind" json:"kind"`
	Priority  OrganizationPriority `gorm:"not null;default:'c';index;column:priority" json:"priority"`
	Region    string               `gorm:"column:region" json:"region,omitempty"`
	City      string               `gorm:"column:city" json:"city,omitempty"`
	State     string               `gorm:"column:state" json:"state,omitempty"`
	Phone     string               `gorm:"column:phone" json:"phone,omitempty"`
	Website   string               `gorm:"column:website" json:"website,omitempty"`
	Notes     string               `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time            `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time            `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt       `gorm:"index" json:"-"`
}

func (Organization) TableName() string { return "organization" }
