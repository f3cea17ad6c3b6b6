package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// Policy is the finalized policy row, the remote source of truth once an
// offline entry has been accepted. Exactly one of EmployeeID/AgentID is set,
// matching CreatedByType.
type Policy struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PolicyNumber    string             `gorm:"column:policy_number;type:text;not null;uniqueIndex"`
	ProductID       uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	CustomerName    string             `gorm:"column:customer_name;type:text;not null"`
	PhoneNumber     *string            `gorm:"column:phone_number;type:text"`
	PremiumAmount   decimal.Decimal    `gorm:"column:premium_amount;type:numeric(14,2);not null"`
	PolicyStatus    enums.PolicyStatus `gorm:"column:policy_status;type:policy_status;not null"`
	LineOfBusiness  string             `gorm:"column:line_of_business;type:text;not null"`
	CreatedByType   enums.CreatorType  `gorm:"column:created_by_type;type:creator_type;not null"`
	EmployeeID      *uuid.UUID         `gorm:"column:employee_id;type:uuid"`
	AgentID         *uuid.UUID         `gorm:"column:agent_id;type:uuid"`
	InsurerID       *uuid.UUID         `gorm:"column:insurer_id;type:uuid"`
	PolicyStartDate *time.Time         `gorm:"column:policy_start_date;type:date"`
	PolicyEndDate   *time.Time         `gorm:"column:policy_end_date;type:date"`
	EscalatedAt     *time.Time         `gorm:"column:escalated_at;type:timestamptz"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the plural table naming used across the schema.
func (Policy) TableName() string { return "policies" }
