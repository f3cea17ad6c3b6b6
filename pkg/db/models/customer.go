package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds the CRM contact record policies reference by name today.
type Customer struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName    string     `gorm:"column:full_name;type:text;not null"`
	PhoneNumber *string    `gorm:"column:phone_number;type:text"`
	Email       *string    `gorm:"type:text"`
	AgentID     *uuid.UUID `gorm:"column:agent_id;type:uuid"`
	Notes       *string    `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string { return "customers" }
