package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Agent is an external selling actor (broker/field agent).
type Agent struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthUserID     string           `gorm:"column:auth_user_id;type:text;not null;uniqueIndex"`
	Email          string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string           `gorm:"column:password_hash;not null"`
	FirstName      string           `gorm:"column:first_name;not null"`
	LastName       string           `gorm:"column:last_name;not null"`
	LicenseNumber  *string          `gorm:"column:license_number;type:text"`
	CommissionCap  *decimal.Decimal `gorm:"column:commission_cap;type:numeric(14,2)"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	LastLoginAt    *time.Time       `gorm:"column:last_login_at"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Agent) TableName() string { return "agents" }
