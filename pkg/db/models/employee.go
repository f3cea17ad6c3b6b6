package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is an internal staff actor. AuthUserID links the row to the
// authentication identity carried in JWT claims.
type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthUserID   string     `gorm:"column:auth_user_id;type:text;not null;uniqueIndex"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	BranchCode   *string    `gorm:"column:branch_code;type:text"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string { return "employees" }
