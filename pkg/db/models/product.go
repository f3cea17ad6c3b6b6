package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is an insurance product offered by an insurer.
type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"type:text;not null"`
	LineOfBusiness string    `gorm:"column:line_of_business;type:text;not null"`
	InsurerID      uuid.UUID `gorm:"column:insurer_id;type:uuid;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
