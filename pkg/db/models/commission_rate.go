package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRate is one cell of the tiered commission grid: a rate applies to
// a product + line of business for premiums inside [PremiumMin, PremiumMax).
// A null PremiumMax means the band is open-ended.
type CommissionRate struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index:idx_commission_grid"`
	LineOfBusiness string           `gorm:"column:line_of_business;type:text;not null;index:idx_commission_grid"`
	PremiumMin     decimal.Decimal  `gorm:"column:premium_min;type:numeric(14,2);not null"`
	PremiumMax     *decimal.Decimal `gorm:"column:premium_max;type:numeric(14,2)"`
	Rate           decimal.Decimal  `gorm:"column:rate;type:numeric(6,4);not null"`
	EffectiveFrom  time.Time        `gorm:"column:effective_from;type:date;not null"`
	EffectiveTo    *time.Time       `gorm:"column:effective_to;type:date"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (CommissionRate) TableName() string { return "commission_rates" }
