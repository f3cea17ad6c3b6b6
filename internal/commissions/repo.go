package commissions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
)

// Repository exposes persistence helpers for the commission rate grid.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rate *models.CommissionRate) error
	ListForProduct(ctx context.Context, productID uuid.UUID, lineOfBusiness string) ([]models.CommissionRate, error)
	FindRate(ctx context.Context, params rateLookupParams) (*models.CommissionRate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a commissions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type rateLookupParams struct {
	ProductID      uuid.UUID
	LineOfBusiness string
	Premium        decimal.Decimal
	AsOf           time.Time
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, rate *models.CommissionRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repositoryImpl) ListForProduct(ctx context.Context, productID uuid.UUID, lineOfBusiness string) ([]models.CommissionRate, error) {
	var rates []models.CommissionRate
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if lineOfBusiness != "" {
		query = query.Where("line_of_business = ?", lineOfBusiness)
	}
	err := query.Order("premium_min ASC").Find(&rates).Error
	return rates, err
}

// FindRate returns the band covering the premium at the given date. The grid
// stores half-open [premium_min, premium_max) bands; a null premium_max is
// open-ended.
func (r *repositoryImpl) FindRate(ctx context.Context, params rateLookupParams) (*models.CommissionRate, error) {
	var rate models.CommissionRate
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND line_of_business = ?", params.ProductID, params.LineOfBusiness).
		Where("premium_min <= ?", params.Premium).
		Where("premium_max IS NULL OR premium_max > ?", params.Premium).
		Where("effective_from <= ?", params.AsOf).
		Where("effective_to IS NULL OR effective_to >= ?", params.AsOf).
		Order("effective_from DESC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
