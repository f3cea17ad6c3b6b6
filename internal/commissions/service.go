package commissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
)

// Service defines commission grid operations.
type Service interface {
	CreateRate(ctx context.Context, input CreateRateInput) (*RateDTO, error)
	ListRates(ctx context.Context, productID uuid.UUID, lineOfBusiness string) ([]RateDTO, error)
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

// CreateRateInput is one band of the tiered grid.
type CreateRateInput struct {
	ProductID      uuid.UUID
	LineOfBusiness string
	PremiumMin     decimal.Decimal
	PremiumMax     *decimal.Decimal
	Rate           decimal.Decimal
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time
}

// RateDTO is the API shape of a commission band.
type RateDTO struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"productId"`
	LineOfBusiness string           `json:"lineOfBusiness"`
	PremiumMin     decimal.Decimal  `json:"premiumMin"`
	PremiumMax     *decimal.Decimal `json:"premiumMax,omitempty"`
	Rate           decimal.Decimal  `json:"rate"`
	EffectiveFrom  time.Time        `json:"effectiveFrom"`
	EffectiveTo    *time.Time       `json:"effectiveTo,omitempty"`
}

// QuoteInput asks for the commission on one premium.
type QuoteInput struct {
	ProductID      uuid.UUID
	LineOfBusiness string
	Premium        decimal.Decimal
	AsOf           time.Time
}

// Quote is the resolved rate and the resulting commission amount.
type Quote struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type service struct {
	repo  Repository
	clock func() time.Time
}

// NewService wires commission dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commissions repository required")
	}
	return &service{repo: repo, clock: time.Now}, nil
}

func (s *service) CreateRate(ctx context.Context, input CreateRateInput) (*RateDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.LineOfBusiness == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line of business required")
	}
	if input.PremiumMin.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium min cannot be negative")
	}
	if input.PremiumMax != nil && !input.PremiumMax.GreaterThan(input.PremiumMin) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium max must exceed premium min")
	}
	if !input.Rate.IsPositive() || input.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be in (0, 1]")
	}
	if input.EffectiveFrom.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "effective from required")
	}

	rate := models.CommissionRate{
		ProductID:      input.ProductID,
		LineOfBusiness: input.LineOfBusiness,
		PremiumMin:     input.PremiumMin,
		PremiumMax:     input.PremiumMax,
		Rate:           input.Rate,
		EffectiveFrom:  input.EffectiveFrom,
		EffectiveTo:    input.EffectiveTo,
	}
	if err := s.repo.Create(ctx, &rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create commission rate")
	}
	dto := fromModel(rate)
	return &dto, nil
}

func (s *service) ListRates(ctx context.Context, productID uuid.UUID, lineOfBusiness string) ([]RateDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	rows, err := s.repo.ListForProduct(ctx, productID, lineOfBusiness)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commission rates")
	}
	rates := make([]RateDTO, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, fromModel(row))
	}
	return rates, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.LineOfBusiness == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line of business required")
	}
	if !input.Premium.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium must be positive")
	}
	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = s.clock().UTC()
	}

	rate, err := s.repo.FindRate(ctx, rateLookupParams{
		ProductID:      input.ProductID,
		LineOfBusiness: input.LineOfBusiness,
		Premium:        input.Premium,
		AsOf:           asOf,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no commission band covers this premium")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve commission rate")
	}

	return &Quote{
		Rate:   rate.Rate,
		Amount: input.Premium.Mul(rate.Rate).Round(2),
	}, nil
}

func fromModel(rate models.CommissionRate) RateDTO {
	return RateDTO{
		ID:             rate.ID,
		ProductID:      rate.ProductID,
		LineOfBusiness: rate.LineOfBusiness,
		PremiumMin:     rate.PremiumMin,
		PremiumMax:     rate.PremiumMax,
		Rate:           rate.Rate,
		EffectiveFrom:  rate.EffectiveFrom,
		EffectiveTo:    rate.EffectiveTo,
	}
}
