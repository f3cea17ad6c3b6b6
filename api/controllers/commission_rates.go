package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/api/responses"
	"github.com/mariaquintana/insurecrm-backend/api/validators"
	"github.com/mariaquintana/insurecrm-backend/internal/commissions"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

type createRateRequest struct {
	ProductID      string  `json:"productId" validate:"required,uuid"`
	LineOfBusiness string  `json:"lineOfBusiness" validate:"required"`
	PremiumMin     string  `json:"premiumMin" validate:"required"`
	PremiumMax     *string `json:"premiumMax,omitempty"`
	Rate           string  `json:"rate" validate:"required"`
	EffectiveFrom  string  `json:"effectiveFrom" validate:"required"`
	EffectiveTo    *string `json:"effectiveTo,omitempty"`
}

// CreateCommissionRate registers one band of a product's tiered grid.
func CreateCommissionRate(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		var body createRateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateRate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func (req createRateRequest) toInput() (commissions.CreateRateInput, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return commissions.CreateRateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	premiumMin, err := decimal.NewFromString(strings.TrimSpace(req.PremiumMin))
	if err != nil {
		return commissions.CreateRateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid premium min")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(req.Rate))
	if err != nil {
		return commissions.CreateRateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rate")
	}
	effectiveFrom, err := time.Parse(time.RFC3339, req.EffectiveFrom)
	if err != nil {
		return commissions.CreateRateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid effective from")
	}

	input := commissions.CreateRateInput{
		ProductID:      productID,
		LineOfBusiness: req.LineOfBusiness,
		PremiumMin:     premiumMin,
		Rate:           rate,
		EffectiveFrom:  effectiveFrom,
	}
	if req.PremiumMax != nil {
		premiumMax, err := decimal.NewFromString(strings.TrimSpace(*req.PremiumMax))
		if err != nil {
			return commissions.CreateRateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid premium max")
		}
		input.PremiumMax = &premiumMax
	}
	if req.EffectiveTo != nil {
		effectiveTo, err := time.Parse(time.RFC3339, *req.EffectiveTo)
		if err != nil {
			return commissions.CreateRateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid effective to")
		}
		input.EffectiveTo = &effectiveTo
	}
	return input, nil
}

// ListCommissionRates returns the rate bands for a product and line of business.
func ListCommissionRates(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		rates, err := svc.ListRates(r.Context(), productID, strings.TrimSpace(r.URL.Query().Get("lineOfBusiness")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rates})
	}
}

// QuoteCommission resolves the applicable rate and commission for a premium.
func QuoteCommission(svc commissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		premium, err := decimal.NewFromString(strings.TrimSpace(r.URL.Query().Get("premium")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid premium"))
			return
		}

		asOf := time.Now().UTC()
		if raw := strings.TrimSpace(r.URL.Query().Get("asOf")); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid as-of timestamp"))
				return
			}
			asOf = parsed
		}

		quote, err := svc.Quote(r.Context(), commissions.QuoteInput{
			ProductID:      productID,
			LineOfBusiness: strings.TrimSpace(r.URL.Query().Get("lineOfBusiness")),
			Premium:        premium,
			AsOf:           asOf,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
