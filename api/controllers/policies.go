package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/api/middleware"
	"github.com/mariaquintana/insurecrm-backend/api/responses"
	"github.com/mariaquintana/insurecrm-backend/api/validators"
	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/internal/offlinequeue"
	"github.com/mariaquintana/insurecrm-backend/internal/policies"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

type createPolicyRequest struct {
	PolicyNumber   string  `json:"policyNumber,omitempty"`
	ProductID      string  `json:"productId" validate:"required,uuid"`
	CustomerName   string  `json:"customerName" validate:"required"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
	PremiumAmount  string  `json:"premiumAmount" validate:"required"`
	LineOfBusiness string  `json:"lineOfBusiness" validate:"required"`
	InsurerID      *string `json:"insurerId,omitempty" validate:"omitempty,uuid"`
	PolicyStart    *string `json:"policyStartDate,omitempty"`
	PolicyEnd      *string `json:"policyEndDate,omitempty"`
}

// creatorFromContext rebuilds the acting employee/agent reference from the
// authenticated request context.
func creatorFromContext(r *http.Request) (actors.CreatorRef, error) {
	role, err := enums.ParseCreatorType(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return actors.CreatorRef{}, pkgerrors.New(pkgerrors.CodeForbidden, "actor role required")
	}
	actorID := middleware.ActorIDFromContext(r.Context())
	if role == enums.CreatorTypeEmployee {
		return actors.EmployeeRef(actorID), nil
	}
	return actors.AgentRef(actorID), nil
}

func (req createPolicyRequest) toInput(creator actors.CreatorRef) (policies.CreatePolicyInput, error) {
	premium, err := decimal.NewFromString(strings.TrimSpace(req.PremiumAmount))
	if err != nil {
		return policies.CreatePolicyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid premium amount")
	}

	input := policies.CreatePolicyInput{
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		PremiumAmount:  premium,
		LineOfBusiness: req.LineOfBusiness,
		CreatedBy:      creator,
	}

	// Offline clients may send the queue's placeholder in the policy number
	// slot; it is carried as the temp id and a real number is assigned.
	number := strings.TrimSpace(req.PolicyNumber)
	if offlinequeue.IsTemporaryPolicyNumber(number) {
		input.TempID = number
	} else {
		input.PolicyNumber = number
	}

	if productID, err := uuid.Parse(req.ProductID); err == nil {
		input.ProductID = productID
	} else {
		return policies.CreatePolicyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	if req.InsurerID != nil {
		insurerID, err := uuid.Parse(*req.InsurerID)
		if err != nil {
			return policies.CreatePolicyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid insurer id")
		}
		input.InsurerID = &insurerID
	}
	if req.PolicyStart != nil {
		start, err := time.Parse(time.RFC3339, *req.PolicyStart)
		if err != nil {
			return policies.CreatePolicyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy start date")
		}
		input.PolicyStart = &start
	}
	if req.PolicyEnd != nil {
		end, err := time.Parse(time.RFC3339, *req.PolicyEnd)
		if err != nil {
			return policies.CreatePolicyInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy end date")
		}
		input.PolicyEnd = &end
	}
	return input, nil
}

// CreatePolicy registers a policy for the acting employee or agent.
func CreatePolicy(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "policy service unavailable"))
			return
		}

		creator, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createPolicyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput(creator)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ListPolicies returns a paginated, filterable policy listing.
func ListPolicies(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "policy service unavailable"))
			return
		}

		params := policies.ListParams{
			LineOfBusiness: strings.TrimSpace(r.URL.Query().Get("lineOfBusiness")),
			Cursor:         strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			parsed, err := enums.ParsePolicyStatus(status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = &parsed
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		// Agents only see their own book of business.
		if middleware.RoleFromContext(r.Context()) == string(enums.CreatorTypeAgent) {
			if actorID, err := uuid.Parse(middleware.ActorIDFromContext(r.Context())); err == nil {
				params.AgentID = &actorID
			}
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetPolicy fetches one policy by id.
func GetPolicy(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "policy service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "policyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy id"))
			return
		}

		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type cancelPolicyRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelPolicy moves a policy to cancelled.
func CancelPolicy(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "policy service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "policyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy id"))
			return
		}

		var body cancelPolicyRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		dto, err := svc.Cancel(r.Context(), id, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ActivatePolicy moves a policy from underwriting or escalated to active.
func ActivatePolicy(svc policies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "policy service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "policyId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy id"))
			return
		}

		dto, err := svc.Activate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
