package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/api/middleware"
	"github.com/mariaquintana/insurecrm-backend/api/responses"
	"github.com/mariaquintana/insurecrm-backend/api/validators"
	"github.com/mariaquintana/insurecrm-backend/internal/customers"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

type createCustomerRequest struct {
	FullName    string  `json:"fullName" validate:"required"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	AgentID     *string `json:"agentId,omitempty" validate:"omitempty,uuid"`
	Notes       *string `json:"notes,omitempty"`
}

type updateCustomerRequest struct {
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes       *string `json:"notes,omitempty"`
}

// CreateCustomer registers a customer record.
func CreateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var body createCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customers.CreateCustomerInput{
			FullName:    body.FullName,
			PhoneNumber: body.PhoneNumber,
			Email:       body.Email,
			Notes:       body.Notes,
		}
		if body.AgentID != nil {
			agentID, err := uuid.Parse(*body.AgentID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agent id"))
				return
			}
			input.AgentID = &agentID
		} else if middleware.RoleFromContext(r.Context()) == string(enums.CreatorTypeAgent) {
			// Agents own the customers they create.
			if actorID, err := uuid.Parse(middleware.ActorIDFromContext(r.Context())); err == nil {
				input.AgentID = &actorID
			}
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// SearchCustomers runs a paginated name/phone/email search.
func SearchCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		params := customers.SearchParams{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		if middleware.RoleFromContext(r.Context()) == string(enums.CreatorTypeAgent) {
			if actorID, err := uuid.Parse(middleware.ActorIDFromContext(r.Context())); err == nil {
				params.AgentID = &actorID
			}
		}

		result, err := svc.Search(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetCustomer fetches one customer by id.
func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "customerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
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

// UpdateCustomer applies a partial update to a customer record.
func UpdateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "customerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		var body updateCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, customers.UpdateCustomerInput{
			FullName:    body.FullName,
			PhoneNumber: body.PhoneNumber,
			Email:       body.Email,
			Notes:       body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
