package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/api/middleware"
	"github.com/mariaquintana/insurecrm-backend/api/responses"
	"github.com/mariaquintana/insurecrm-backend/api/validators"
	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/internal/offlinequeue"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

const maxSyncBatchSize = 100

type syncPolicyEntry struct {
	TempID         string  `json:"tempId" validate:"required"`
	PolicyNumber   string  `json:"policyNumber,omitempty"`
	ProductID      string  `json:"productId" validate:"required,uuid"`
	CustomerName   string  `json:"customerName" validate:"required"`
	PhoneNumber    string  `json:"phoneNumber,omitempty"`
	PremiumAmount  string  `json:"premiumAmount" validate:"required"`
	LineOfBusiness string  `json:"lineOfBusiness" validate:"required"`
	InsurerID      string  `json:"insurerId,omitempty" validate:"omitempty,uuid"`
	PolicyStart    *string `json:"policyStartDate,omitempty"`
	PolicyEnd      *string `json:"policyEndDate,omitempty"`
}

type syncPoliciesRequest struct {
	Entries []syncPolicyEntry `json:"entries" validate:"required,min=1,dive"`
}

type syncPolicyResult struct {
	TempID       string `json:"tempId"`
	Success      bool   `json:"success"`
	ID           string `json:"id,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
	Error        string `json:"error,omitempty"`
}

type syncPoliciesResponse struct {
	Results   []syncPolicyResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// SyncPolicies replays a client's offline queue in order. Each entry resolves
// independently; a rejected or failed entry never aborts the rest of the batch.
func SyncPolicies(remote offlinequeue.RemoteStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if remote == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "policy sync unavailable"))
			return
		}

		creator, err := creatorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body syncPoliciesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(body.Entries) > maxSyncBatchSize {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sync batch too large"))
			return
		}

		resp := syncPoliciesResponse{Results: make([]syncPolicyResult, 0, len(body.Entries))}
		for _, entry := range body.Entries {
			result := syncPolicyResult{TempID: entry.TempID}

			input, err := entry.toSubmitInput(creator)
			if err != nil {
				result.Error = err.Error()
			} else {
				submitted, err := remote.Submit(r.Context(), input)
				if err != nil {
					entryCtx := logg.WithField(r.Context(), "temp_id", entry.TempID)
					logg.Error(entryCtx, "policy sync entry failed", err)
					result.Error = "submission failed"
				} else {
					result.Success = submitted.Success
					result.ID = submitted.ID
					result.PolicyNumber = submitted.PolicyNumber
					result.Error = submitted.Error
				}
			}

			if result.Success {
				resp.Succeeded++
			} else {
				resp.Failed++
			}
			resp.Results = append(resp.Results, result)
		}

		batchCtx := logg.WithFields(r.Context(), map[string]any{
			"actor_id":  middleware.ActorIDFromContext(r.Context()),
			"entries":   len(body.Entries),
			"succeeded": resp.Succeeded,
			"failed":    resp.Failed,
		})
		logg.Info(batchCtx, "policy sync batch processed")
		responses.WriteSuccess(w, resp)
	}
}

func (e syncPolicyEntry) toSubmitInput(creator actors.CreatorRef) (offlinequeue.SubmitInput, error) {
	premium, err := decimal.NewFromString(strings.TrimSpace(e.PremiumAmount))
	if err != nil {
		return offlinequeue.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid premium amount")
	}

	input := offlinequeue.SubmitInput{
		TempID:         e.TempID,
		ProductID:      e.ProductID,
		CustomerName:   e.CustomerName,
		PhoneNumber:    e.PhoneNumber,
		PremiumAmount:  premium,
		LineOfBusiness: e.LineOfBusiness,
		InsurerID:      e.InsurerID,
		CreatedBy:      creator,
	}

	number := strings.TrimSpace(e.PolicyNumber)
	if !offlinequeue.IsTemporaryPolicyNumber(number) {
		input.PolicyNumber = number
	}

	if e.PolicyStart != nil {
		start, err := time.Parse(time.RFC3339, *e.PolicyStart)
		if err != nil {
			return offlinequeue.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy start date")
		}
		input.PolicyStart = &start
	}
	if e.PolicyEnd != nil {
		end, err := time.Parse(time.RFC3339, *e.PolicyEnd)
		if err != nil {
			return offlinequeue.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid policy end date")
		}
		input.PolicyEnd = &end
	}
	return input, nil
}
