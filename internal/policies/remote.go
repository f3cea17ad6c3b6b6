package policies

import (
	"context"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/internal/offlinequeue"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
)

// Remote adapts the policy service to the queue's submission boundary.
// Rejections (validation, conflicts) come back as unsuccessful results so the
// queue records the reason instead of retrying blindly; infrastructure errors
// are surfaced as errors and keep the entry eligible for the next pass.
type Remote struct {
	svc Service
}

// NewRemote wraps a policy service.
func NewRemote(svc Service) (*Remote, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "policy service required")
	}
	return &Remote{svc: svc}, nil
}

// Submit registers one queued entry as a policy.
func (r *Remote) Submit(ctx context.Context, input offlinequeue.SubmitInput) (offlinequeue.SubmitResult, error) {
	create := CreatePolicyInput{
		TempID:         input.TempID,
		PolicyNumber:   input.PolicyNumber,
		CustomerName:   input.CustomerName,
		PremiumAmount:  input.PremiumAmount,
		LineOfBusiness: input.LineOfBusiness,
		PolicyStart:    input.PolicyStart,
		PolicyEnd:      input.PolicyEnd,
		CreatedBy:      input.CreatedBy,
	}
	if input.PhoneNumber != "" {
		phone := input.PhoneNumber
		create.PhoneNumber = &phone
	}
	if productID, err := uuid.Parse(input.ProductID); err == nil {
		create.ProductID = productID
	}
	if input.InsurerID != "" {
		if insurerID, err := uuid.Parse(input.InsurerID); err == nil {
			create.InsurerID = &insurerID
		}
	}

	dto, err := r.svc.Create(ctx, create)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
				return offlinequeue.SubmitResult{Success: false, Error: typed.Error()}, nil
			}
		}
		return offlinequeue.SubmitResult{}, err
	}

	return offlinequeue.SubmitResult{
		Success:      true,
		ID:           dto.ID.String(),
		PolicyNumber: dto.PolicyNumber,
	}, nil
}
