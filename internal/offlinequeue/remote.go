package offlinequeue

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// SubmitInput is the insert-style contract the remote policy store accepts.
// PolicyNumber left empty asks the remote side to assign one. TempID rides
// along so the remote side can tie the accepted row back to the queue entry.
type SubmitInput struct {
	TempID         string
	PolicyNumber   string
	ProductID      string
	CustomerName   string
	PhoneNumber    string
	PremiumAmount  decimal.Decimal
	LineOfBusiness string
	InsurerID      string
	PolicyStart    *time.Time
	PolicyEnd      *time.Time
	CreatedBy      actors.CreatorRef
}

// SubmitResult is the success/failure shape every submission resolves to.
// Error carries a human-readable message when Success is false.
type SubmitResult struct {
	Success      bool
	ID           string
	PolicyNumber string
	Error        string
}

// RemoteStore accepts finalized policy rows. Implementations may return an
// error instead of a failed result; the queue folds both into SubmitResult
// so nothing propagates past the submission boundary.
type RemoteStore interface {
	Submit(ctx context.Context, input SubmitInput) (SubmitResult, error)
}

// ActorResolver maps the ambient session identity to an internal actor row.
type ActorResolver interface {
	Resolve(ctx context.Context, role enums.CreatorType, authUserID string) (actors.CreatorRef, error)
}
