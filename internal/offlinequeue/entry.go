// Package offlinequeue owns the durable queue of policy entries created while
// a client may be offline. Entries get a temporary identifier at creation,
// are submitted to the remote policy store as soon as connectivity allows,
// and keep their local record until explicitly deleted or swept.
package offlinequeue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// OfflinePolicyEntry is one queued policy-creation record. TempID is assigned
// once and never changes; ID stays empty until the remote store accepts the
// entry, at which point Synced flips true in the same step.
type OfflinePolicyEntry struct {
	ID             string             `json:"id"`
	TempID         string             `json:"tempId"`
	PolicyNumber   string             `json:"policyNumber"`
	CustomerName   string             `json:"customerName"`
	PhoneNumber    string             `json:"phoneNumber,omitempty"`
	ProductID      string             `json:"productId"`
	PremiumAmount  decimal.Decimal    `json:"premiumAmount"`
	Status         enums.PolicyStatus `json:"status"`
	LineOfBusiness string             `json:"lineOfBusiness"`
	InsurerID      string             `json:"insurerId,omitempty"`
	PolicyStart    *time.Time         `json:"policyStartDate,omitempty"`
	PolicyEnd      *time.Time         `json:"policyEndDate,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      actors.CreatorRef  `json:"createdBy"`
	Synced         bool               `json:"synced"`
	SyncError      string             `json:"syncError,omitempty"`
}

// CreateInput carries the user-supplied policy fields plus the ambient
// session identity used to resolve the creating actor.
type CreateInput struct {
	PolicyNumber   string
	CustomerName   string
	PhoneNumber    string
	ProductID      string
	PremiumAmount  decimal.Decimal
	LineOfBusiness string
	InsurerID      string
	PolicyStart    *time.Time
	PolicyEnd      *time.Time

	Role       enums.CreatorType
	AuthUserID string
}
