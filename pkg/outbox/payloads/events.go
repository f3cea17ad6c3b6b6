package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// PolicyCreatedEvent signals a policy accepted into underwriting. TempID is
// set when the record originated from an offline queue entry.
type PolicyCreatedEvent struct {
	PolicyID       uuid.UUID         `json:"policyId"`
	PolicyNumber   string            `json:"policyNumber"`
	ProductID      uuid.UUID         `json:"productId"`
	CustomerName   string            `json:"customerName"`
	PremiumAmount  decimal.Decimal   `json:"premiumAmount"`
	LineOfBusiness string            `json:"lineOfBusiness"`
	CreatedByType  enums.CreatorType `json:"createdByType"`
	CreatedByID    *uuid.UUID        `json:"createdById,omitempty"`
	TempID         string            `json:"tempId,omitempty"`
}

// PolicySyncedEvent is emitted when a queued offline entry lands server-side
// and its temporary identifier is retired.
type PolicySyncedEvent struct {
	PolicyID     uuid.UUID `json:"policyId"`
	PolicyNumber string    `json:"policyNumber"`
	TempID       string    `json:"tempId"`
	SyncedAt     time.Time `json:"syncedAt"`
}

// PolicyEscalatedEvent reports a policy stuck in underwriting past the
// configured age.
type PolicyEscalatedEvent struct {
	PolicyID     uuid.UUID `json:"policyId"`
	PolicyNumber string    `json:"policyNumber"`
	PendingDays  int       `json:"pendingDays"`
	EscalatedAt  time.Time `json:"escalatedAt"`
}

// PolicyCancelledEvent is emitted when a policy is cancelled.
type PolicyCancelledEvent struct {
	PolicyID     uuid.UUID `json:"policyId"`
	PolicyNumber string    `json:"policyNumber"`
	CancelledAt  time.Time `json:"cancelledAt"`
	Reason       string    `json:"reason,omitempty"`
}

// CustomerCreatedEvent signals a new customer record.
type CustomerCreatedEvent struct {
	CustomerID uuid.UUID `json:"customerId"`
	FullName   string    `json:"fullName"`
}

// NotificationRequestedEvent tells downstream systems to alert an employee or
// agent.
type NotificationRequestedEvent struct {
	RecipientType enums.CreatorType      `json:"recipientType"`
	RecipientID   uuid.UUID              `json:"recipientId"`
	PolicyID      *uuid.UUID             `json:"policyId,omitempty"`
	Type          enums.NotificationType `json:"type"`
}
