package policies

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// CreatePolicyInput is the validated payload to register a policy. An empty
// PolicyNumber means the service assigns the next number in sequence. TempID
// carries the queue identifier when the entry originated offline.
type CreatePolicyInput struct {
	PolicyNumber   string
	ProductID      uuid.UUID
	CustomerName   string
	PhoneNumber    *string
	PremiumAmount  decimal.Decimal
	LineOfBusiness string
	InsurerID      *uuid.UUID
	PolicyStart    *time.Time
	PolicyEnd      *time.Time
	CreatedBy      actors.CreatorRef
	TempID         string
}

// PolicyDTO is the API shape of a policy.
type PolicyDTO struct {
	ID             uuid.UUID          `json:"id"`
	PolicyNumber   string             `json:"policyNumber"`
	ProductID      uuid.UUID          `json:"productId"`
	CustomerName   string             `json:"customerName"`
	PhoneNumber    *string            `json:"phoneNumber,omitempty"`
	PremiumAmount  decimal.Decimal    `json:"premiumAmount"`
	Status         enums.PolicyStatus `json:"status"`
	LineOfBusiness string             `json:"lineOfBusiness"`
	CreatedByType  enums.CreatorType  `json:"createdByType"`
	EmployeeID     *uuid.UUID         `json:"employeeId,omitempty"`
	AgentID        *uuid.UUID         `json:"agentId,omitempty"`
	InsurerID      *uuid.UUID         `json:"insurerId,omitempty"`
	PolicyStart    *time.Time         `json:"policyStartDate,omitempty"`
	PolicyEnd      *time.Time         `json:"policyEndDate,omitempty"`
	EscalatedAt    *time.Time         `json:"escalatedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// FromModel maps a policy row into its DTO.
func FromModel(policy models.Policy) PolicyDTO {
	return PolicyDTO{
		ID:             policy.ID,
		PolicyNumber:   policy.PolicyNumber,
		ProductID:      policy.ProductID,
		CustomerName:   policy.CustomerName,
		PhoneNumber:    policy.PhoneNumber,
		PremiumAmount:  policy.PremiumAmount,
		Status:         policy.PolicyStatus,
		LineOfBusiness: policy.LineOfBusiness,
		CreatedByType:  policy.CreatedByType,
		EmployeeID:     policy.EmployeeID,
		AgentID:        policy.AgentID,
		InsurerID:      policy.InsurerID,
		PolicyStart:    policy.PolicyStartDate,
		PolicyEnd:      policy.PolicyEndDate,
		EscalatedAt:    policy.EscalatedAt,
		CreatedAt:      policy.CreatedAt,
		UpdatedAt:      policy.UpdatedAt,
	}
}

// ListParams filters and paginates policy listings.
type ListParams struct {
	Status         *enums.PolicyStatus
	LineOfBusiness string
	EmployeeID     *uuid.UUID
	AgentID        *uuid.UUID
	Limit          int
	Cursor         string
}

// ListResult wraps returned policies and the cursor for the next page.
type ListResult struct {
	Items  []PolicyDTO `json:"items"`
	Cursor string      `json:"cursor"`
}
