package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/outbox"
	"github.com/mariaquintana/insurecrm-backend/pkg/outbox/payloads"
	"github.com/mariaquintana/insurecrm-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines customer record operations.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
}

// CreateCustomerInput is the validated payload to register a customer.
type CreateCustomerInput struct {
	FullName    string
	PhoneNumber *string
	Email       *string
	AgentID     *uuid.UUID
	Notes       *string
}

// UpdateCustomerInput holds optional mutation values.
type UpdateCustomerInput struct {
	FullName    *string
	PhoneNumber *string
	Email       *string
	Notes       *string
}

// CustomerDTO is the API shape of a customer.
type CustomerDTO struct {
	ID          uuid.UUID  `json:"id"`
	FullName    string     `json:"fullName"`
	PhoneNumber *string    `json:"phoneNumber,omitempty"`
	Email       *string    `json:"email,omitempty"`
	AgentID     *uuid.UUID `json:"agentId,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SearchParams filters and paginates customer search.
type SearchParams struct {
	Query   string
	AgentID *uuid.UUID
	Limit   int
	Cursor  string
}

// SearchResult wraps returned customers and the cursor for the next page.
type SearchResult struct {
	Items  []CustomerDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService wires customer dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	if input.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}

	customer := models.Customer{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		AgentID:     input.AgentID,
		Notes:       input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventCustomerCreated,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Version:       1,
			Data: payloads.CustomerCreatedEvent{
				CustomerID: customer.ID,
				FullName:   customer.FullName,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	dto := fromModel(customer)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	dto := fromModel(*customer)
	return &dto, nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	query := searchCustomersParams{
		Query:   params.Query,
		AgentID: params.AgentID,
		Limit:   params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search customers")
	}

	items := make([]CustomerDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromModel(row))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &SearchResult{Items: items, Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	updates := map[string]any{}
	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		updates["full_name"] = *input.FullName
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = *input.PhoneNumber
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return s.Get(ctx, id)
}

func fromModel(customer models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:          customer.ID,
		FullName:    customer.FullName,
		PhoneNumber: customer.PhoneNumber,
		Email:       customer.Email,
		AgentID:     customer.AgentID,
		Notes:       customer.Notes,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
