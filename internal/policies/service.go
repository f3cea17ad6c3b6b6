package policies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db"
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

// Service defines policy lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreatePolicyInput) (*PolicyDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PolicyDTO, error)
	GetByNumber(ctx context.Context, number string) (*PolicyDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Activate(ctx context.Context, id uuid.UUID) (*PolicyDTO, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*PolicyDTO, error)
	Escalate(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	clock  func() time.Time
}

// NewService wires policy dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("policies repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		clock:  time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreatePolicyInput) (*PolicyDTO, error) {
	if input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.LineOfBusiness == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line of business required")
	}
	if !input.PremiumAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium amount must be positive")
	}
	if !input.CreatedBy.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator type required")
	}
	if input.PolicyStart != nil && input.PolicyEnd != nil && input.PolicyEnd.Before(*input.PolicyStart) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy end date precedes start date")
	}

	now := s.clock().UTC()
	policy := models.Policy{
		PolicyNumber:    input.PolicyNumber,
		ProductID:       input.ProductID,
		CustomerName:    input.CustomerName,
		PhoneNumber:     input.PhoneNumber,
		PremiumAmount:   input.PremiumAmount,
		PolicyStatus:    enums.PolicyStatusUnderwriting,
		LineOfBusiness:  input.LineOfBusiness,
		CreatedByType:   input.CreatedBy.Type,
		InsurerID:       input.InsurerID,
		PolicyStartDate: input.PolicyStart,
		PolicyEndDate:   input.PolicyEnd,
	}
	if actorID := input.CreatedBy.UUID(); actorID != nil {
		switch input.CreatedBy.Type {
		case enums.CreatorTypeEmployee:
			policy.EmployeeID = actorID
		case enums.CreatorTypeAgent:
			policy.AgentID = actorID
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if policy.PolicyNumber == "" {
			seq, err := repo.NextPolicyNumber(tx, now.Year())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign policy number")
			}
			policy.PolicyNumber = fmt.Sprintf("POL-%d-%05d", now.Year(), seq)
		}

		if err := repo.Create(ctx, &policy); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "policy number already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create policy")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPolicyCreated,
			AggregateType: enums.AggregatePolicy,
			AggregateID:   policy.ID,
			Version:       1,
			Actor:         buildActor(input.CreatedBy.UUID(), input.CreatedBy.Type),
			Data: payloads.PolicyCreatedEvent{
				PolicyID:       policy.ID,
				PolicyNumber:   policy.PolicyNumber,
				ProductID:      policy.ProductID,
				CustomerName:   policy.CustomerName,
				PremiumAmount:  policy.PremiumAmount,
				LineOfBusiness: policy.LineOfBusiness,
				CreatedByType:  policy.CreatedByType,
				CreatedByID:    input.CreatedBy.UUID(),
				TempID:         input.TempID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		if input.TempID != "" {
			synced := outbox.DomainEvent{
				EventType:     enums.EventPolicySynced,
				AggregateType: enums.AggregatePolicy,
				AggregateID:   policy.ID,
				Version:       1,
				Actor:         buildActor(input.CreatedBy.UUID(), input.CreatedBy.Type),
				Data: payloads.PolicySyncedEvent{
					PolicyID:     policy.ID,
					PolicyNumber: policy.PolicyNumber,
					TempID:       input.TempID,
					SyncedAt:     now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, synced); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(policy)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PolicyDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy id required")
	}
	policy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}
	dto := FromModel(*policy)
	return &dto, nil
}

func (s *service) GetByNumber(ctx context.Context, number string) (*PolicyDTO, error) {
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy number required")
	}
	policy, err := s.repo.FindByPolicyNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}
	dto := FromModel(*policy)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listPoliciesParams{
		Status:         params.Status,
		LineOfBusiness: params.LineOfBusiness,
		EmployeeID:     params.EmployeeID,
		AgentID:        params.AgentID,
		Limit:          params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list policies")
	}

	items := make([]PolicyDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) Activate(ctx context.Context, id uuid.UUID) (*PolicyDTO, error) {
	return s.transition(ctx, id, enums.PolicyStatusActive, "")
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*PolicyDTO, error) {
	return s.transition(ctx, id, enums.PolicyStatusCancelled, reason)
}

// Escalate moves a stale underwriting policy into the escalated state and
// emits the matching event. It reports whether the transition happened; a
// policy already escalated or moved on is left untouched.
func (s *service) Escalate(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "policy id required")
	}

	escalated := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		policy, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
		}

		now := s.clock().UTC()
		updated, err := repo.MarkEscalated(ctx, policy.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark policy escalated")
		}
		if !updated {
			return nil
		}
		escalated = true

		pendingDays := int(now.Sub(policy.CreatedAt).Hours() / 24)
		event := outbox.DomainEvent{
			EventType:     enums.EventPolicyEscalated,
			AggregateType: enums.AggregatePolicy,
			AggregateID:   policy.ID,
			Version:       1,
			Data: payloads.PolicyEscalatedEvent{
				PolicyID:     policy.ID,
				PolicyNumber: policy.PolicyNumber,
				PendingDays:  pendingDays,
				EscalatedAt:  now,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	return escalated, err
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.PolicyStatus, reason string) (*PolicyDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy id required")
	}

	var dto PolicyDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		policy, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
		}
		if policy.PolicyStatus == target {
			dto = FromModel(*policy)
			return nil
		}
		if !transitionAllowed(policy.PolicyStatus, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move policy from %s to %s", policy.PolicyStatus, target))
		}

		if err := repo.UpdateStatus(ctx, policy.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update policy status")
		}
		policy.PolicyStatus = target
		dto = FromModel(*policy)

		if target == enums.PolicyStatusCancelled {
			event := outbox.DomainEvent{
				EventType:     enums.EventPolicyCancelled,
				AggregateType: enums.AggregatePolicy,
				AggregateID:   policy.ID,
				Version:       1,
				Data: payloads.PolicyCancelledEvent{
					PolicyID:     policy.ID,
					PolicyNumber: policy.PolicyNumber,
					CancelledAt:  s.clock().UTC(),
					Reason:       reason,
				},
			}
			return s.outbox.Emit(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func transitionAllowed(from, to enums.PolicyStatus) bool {
	switch to {
	case enums.PolicyStatusActive:
		return from == enums.PolicyStatusUnderwriting || from == enums.PolicyStatusEscalated
	case enums.PolicyStatusCancelled:
		return from != enums.PolicyStatusExpired
	default:
		return false
	}
}

func buildActor(actorID *uuid.UUID, role enums.CreatorType) *outbox.ActorRef {
	if actorID == nil && role == "" {
		return nil
	}
	return &outbox.ActorRef{ActorID: actorID, Type: role}
}
