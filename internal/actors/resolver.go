package actors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// Repository looks up actor rows by their authentication identity.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to actor lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindEmployeeIDByAuthUser returns the employee row id for the auth identity.
func (r *Repository) FindEmployeeIDByAuthUser(ctx context.Context, authUserID string) (uuid.UUID, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Select("id").
		Where("auth_user_id = ?", authUserID).
		First(&employee).Error
	if err != nil {
		return uuid.Nil, err
	}
	return employee.ID, nil
}

// FindAgentIDByAuthUser returns the agent row id for the auth identity.
func (r *Repository) FindAgentIDByAuthUser(ctx context.Context, authUserID string) (uuid.UUID, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Select("id").
		Where("auth_user_id = ?", authUserID).
		First(&agent).Error
	if err != nil {
		return uuid.Nil, err
	}
	return agent.ID, nil
}

type lookupRepository interface {
	FindEmployeeIDByAuthUser(ctx context.Context, authUserID string) (uuid.UUID, error)
	FindAgentIDByAuthUser(ctx context.Context, authUserID string) (uuid.UUID, error)
}

// Resolver maps an authenticated session to the internal actor record.
type Resolver struct {
	repo lookupRepository
}

// NewResolver builds a resolver over the provided repository.
func NewResolver(repo lookupRepository) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("actor repository required")
	}
	return &Resolver{repo: repo}, nil
}

// Resolve returns a CreatorRef for the session. A missing row yields an
// unresolved reference with a nil error so callers can proceed; only
// infrastructure failures surface as errors.
func (r *Resolver) Resolve(ctx context.Context, role enums.CreatorType, authUserID string) (CreatorRef, error) {
	ref := CreatorRef{Type: role}
	if authUserID == "" {
		return ref, nil
	}

	var (
		id  uuid.UUID
		err error
	)
	switch role {
	case enums.CreatorTypeEmployee:
		id, err = r.repo.FindEmployeeIDByAuthUser(ctx, authUserID)
	case enums.CreatorTypeAgent:
		id, err = r.repo.FindAgentIDByAuthUser(ctx, authUserID)
	default:
		return ref, fmt.Errorf("unknown creator type %q", role)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ref, nil
		}
		return ref, err
	}
	ref.ID = id.String()
	return ref, nil
}
