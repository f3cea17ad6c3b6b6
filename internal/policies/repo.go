package policies

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	"github.com/mariaquintana/insurecrm-backend/pkg/pagination"
)

// Repository exposes persistence helpers for policies.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, policy *models.Policy) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	FindByPolicyNumber(ctx context.Context, number string) (*models.Policy, error)
	List(ctx context.Context, params listPoliciesParams) ([]models.Policy, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PolicyStatus) error
	MarkEscalated(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	FindStaleUnderwriting(ctx context.Context, cutoff time.Time, limit int) ([]models.Policy, error)
	NextPolicyNumber(tx *gorm.DB, year int) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a policies repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listPoliciesParams struct {
	Status         *enums.PolicyStatus
	LineOfBusiness string
	EmployeeID     *uuid.UUID
	AgentID        *uuid.UUID
	Limit          int
	Cursor         *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, policy *models.Policy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	if err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *repositoryImpl) FindByPolicyNumber(ctx context.Context, number string) (*models.Policy, error) {
	var policy models.Policy
	if err := r.db.WithContext(ctx).First(&policy, "policy_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listPoliciesParams) ([]models.Policy, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Policy{})
	if params.Status != nil {
		query = query.Where("policy_status = ?", *params.Status)
	}
	if params.LineOfBusiness != "" {
		query = query.Where("line_of_business = ?", params.LineOfBusiness)
	}
	if params.EmployeeID != nil {
		query = query.Where("employee_id = ?", *params.EmployeeID)
	}
	if params.AgentID != nil {
		query = query.Where("agent_id = ?", *params.AgentID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var policies []models.Policy
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&policies).Error; err != nil {
		return nil, nil, err
	}

	if len(policies) > normalized {
		next := policies[normalized]
		policies = policies[:normalized]
		return policies, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return policies, nil, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PolicyStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Policy{}).
		Where("id = ?", id).
		UpdateColumn("policy_status", status).Error
}

// MarkEscalated flips a policy into the escalated state once; a second call
// for the same policy reports no update.
func (r *repositoryImpl) MarkEscalated(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Policy{}).
		Where("id = ? AND policy_status = ? AND escalated_at IS NULL", id, enums.PolicyStatusUnderwriting).
		UpdateColumns(map[string]any{
			"policy_status": enums.PolicyStatusEscalated,
			"escalated_at":  now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindStaleUnderwriting(ctx context.Context, cutoff time.Time, limit int) ([]models.Policy, error) {
	if limit <= 0 {
		limit = 100
	}
	var policies []models.Policy
	err := r.db.WithContext(ctx).
		Where("policy_status = ? AND escalated_at IS NULL AND created_at < ?", enums.PolicyStatusUnderwriting, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&policies).Error
	return policies, err
}

// NextPolicyNumber increments the per-year sequence inside the caller's
// transaction so concurrent creations never share a number.
func (r *repositoryImpl) NextPolicyNumber(tx *gorm.DB, year int) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var next int64
	err := db.Raw(`
		INSERT INTO policy_counters (year, last_value)
		VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = policy_counters.last_value + 1
		RETURNING last_value`, year).Scan(&next).Error
	return next, err
}
