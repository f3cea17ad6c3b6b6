package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
)

type employeeRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type agentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Agent, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepository builds the gorm-backed employee lookup used by login.
func NewEmployeeRepository(db *gorm.DB) *employeeRepo {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *employeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

type agentRepo struct {
	db *gorm.DB
}

// NewAgentRepository builds the gorm-backed agent lookup used by login.
func NewAgentRepository(db *gorm.DB) *agentRepo {
	return &agentRepo{db: db}
}

func (r *agentRepo) FindByEmail(ctx context.Context, email string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *agentRepo) Create(ctx context.Context, agent *models.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}
