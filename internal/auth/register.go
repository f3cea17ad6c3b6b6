package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/pkg/config"
	"github.com/mariaquintana/insurecrm-backend/pkg/db"
	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/security"
)

// RegisterEmployeeRequest contains the payload for onboarding an internal staff actor.
type RegisterEmployeeRequest struct {
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	BranchCode *string `json:"branch_code,omitempty"`
	AuthUserID string  `json:"auth_user_id,omitempty"`
}

// RegisterAgentRequest contains the payload for onboarding a field agent.
type RegisterAgentRequest struct {
	FirstName     string           `json:"first_name" validate:"required"`
	LastName      string           `json:"last_name" validate:"required"`
	Email         string           `json:"email" validate:"required,email"`
	Password      string           `json:"password" validate:"required,min=8"`
	LicenseNumber *string          `json:"license_number,omitempty"`
	CommissionCap *decimal.Decimal `json:"commission_cap,omitempty"`
	AuthUserID    string           `json:"auth_user_id,omitempty"`
}

// RegisterService handles actor onboarding.
type RegisterService interface {
	RegisterEmployee(ctx context.Context, req RegisterEmployeeRequest) (*ActorProfile, error)
	RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*ActorProfile, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerEmployeeWriter interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
}

type registerAgentWriter interface {
	FindByEmail(ctx context.Context, email string) (*models.Agent, error)
	Create(ctx context.Context, agent *models.Agent) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The repo factories default to the gorm-backed implementations.
type RegisterServiceParams struct {
	TxRunner            txRunner
	EmployeeRepoFactory func(tx *gorm.DB) registerEmployeeWriter
	AgentRepoFactory    func(tx *gorm.DB) registerAgentWriter
	PasswordConfig      config.PasswordConfig
}

type registerService struct {
	tx            txRunner
	employeeRepos func(tx *gorm.DB) registerEmployeeWriter
	agentRepos    func(tx *gorm.DB) registerAgentWriter
	passwordCfg   config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.EmployeeRepoFactory == nil {
		params.EmployeeRepoFactory = func(tx *gorm.DB) registerEmployeeWriter {
			return NewEmployeeRepository(tx)
		}
	}
	if params.AgentRepoFactory == nil {
		params.AgentRepoFactory = func(tx *gorm.DB) registerAgentWriter {
			return NewAgentRepository(tx)
		}
	}
	return &registerService{
		tx:            params.TxRunner,
		employeeRepos: params.EmployeeRepoFactory,
		agentRepos:    params.AgentRepoFactory,
		passwordCfg:   params.PasswordConfig,
	}, nil
}

func (s *registerService) RegisterEmployee(ctx context.Context, req RegisterEmployeeRequest) (*ActorProfile, error) {
	email, passwordHash, err := s.prepareCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	employee := &models.Employee{
		AuthUserID:   authUserIDOrNew(req.AuthUserID),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		BranchCode:   req.BranchCode,
		IsActive:     true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.employeeRepos(tx)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if err := repo.Create(ctx, employee); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create employee")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	profile := employeeProfile(employee)
	return &profile, nil
}

func (s *registerService) RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*ActorProfile, error) {
	email, passwordHash, err := s.prepareCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if req.CommissionCap != nil && req.CommissionCap.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission cap cannot be negative")
	}

	agent := &models.Agent{
		AuthUserID:    authUserIDOrNew(req.AuthUserID),
		Email:         email,
		PasswordHash:  passwordHash,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		LicenseNumber: req.LicenseNumber,
		CommissionCap: req.CommissionCap,
		IsActive:      true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.agentRepos(tx)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if err := repo.Create(ctx, agent); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create agent")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	profile := agentProfile(agent)
	return &profile, nil
}

func (s *registerService) prepareCredentials(email, password string) (string, string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(password) < 8 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return normalized, passwordHash, nil
}

func authUserIDOrNew(provided string) string {
	if trimmed := strings.TrimSpace(provided); trimmed != "" {
		return trimmed
	}
	return uuid.NewString()
}
