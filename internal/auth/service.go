package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	pkgAuth "github.com/mariaquintana/insurecrm-backend/pkg/auth"
	"github.com/mariaquintana/insurecrm-backend/pkg/auth/session"
	"github.com/mariaquintana/insurecrm-backend/pkg/config"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	employees employeeRepository
	agents    agentRepository
	session   sessionManager
	jwtCfg    config.JWTConfig
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	EmployeeRepo   employeeRepository
	AgentRepo      agentRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.EmployeeRepo == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.AgentRepo == nil {
		return nil, fmt.Errorf("agent repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		employees: params.EmployeeRepo,
		agents:    params.AgentRepo,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be employee or agent")
	}

	actor, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.recordLogin(ctx, actor, now); err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		ActorID:    actor.ID,
		AuthUserID: actor.AuthUserID,
		Role:       actor.Role,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	actor.LastLoginAt = &now
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Actor:        *actor,
	}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		ActorID:    claims.ActorID,
		AuthUserID: claims.AuthUserID,
		Role:       claims.Role,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

// authenticate resolves the email against the actor table matching the
// requested role and verifies the password. Misses and inactive actors both
// collapse into the same unauthorized error so callers cannot probe accounts.
func (s *service) authenticate(ctx context.Context, req LoginRequest) (*ActorProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var (
		profile      ActorProfile
		passwordHash string
		isActive     bool
	)

	switch req.Role {
	case enums.CreatorTypeEmployee:
		employee, err := s.employees.FindByEmail(ctx, email)
		if err != nil {
			return nil, lookupError(err)
		}
		profile = employeeProfile(employee)
		passwordHash = employee.PasswordHash
		isActive = employee.IsActive
	case enums.CreatorTypeAgent:
		agent, err := s.agents.FindByEmail(ctx, email)
		if err != nil {
			return nil, lookupError(err)
		}
		profile = agentProfile(agent)
		passwordHash = agent.PasswordHash
		isActive = agent.IsActive
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be employee or agent")
	}

	valid, err := security.VerifyPassword(req.Password, passwordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !isActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return &profile, nil
}

func (s *service) recordLogin(ctx context.Context, actor *ActorProfile, at time.Time) error {
	var err error
	switch actor.Role {
	case enums.CreatorTypeEmployee:
		err = s.employees.UpdateLastLogin(ctx, actor.ID, at)
	case enums.CreatorTypeAgent:
		err = s.agents.UpdateLastLogin(ctx, actor.ID, at)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup actor")
}
