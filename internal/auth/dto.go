package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint. Role
// selects which actor table the email is resolved against.
type LoginRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	Password string            `json:"password" validate:"required"`
	Role     enums.CreatorType `json:"role" validate:"required"`
}

// ActorProfile is the public view of the authenticated employee or agent.
type ActorProfile struct {
	ID            uuid.UUID         `json:"id"`
	Role          enums.CreatorType `json:"role"`
	AuthUserID    string            `json:"auth_user_id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	BranchCode    *string           `json:"branch_code,omitempty"`
	LicenseNumber *string           `json:"license_number,omitempty"`
	LastLoginAt   *time.Time        `json:"last_login_at,omitempty"`
}

// LoginResponse contains the token pair and actor produced by a successful login.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Actor        ActorProfile `json:"actor"`
}

// RefreshRequest carries the expired access token plus the refresh secret.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func employeeProfile(e *models.Employee) ActorProfile {
	return ActorProfile{
		ID:          e.ID,
		Role:        enums.CreatorTypeEmployee,
		AuthUserID:  e.AuthUserID,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		BranchCode:  e.BranchCode,
		LastLoginAt: e.LastLoginAt,
	}
}

func agentProfile(a *models.Agent) ActorProfile {
	return ActorProfile{
		ID:            a.ID,
		Role:          enums.CreatorTypeAgent,
		AuthUserID:    a.AuthUserID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		LicenseNumber: a.LicenseNumber,
		LastLoginAt:   a.LastLoginAt,
	}
}
