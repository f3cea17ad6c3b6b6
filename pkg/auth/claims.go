package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID    uuid.UUID
	AuthUserID string
	Role       enums.CreatorType
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	ActorID    uuid.UUID         `json:"actor_id"`
	AuthUserID string            `json:"auth_user_id,omitempty"`
	Role       enums.CreatorType `json:"role"`
	jwt.RegisteredClaims
}
