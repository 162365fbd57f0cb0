package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rkdoors/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.SystemRole
	// JTI doubles as the session access id. Generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID        `json:"user_id"`
	Email  string           `json:"email,omitempty"`
	Role   enums.SystemRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was minted for an administrator.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.SystemRoleAdmin
}
