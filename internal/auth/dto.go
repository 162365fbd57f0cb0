package auth

import (
	"github.com/rkdoors/storefront-backend/internal/users"
	"github.com/rkdoors/storefront-backend/pkg/enums"
)

// Credentials are the email and password sent to the sign-in endpoints.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest creates a customer account.
type SignUpRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=120"`
}

// RefreshRequest trades a refresh token for a new access token. The access
// token may already be expired.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Session is what a successful sign-in returns.
type Session struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// Identity is the signed-in user as seen by the storefront.
type Identity struct {
	UID   string           `json:"uid"`
	Email string           `json:"email"`
	Role  enums.SystemRole `json:"role"`
}
