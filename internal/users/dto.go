package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rkdoors/storefront-backend/pkg/db/models"
	"github.com/rkdoors/storefront-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"display_name,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	SystemRole  *string    `json:"system_role,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	DisplayName  *string
	SystemRole   *enums.SystemRole
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		SystemRole:  u.SystemRole,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	var role *string
	if c.SystemRole != nil {
		value := string(*c.SystemRole)
		role = &value
	}
	return &models.User{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		DisplayName:  c.DisplayName,
		IsActive:     isActive,
		SystemRole:   role,
	}
}

// NormalizeEmail lowercases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleOf returns the parsed system role, defaulting to customer.
func RoleOf(u *models.User) enums.SystemRole {
	if u == nil || u.SystemRole == nil {
		return enums.SystemRoleCustomer
	}
	role, err := enums.ParseSystemRole(*u.SystemRole)
	if err != nil {
		return enums.SystemRoleCustomer
	}
	return role
}
