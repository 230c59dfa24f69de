package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*Response, error)
	// GetUserByID returns nil without error when no such user exists.
	GetUserByID(ctx context.Context, userID string) (*Response, error)
	ListUsers(ctx context.Context) ([]Response, error)
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

type Response struct {
	ID          snowflake.ID `json:"id"`
	TenantID    snowflake.ID `json:"tenant_id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name,omitempty"`
	LastName    string       `json:"last_name,omitempty"`
	DisplayName string       `json:"display_name,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Name mirrors User.Name for callers holding only the response.
func (r Response) Name() string {
	return User{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DisplayName: r.DisplayName,
	}.Name()
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrEmailTaken    = errors.New("email_taken")
)
