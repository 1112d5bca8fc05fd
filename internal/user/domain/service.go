package domain

import (
	"context"
	"errors"
)

// Service is only wired when the process runs against the multi-tenant
// store; the single-tenant store has no users table.
type Service interface {
	Login(ctx context.Context, username, password string) (*User, error)
	Create(ctx context.Context, req CreateRequest) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ChangeRole(ctx context.Context, req ChangeRoleRequest) (*User, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ActorID  string `json:"actor_id"`
}

type ChangeRoleRequest struct {
	ID      string `json:"-"`
	Role    string `json:"role"`
	ActorID string `json:"actor_id"`
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrNotFound           = errors.New("not_found")
	ErrPermissionDenied   = errors.New("permission_denied")
)
