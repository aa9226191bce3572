package domain

import (
	"context"
	"errors"
)

type SignupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the freshly issued bearer token alongside the
// account it belongs to. The raw token is never stored.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Service interface {
	Signup(context.Context, SignupRequest) (AuthResponse, error)
	Login(context.Context, LoginRequest) (AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (Identity, error)
	GetUser(ctx context.Context, identity Identity) (User, error)
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not_found")
)
