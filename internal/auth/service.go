package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/freshmart/storefront/internal/storeapi"
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Backend is the subset of the REST client used for authentication.
type Backend interface {
	Register(ctx context.Context, payload storeapi.RegisterPayload) (storeapi.Created, error)
	Login(ctx context.Context, payload storeapi.LoginPayload) (storeapi.User, error)
}

// Service wraps authentication against the backend. Passwords are never
// hashed or stored here.
type Service struct {
	backend Backend
}

// NewService constructs a new Service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (storeapi.User, error) {
	user, err := s.backend.Login(ctx, storeapi.LoginPayload{Email: normalizeEmail(email), Password: password})
	if err != nil {
		if storeapi.StatusOf(err) == http.StatusUnauthorized {
			return storeapi.User{}, ErrInvalidCredentials
		}
		return storeapi.User{}, err
	}
	return user, nil
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, f RegisterForm) (storeapi.User, error) {
	email := normalizeEmail(f.Email)
	if _, err := s.backend.Register(ctx, storeapi.RegisterPayload{
		Email:     email,
		Password:  f.Password,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
	}); err != nil {
		return storeapi.User{}, err
	}
	return s.Authenticate(ctx, email, f.Password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName joins the user's names, falling back to the email.
func DisplayName(u storeapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
