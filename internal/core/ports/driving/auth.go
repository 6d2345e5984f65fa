package driving

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// AuthService handles user registration and authentication
type AuthService interface {
	// Register creates an account and signs it in
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error)

	// Authenticate validates credentials and creates a session
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken validates a JWT token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// Logout invalidates a session
	Logout(ctx context.Context, token string) error
}
