package auth

import "time"

//go:generate mockgen -destination=mocks/mock_auth.go -package=mocks micasa/pkg/auth TokenManager,RefreshTokenGenerator,PasswordHasher

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	// GenerateToken creates a signed access token for the given identity.
	GenerateToken(uid, email, role string) (string, error)
	// ValidateToken parses and validates a token, returning the claims if valid.
	ValidateToken(tokenString string) (*Claims, error)
	// Expiry is the lifetime of issued tokens.
	Expiry() time.Duration
}

// Ensure JWTManager implements TokenManager interface
var _ TokenManager = (*JWTManager)(nil)
