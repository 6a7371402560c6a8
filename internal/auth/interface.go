package auth

import "folio/internal/domain/models"

// JWTVerifier defines the interface for bearer token verification.
// The middleware only depends on this, so tests can supply a fake.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or badly signed.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
