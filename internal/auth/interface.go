package auth

import "dealdesk/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only depends on this, so JWKS and shared-secret
// verification are interchangeable.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or badly signed.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
