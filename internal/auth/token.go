package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims are the claims carried by a session token: the subject user id
// and the validity window.
type TokenClaims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService mints and verifies signed session tokens. Implementations:
// PasetoService (v4.local) and JWTService (HS256), selected by configuration.
// Verification checks signature and expiry only; revocation-list membership
// is the middleware's job.
type TokenService interface {
	CreateToken(userID string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// hashToken returns the hex SHA-256 of a token. Only hashes are written to
// the session store so a dump of it cannot be replayed as bearer tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
