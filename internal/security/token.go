package security

import "time"

const (
	TokenScopeAccess  = "access"
	TokenScopeRefresh = "refresh"
)

// Maker makes a new token
type Maker interface {

	// CreateToken creates a new token for a subject with the given claims
	CreateToken(userID string, permissions []string, kycLevel int, duration time.Duration, scope string) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not
	VerifyToken(token string) (*Payload, error)
}
