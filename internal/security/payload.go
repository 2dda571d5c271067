package security

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Different types of error that returned from the VerifyToken
var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Payload contains the claims carried by a token. Identity is managed
// by an external provider, so UserID is the provider's subject string
// rather than a local account reference.
type Payload struct {
	ID          uuid.UUID
	UserID      string
	Permissions []string
	KYCLevel    int
	IssuedAt    time.Time
	ExpiredAt   time.Time
	Scope       string
}

// NewPayload creates a new token payload for a subject and duration
func NewPayload(userID string, permissions []string, kycLevel int, duration time.Duration, scope string) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		ID:          tokenID,
		UserID:      userID,
		Permissions: permissions,
		KYCLevel:    kycLevel,
		IssuedAt:    time.Now(),
		ExpiredAt:   time.Now().Add(duration),
		Scope:       scope,
	}

	return payload, nil
}

func (p *Payload) Valid() error {
	if time.Now().After(p.ExpiredAt) {
		return ErrExpiredToken
	}
	return nil
}

// HasPermission reports whether the payload carries the permission.
func (p *Payload) HasPermission(permission string) bool {
	for _, perm := range p.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}
