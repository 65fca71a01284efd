package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus marks whether a durable session may still authenticate.
type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusInactive SessionStatus = "inactive"
)

// Session is the durable record of one issued token. It is the source of truth for revocation.
type Session struct {
	ID        uuid.UUID     // Record id, used by the online-session monitor.
	TokenHash string        // SHA-256 hex digest of the raw token.
	Domain    string        // Owner's user domain.
	UserID    int64         // Owner's user id.
	LoginName string        // Owner's login name at issuance.
	Device    string        // Client description, usually the User-Agent.
	IPAddress string        // Client address at login.
	Status    SessionStatus // Active or inactive.
	ExpiresAt time.Time     // Zero means no expiry.
	CreatedAt time.Time
}

// IsValidAt reports whether the session is active and not expired at now.
func (s *Session) IsValidAt(now time.Time) bool {
	if s.Status != SessionStatusActive {
		return false
	}

	return s.ExpiresAt.IsZero() || s.ExpiresAt.After(now)
}

// Owner returns the identity that owns the session.
func (s *Session) Owner() Identity {
	return Identity{Domain: s.Domain, UserID: s.UserID, LoginName: s.LoginName}
}
