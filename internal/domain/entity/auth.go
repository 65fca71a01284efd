package entity

import "time"

// Credential is the stored password hash of exactly one user. It is replaced as a whole on password change.
type Credential struct {
	Domain       string
	UserID       int64
	PasswordHash string // bcrypt output, never the plaintext.
	UpdatedAt    time.Time
}

// Identity says who is calling. It is the only per-request representation of the caller.
type Identity struct {
	Domain    string
	UserID    int64
	LoginName string
}

// Claims is a verified token payload.
type Claims struct {
	Identity

	TokenID   string    // Random jti, unique per issued token.
	IssuedAt  time.Time // Set at issuance.
	ExpiresAt time.Time // Fixed at issuance, never extended by use.
}
