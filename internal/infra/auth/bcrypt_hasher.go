// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"console/config"
	"console/internal/domain/service"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 20
	passwordSpecials  = "@$!%*?&"
)

// Password policy violations, reported together by ValidateStrength.
const (
	StrengthErrLength    = "password must be between 8 and 20 characters"
	StrengthErrLowercase = "password must contain a lowercase letter"
	StrengthErrUppercase = "password must contain an uppercase letter"
	StrengthErrDigit     = "password must contain a digit"
	StrengthErrSpecial   = "password must contain one of @$!%*?&"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := config.DefaultBcryptCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return newBcryptHasher(cost)
}

func newBcryptHasher(cost int) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// ValidateStrength returns every violated rule, not only the first.
func (h *bcryptHasher) ValidateStrength(password string) service.StrengthResult {
	var (
		hasLower, hasUpper, hasDigit, hasSpecial bool
		violations                               []string
	)

	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}

	if n := utf8.RuneCountInString(password); n < minPasswordLength || n > maxPasswordLength {
		violations = append(violations, StrengthErrLength)
	}
	if !hasLower {
		violations = append(violations, StrengthErrLowercase)
	}
	if !hasUpper {
		violations = append(violations, StrengthErrUppercase)
	}
	if !hasDigit {
		violations = append(violations, StrengthErrDigit)
	}
	if !hasSpecial {
		violations = append(violations, StrengthErrSpecial)
	}

	return service.StrengthResult{
		Valid:  len(violations) == 0,
		Errors: violations,
	}
}
