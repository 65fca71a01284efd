package service

import (
	"net/http"
	"time"

	"console/internal/domain/entity"
)

// TokenErrorKind classifies why a token was rejected. It is for logs only, callers of Verify see nil.
type TokenErrorKind string

const (
	TokenErrorMalformed TokenErrorKind = "malformed"
	TokenErrorSignature TokenErrorKind = "signature"
	TokenErrorExpired   TokenErrorKind = "expired"
	TokenErrorClaims    TokenErrorKind = "claims"
)

// TokenError carries the rejection reason of Parse.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Kind)
	}

	return "token " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// TokenService issues and verifies signed bearer tokens. Verification is stateless.
type TokenService interface {
	// Issue signs a token for identity that expires after TTL.
	Issue(identity entity.Identity) (string, error)

	// Verify returns the claims of a valid token and nil for any failure.
	Verify(token string) *entity.Claims

	// Parse is Verify with the failure reason as a *TokenError.
	Parse(token string) (*entity.Claims, error)

	// ExtractFromRequest reads the auth cookie first, then a Bearer Authorization header.
	// It returns "" when neither is present.
	ExtractFromRequest(r *http.Request) string

	// TTL is the fixed token lifetime, also used for the cookie max-age and session expiry.
	TTL() time.Duration

	// CookieName is the name of the auth cookie.
	CookieName() string
}
