package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"console/config"
	"console/internal/domain/entity"
	"console/internal/domain/service"
	"console/internal/errors"
)

const bearerPrefix = "Bearer "

// tokenClaims is the JWT payload. The user id travels as the subject.
type tokenClaims struct {
	Domain    string `json:"domain"`
	LoginName string `json:"loginName"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	now        func() time.Time
}

// NewJWTService builds the token service. A missing secret is a startup error.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || strings.TrimSpace(cfg.SecretKey.Token) == "" {
		return nil, config.ErrMissingSigningSecret
	}

	ttl := config.DefaultTokenTTL
	cookieName := config.DefaultCookieName
	if cfg.Auth != nil {
		if cfg.Auth.TokenTTL > 0 {
			ttl = cfg.Auth.TokenTTL
		}
		if cfg.Auth.CookieName != "" {
			cookieName = cfg.Auth.CookieName
		}
	}

	return &jwtService{
		secret:     []byte(cfg.SecretKey.Token),
		ttl:        ttl,
		cookieName: cookieName,
		now:        time.Now,
	}, nil
}

func (s *jwtService) Issue(identity entity.Identity) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Domain:    identity.Domain,
		LoginName: identity.LoginName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

func (s *jwtService) Verify(token string) *entity.Claims {
	claims, err := s.Parse(token)
	if err != nil {
		return nil
	}

	return claims
}

func (s *jwtService) Parse(token string) (*entity.Claims, error) {
	if token == "" {
		return nil, &service.TokenError{Kind: service.TokenErrorMalformed}
	}

	parsed := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &service.TokenError{Kind: classifyTokenError(err), Err: err}
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || parsed.Domain == "" || parsed.LoginName == "" {
		return nil, &service.TokenError{Kind: service.TokenErrorClaims, Err: err}
	}

	claims := &entity.Claims{
		Identity: entity.Identity{
			Domain:    parsed.Domain,
			UserID:    userID,
			LoginName: parsed.LoginName,
		},
		TokenID:   parsed.ID,
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}

	return claims, nil
}

func (s *jwtService) ExtractFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}

	if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}

	return ""
}

func (s *jwtService) TTL() time.Duration {
	return s.ttl
}

func (s *jwtService) CookieName() string {
	return s.cookieName
}

func classifyTokenError(err error) service.TokenErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return service.TokenErrorExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return service.TokenErrorSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return service.TokenErrorMalformed
	default:
		return service.TokenErrorClaims
	}
}
