package repository

import (
	"context"
	"errors"
	"time"

	"console/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no durable session matches.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists one record per issued token, keyed by the token's hash.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// ListActiveByUser returns sessions that are active and unexpired at now, newest first.
	ListActiveByUser(ctx context.Context, domain string, userID int64, now time.Time) ([]*entity.Session, error)

	// DeleteByTokenHash is idempotent: a missing record is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteByUser removes every session of an identity and returns how many were removed.
	DeleteByUser(ctx context.Context, domain string, userID int64) (int64, error)

	// DeleteExpired removes sessions expired before now or marked inactive.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
