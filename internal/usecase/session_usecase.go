package usecase

import (
	"context"

	"github.com/google/uuid"

	"console/internal/domain/entity"
)

// ClientInfo describes where a session was opened from.
type ClientInfo struct {
	Device    string
	IPAddress string
}

// SessionUsecase owns the durable session records and the in-process validity cache in front of them.
type SessionUsecase interface {
	// Create records the session durably, then marks it valid in the cache.
	Create(ctx context.Context, token string, claims *entity.Claims, client ClientInfo) error

	// IsValid answers from the cache when it can. Storage errors count as invalid.
	IsValid(ctx context.Context, token string) bool

	// Revoke is idempotent.
	Revoke(ctx context.Context, token string) error

	RevokeAll(ctx context.Context, domain string, userID int64) error

	ListActive(ctx context.Context, domain string, userID int64) ([]*entity.Session, error)

	RevokeByID(ctx context.Context, id uuid.UUID) error

	// CleanupExpired deletes expired and inactive records and returns how many were removed.
	CleanupExpired(ctx context.Context) (int64, error)
}
