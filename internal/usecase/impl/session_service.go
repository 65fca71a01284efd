package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"console/config"
	deliverycontext "console/internal/delivery/context"
	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/errors"
	"console/internal/infra/cache"
	"console/internal/infra/metrics"
	"console/internal/usecase"
)

const maxDeviceLength = 255

// SessionServiceParams defines the dependencies of the session service.
type SessionServiceParams struct {
	fx.In

	SessionRepo repository.SessionRepository
	Config      *config.Config
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// sessionService fronts the session table with a cache of positive validity decisions keyed by token hash.
type sessionService struct {
	sessionRepo repository.SessionRepository
	cache       *cache.Expiring[string, bool]
	tokenTTL    time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewSessionService is the constructor for sessionService. Each instance owns its own cache.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	auth := params.Config.Auth

	return &sessionService{
		sessionRepo: params.SessionRepo,
		cache: cache.NewExpiring[string, bool](auth.SessionCacheSize, auth.SessionCacheTTL,
			cache.WithRecorder("session", params.Metrics)),
		tokenTTL: auth.TokenTTL,
		logger:   params.Logger,
		now:      time.Now,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create stores the record first. The cache is only seeded once the record exists.
func (srv *sessionService) Create(ctx context.Context, token string, claims *entity.Claims, client usecase.ClientInfo) error {
	if token == "" || claims == nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, "token and claims are required")
	}

	expiresAt := claims.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = srv.now().Add(srv.tokenTTL)
	}

	tokenHash := hashToken(token)
	session := &entity.Session{
		TokenHash: tokenHash,
		Domain:    claims.Domain,
		UserID:    claims.UserID,
		LoginName: claims.LoginName,
		Device:    truncate(client.Device, maxDeviceLength),
		IPAddress: client.IPAddress,
		Status:    entity.SessionStatusActive,
		ExpiresAt: expiresAt,
	}

	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		return errors.Wrap(err, "failed to create session")
	}

	srv.cache.Set(tokenHash, true)

	return nil
}

// IsValid fails closed: a missing record or a storage error both mean invalid. Negative results are not cached.
func (srv *sessionService) IsValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	tokenHash := hashToken(token)
	if valid, ok := srv.cache.Get(tokenHash); ok {
		return valid
	}

	session, err := srv.sessionRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			srv.log(ctx).Error("Failed to load session", slog.Any("error", err))
		}

		return false
	}

	if !session.IsValidAt(srv.now()) {
		return false
	}

	srv.cache.Set(tokenHash, true)

	return true
}

func (srv *sessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := hashToken(token)
	srv.cache.Delete(tokenHash)

	if err := srv.sessionRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return errors.Wrap(err, "failed to revoke session")
	}

	return nil
}

// RevokeAll deletes every record of the identity and evicts the cache entries of its sessions.
// If the sessions cannot be listed the whole cache is purged instead.
func (srv *sessionService) RevokeAll(ctx context.Context, domain string, userID int64) error {
	sessions, listErr := srv.sessionRepo.ListActiveByUser(ctx, domain, userID, srv.now())
	if listErr != nil {
		srv.log(ctx).Warn("Failed to list sessions before revoking, purging session cache", slog.Any("error", listErr))
	}

	removed, err := srv.sessionRepo.DeleteByUser(ctx, domain, userID)
	if err != nil {
		return errors.Wrap(err, "failed to revoke user sessions")
	}

	if listErr != nil {
		srv.cache.Purge()
	} else {
		for _, session := range sessions {
			srv.cache.Delete(session.TokenHash)
		}
	}

	srv.log(ctx).Info("Revoked all sessions",
		slog.String("user_domain", domain),
		slog.Int64("user_id", userID),
		slog.Int64("removed", removed),
	)

	return nil
}

func (srv *sessionService) ListActive(ctx context.Context, domain string, userID int64) ([]*entity.Session, error) {
	sessions, err := srv.sessionRepo.ListActiveByUser(ctx, domain, userID, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active sessions")
	}

	return sessions, nil
}

func (srv *sessionService) RevokeByID(ctx context.Context, id uuid.UUID) error {
	session, err := srv.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return errors.Wrap(domainerrors.ErrSessionNotFound, id.String())
		}

		return errors.Wrap(err, "failed to find session")
	}

	if err := srv.sessionRepo.DeleteByID(ctx, id); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return errors.Wrap(err, "failed to revoke session")
	}

	srv.cache.Delete(session.TokenHash)

	srv.log(ctx).Info("Session revoked",
		slog.String("session_id", id.String()),
		slog.String("user_domain", session.Domain),
		slog.Int64("user_id", session.UserID),
	)

	return nil
}

func (srv *sessionService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := srv.sessionRepo.DeleteExpired(ctx, srv.now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to clean up expired sessions")
	}

	return removed, nil
}

// hashToken is the storage and cache key of a raw token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
