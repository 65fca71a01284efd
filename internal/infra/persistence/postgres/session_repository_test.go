package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/errors"
)

func newSession(hash string, userID int64, expiresAt time.Time) *entity.Session {
	return &entity.Session{
		TokenHash: hash,
		Domain:    "system",
		UserID:    userID,
		LoginName: "admin",
		Device:    "test-agent",
		IPAddress: "127.0.0.1",
		ExpiresAt: expiresAt,
	}
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	session := newSession("hash-a", 1, expiresAt)
	require.NoError(t, repo.Create(ctx, session))
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, entity.SessionStatusActive, session.Status)

	found, err := repo.FindByTokenHash(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
	assert.True(t, expiresAt.Equal(found.ExpiresAt))
	assert.True(t, found.IsValidAt(time.Now()))

	byID, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-a", byID.TokenHash)

	_, err = repo.FindByTokenHash(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_DuplicateTokenHash(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("dup", 1, time.Now().Add(time.Hour))))
	err := repo.Create(ctx, newSession("dup", 1, time.Now().Add(time.Hour)))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestSessionRepository_NoExpiry(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("forever", 1, time.Time{})))

	found, err := repo.FindByTokenHash(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found.ExpiresAt.IsZero())
	assert.True(t, found.IsValidAt(time.Now().Add(365*24*time.Hour)))
}

func TestSessionRepository_ListActiveByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newSession("live-1", 1, now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("live-2", 1, time.Time{})))
	require.NoError(t, repo.Create(ctx, newSession("expired", 1, now.Add(-time.Hour))))
	inactive := newSession("inactive", 1, now.Add(time.Hour))
	inactive.Status = entity.SessionStatusInactive
	require.NoError(t, repo.Create(ctx, inactive))
	require.NoError(t, repo.Create(ctx, newSession("other-user", 2, now.Add(time.Hour))))

	sessions, err := repo.ListActiveByUser(ctx, "system", 1, now)
	require.NoError(t, err)

	hashes := make([]string, 0, len(sessions))
	for _, s := range sessions {
		hashes = append(hashes, s.TokenHash)
	}
	assert.ElementsMatch(t, []string{"live-1", "live-2"}, hashes)
}

func TestSessionRepository_Deletes(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	first := newSession("a", 1, now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, newSession("b", 1, now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("c", 1, now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("d", 2, now.Add(time.Hour))))

	require.NoError(t, repo.DeleteByTokenHash(ctx, "b"))
	require.NoError(t, repo.DeleteByTokenHash(ctx, "b"))

	require.NoError(t, repo.DeleteByID(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, first.ID), repository.ErrSessionNotFound)

	n, err := repo.DeleteByUser(ctx, "system", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByTokenHash(ctx, "d")
	assert.NoError(t, err)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newSession("expired", 1, now.Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, newSession("live", 1, now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("forever", 1, time.Time{})))
	inactive := newSession("inactive", 1, now.Add(time.Hour))
	inactive.Status = entity.SessionStatusInactive
	require.NoError(t, repo.Create(ctx, inactive))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.FindByTokenHash(ctx, "live")
	assert.NoError(t, err)
	_, err = repo.FindByTokenHash(ctx, "forever")
	assert.NoError(t, err)
}

func TestSessionRepository_StorageErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))
	_, err := repo.FindByTokenHash(ctx, "hash")
	_, ok := errors.AsType[domainerrors.AppError](err)
	assert.True(t, ok)
	assert.NotErrorIs(t, err, repository.ErrSessionNotFound)

	mock.ExpectExec(".*").WillReturnError(errors.New("connection refused"))
	_, err = repo.DeleteByUser(ctx, "system", 1)
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
