package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/errors"
	"console/internal/infra/persistence/model"
)

func TestUserRepository_Find(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.UserModel{Domain: "system", LoginName: "admin", NickName: "Admin", Status: "active"}).Error)
	require.NoError(t, db.Create(&model.UserModel{Domain: "intranet", LoginName: "admin", Status: "disabled"}).Error)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.FindByLoginName(ctx, "system", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.NickName)
	assert.True(t, user.IsActive())

	other, err := repo.FindByLoginName(ctx, "intranet", "admin")
	require.NoError(t, err)
	assert.NotEqual(t, user.ID, other.ID)
	assert.False(t, other.IsActive())

	byID, err := repo.FindByID(ctx, "system", user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.LoginName, byID.LoginName)

	_, err = repo.FindByID(ctx, "intranet", user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByLoginName(ctx, "system", "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	db := newTestDB(t)
	userM := &model.UserModel{Domain: "system", LoginName: "admin", Status: "active"}
	require.NoError(t, db.Create(userM).Error)

	repo := NewUserRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, repo.UpdateLastLogin(ctx, "system", userM.ID, "10.0.0.1", at))

	user, err := repo.FindByID(ctx, "system", userM.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", user.LastLoginIP)
	require.NotNil(t, user.LastLoginAt)
	assert.True(t, at.Equal(*user.LastLoginAt))

	err = repo.UpdateLastLogin(ctx, "system", 9999, "10.0.0.1", at)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_StorageError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(".*").WillReturnError(errors.New("connection reset"))

	_, err := NewUserRepository(db).FindByLoginName(context.Background(), "system", "admin")

	appErr, ok := errors.AsType[domainerrors.AppError](err)
	require.True(t, ok)
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())
	assert.NotErrorIs(t, err, repository.ErrUserNotFound)
}

func TestCredentialRepository_Replace(t *testing.T) {
	db := newTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	_, err := repo.FindByUser(ctx, "system", 1)
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)

	require.NoError(t, repo.Replace(ctx, &entity.Credential{Domain: "system", UserID: 1, PasswordHash: "hash-1"}))
	require.NoError(t, repo.Replace(ctx, &entity.Credential{Domain: "system", UserID: 1, PasswordHash: "hash-2"}))

	cred, err := repo.FindByUser(ctx, "system", 1)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", cred.PasswordHash)

	var count int64
	require.NoError(t, db.Model(&model.CredentialModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
