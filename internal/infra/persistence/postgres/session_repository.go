package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/errors"
	"console/internal/infra/persistence/model"
)

// sessionRepository implements the domain.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = entity.SessionStatusActive
	}

	sessionM := fromSessionDomain(session)
	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrInvalidToken.WrapMessage("session for token already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required session information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.CreatedAt = sessionM.CreatedAt

	return nil
}

func (repo *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	return repo.findOne(ctx, "token_hash = ?", tokenHash)
}

func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *sessionRepository) findOne(ctx context.Context, query string, arg any) (*entity.Session, error) {
	var sessionM model.SessionModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&sessionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find session")
	}

	return toSessionDomain(&sessionM), nil
}

func (repo *sessionRepository) ListActiveByUser(ctx context.Context, domain string, userID int64, now time.Time) ([]*entity.Session, error) {
	var sessionModels []model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("domain = ? AND user_id = ? AND status = ?", domain, userID, string(entity.SessionStatusActive)).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Order("created_at DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list sessions")
	}

	sessions := make([]*entity.Session, 0, len(sessionModels))
	for i := range sessionModels {
		sessions = append(sessions, toSessionDomain(&sessionModels[i]))
	}

	return sessions, nil
}

func (repo *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.SessionModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete session")
	}

	return nil
}

func (repo *sessionRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete session")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

func (repo *sessionRepository) DeleteByUser(ctx context.Context, domain string, userID int64) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("domain = ? AND user_id = ?", domain, userID).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user sessions")
	}

	return result.RowsAffected, nil
}

func (repo *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("(expires_at IS NOT NULL AND expires_at <= ?) OR status <> ?", now.UTC(), string(entity.SessionStatusActive)).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete expired sessions")
	}

	return result.RowsAffected, nil
}

// Mapper functions

func fromSessionDomain(data *entity.Session) *model.SessionModel {
	sessionM := &model.SessionModel{
		ID:        data.ID,
		TokenHash: data.TokenHash,
		Domain:    data.Domain,
		UserID:    data.UserID,
		LoginName: data.LoginName,
		Device:    data.Device,
		IPAddress: data.IPAddress,
		Status:    string(data.Status),
		CreatedAt: data.CreatedAt,
	}
	if !data.ExpiresAt.IsZero() {
		expiresAt := data.ExpiresAt.UTC()
		sessionM.ExpiresAt = &expiresAt
	}

	return sessionM
}

func toSessionDomain(data *model.SessionModel) *entity.Session {
	session := &entity.Session{
		ID:        data.ID,
		TokenHash: data.TokenHash,
		Domain:    data.Domain,
		UserID:    data.UserID,
		LoginName: data.LoginName,
		Device:    data.Device,
		IPAddress: data.IPAddress,
		Status:    entity.SessionStatus(data.Status),
		CreatedAt: data.CreatedAt,
	}
	if data.ExpiresAt != nil {
		session.ExpiresAt = *data.ExpiresAt
	}

	return session
}
