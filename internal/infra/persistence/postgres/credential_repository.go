package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/errors"
	"console/internal/infra/persistence/model"
)

// credentialRepository implements the domain.CredentialRepository interface.
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository is the constructor for credentialRepository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

func (repo *credentialRepository) FindByUser(ctx context.Context, domain string, userID int64) (*entity.Credential, error) {
	var credM model.CredentialModel
	err := repo.db.WithContext(ctx).
		Where("domain = ? AND user_id = ?", domain, userID).
		First(&credM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find credential")
	}

	return &entity.Credential{
		Domain:       credM.Domain,
		UserID:       credM.UserID,
		PasswordHash: credM.PasswordHash,
		UpdatedAt:    credM.UpdatedAt,
	}, nil
}

// Replace upserts the hash so the old one is gone in the same statement.
func (repo *credentialRepository) Replace(ctx context.Context, credential *entity.Credential) error {
	if credential.UpdatedAt.IsZero() {
		credential.UpdatedAt = time.Now()
	}

	credM := &model.CredentialModel{
		Domain:       credential.Domain,
		UserID:       credential.UserID,
		PasswordHash: credential.PasswordHash,
		UpdatedAt:    credential.UpdatedAt.UTC(),
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "domain"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).
		Create(credM).Error
	if err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required credential information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to replace credential")
	}

	return nil
}
