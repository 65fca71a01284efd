package repository

import (
	"context"
	"errors"

	"console/internal/domain/entity"
)

// ErrCredentialNotFound is returned when a user has no stored password hash.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository stores password hashes.
type CredentialRepository interface {
	FindByUser(ctx context.Context, domain string, userID int64) (*entity.Credential, error)

	// Replace overwrites the stored hash, creating the row if it does not exist.
	Replace(ctx context.Context, credential *entity.Credential) error
}
