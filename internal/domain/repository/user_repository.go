// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"console/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads console accounts and records login bookkeeping.
type UserRepository interface {
	// FindByLoginName retrieves a user by login name within a domain.
	FindByLoginName(ctx context.Context, domain, loginName string) (*entity.User, error)

	// FindByID retrieves a user by domain and id.
	FindByID(ctx context.Context, domain string, id int64) (*entity.User, error)

	// UpdateLastLogin stamps the last successful login.
	UpdateLastLogin(ctx context.Context, domain string, id int64, ip string, at time.Time) error
}
