package usecase

import (
	"context"

	"console/internal/domain/entity"
)

// PermissionUsecase resolves permission strings through user→role→menu assignments.
type PermissionUsecase interface {
	// GetPermissions returns the cached set, resolving it on a miss. No roles means an empty set, not an error.
	GetPermissions(ctx context.Context, domain string, userID int64) (entity.PermissionSet, error)

	HasPermission(ctx context.Context, domain string, userID int64, permission string) (bool, error)

	// GetMenus returns the active menus reachable through the user's roles. It is not cached.
	GetMenus(ctx context.Context, domain string, userID int64) ([]*entity.Menu, error)

	// Invalidate drops the cached set, for use after role or menu assignments change.
	Invalidate(ctx context.Context, domain string, userID int64)
}
