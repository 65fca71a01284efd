package repository

import (
	"context"

	"console/internal/domain/entity"
)

// PermissionRepository reads the user→role→menu assignment graph.
type PermissionRepository interface {
	// FindRoleIDsByUser returns the ids of active roles assigned to a user.
	FindRoleIDsByUser(ctx context.Context, domain string, userID int64) ([]int64, error)

	// FindMenuIDsByRoleIDs returns the distinct menu ids assigned to any of the roles.
	FindMenuIDsByRoleIDs(ctx context.Context, roleIDs []int64) ([]int64, error)

	// FindActiveMenusByIDs returns active menus among ids, ordered by parent and sort.
	FindActiveMenusByIDs(ctx context.Context, menuIDs []int64) ([]*entity.Menu, error)
}
