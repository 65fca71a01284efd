package postgres

import (
	"context"

	"gorm.io/gorm"

	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/infra/persistence/model"
)

// permissionRepository reads the role and menu assignment tables.
type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository is the constructor for permissionRepository.
func NewPermissionRepository(db *gorm.DB) repository.PermissionRepository {
	return &permissionRepository{db: db}
}

func (repo *permissionRepository) FindRoleIDsByUser(ctx context.Context, domain string, userID int64) ([]int64, error) {
	var roleIDs []int64
	err := repo.db.WithContext(ctx).
		Model(&model.UserRoleModel{}).
		Joins("JOIN sys_roles ON sys_roles.id = sys_user_roles.role_id").
		Where("sys_user_roles.domain = ? AND sys_user_roles.user_id = ? AND sys_roles.status = ?",
			domain, userID, entity.StatusActive).
		Order("sys_user_roles.role_id").
		Pluck("sys_user_roles.role_id", &roleIDs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user roles")
	}

	return roleIDs, nil
}

func (repo *permissionRepository) FindMenuIDsByRoleIDs(ctx context.Context, roleIDs []int64) ([]int64, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var menuIDs []int64
	err := repo.db.WithContext(ctx).
		Model(&model.RoleMenuModel{}).
		Where("role_id IN ?", roleIDs).
		Distinct("menu_id").
		Order("menu_id").
		Pluck("menu_id", &menuIDs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find role menus")
	}

	return menuIDs, nil
}

func (repo *permissionRepository) FindActiveMenusByIDs(ctx context.Context, menuIDs []int64) ([]*entity.Menu, error) {
	if len(menuIDs) == 0 {
		return nil, nil
	}

	var menuModels []model.MenuModel
	err := repo.db.WithContext(ctx).
		Where("id IN ? AND status = ?", menuIDs, entity.StatusActive).
		Order("parent_id, sort, id").
		Find(&menuModels).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find menus")
	}

	menus := make([]*entity.Menu, 0, len(menuModels))
	for i := range menuModels {
		menus = append(menus, toMenuDomain(&menuModels[i]))
	}

	return menus, nil
}

func toMenuDomain(data *model.MenuModel) *entity.Menu {
	menu := &entity.Menu{
		ID:       data.ID,
		ParentID: data.ParentID,
		Name:     data.Name,
		Path:     data.Path,
		Type:     entity.MenuType(data.MenuType),
		Sort:     data.Sort,
		Status:   data.Status,
	}
	if data.Perms != nil {
		menu.Permission = *data.Perms
	}

	return menu
}
