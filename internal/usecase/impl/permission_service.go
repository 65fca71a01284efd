package impl

import (
	"context"
	"log/slog"
	"strconv"

	"go.uber.org/fx"

	"console/config"
	deliverycontext "console/internal/delivery/context"
	"console/internal/domain/entity"
	"console/internal/domain/repository"
	"console/internal/errors"
	"console/internal/infra/cache"
	"console/internal/infra/metrics"
	"console/internal/usecase"
)

// PermissionServiceParams defines the dependencies of the permission service.
type PermissionServiceParams struct {
	fx.In

	PermissionRepo repository.PermissionRepository
	Config         *config.Config
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

type permissionService struct {
	permissionRepo repository.PermissionRepository
	cache          *cache.Expiring[string, entity.PermissionSet]
	logger         *slog.Logger
}

// NewPermissionService is the constructor for permissionService.
func NewPermissionService(params PermissionServiceParams) usecase.PermissionUsecase {
	auth := params.Config.Auth

	return &permissionService{
		permissionRepo: params.PermissionRepo,
		cache: cache.NewExpiring[string, entity.PermissionSet](auth.PermissionCacheSize, auth.PermissionCacheTTL,
			cache.WithRecorder("permission", params.Metrics)),
		logger: params.Logger,
	}
}

func (srv *permissionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetPermissions resolves user -> roles -> menus -> permission strings. Lookup errors are returned and never cached.
func (srv *permissionService) GetPermissions(ctx context.Context, domain string, userID int64) (entity.PermissionSet, error) {
	key := permissionCacheKey(domain, userID)
	if perms, ok := srv.cache.Get(key); ok {
		return perms, nil
	}

	menus, err := srv.resolveMenus(ctx, domain, userID)
	if err != nil {
		return entity.PermissionSet{}, err
	}

	values := make([]string, 0, len(menus))
	for _, menu := range menus {
		values = append(values, menu.Permission)
	}

	perms := entity.NewPermissionSet(values...)
	srv.cache.Set(key, perms)

	srv.log(ctx).Debug("Permissions resolved",
		slog.String("user_domain", domain),
		slog.Int64("user_id", userID),
		slog.Int("count", perms.Len()),
	)

	return perms, nil
}

func (srv *permissionService) HasPermission(ctx context.Context, domain string, userID int64, permission string) (bool, error) {
	if permission == "" {
		return true, nil
	}

	perms, err := srv.GetPermissions(ctx, domain, userID)
	if err != nil {
		return false, err
	}

	return perms.Has(permission), nil
}

// GetMenus is not cached. It runs on login and user-info requests only.
func (srv *permissionService) GetMenus(ctx context.Context, domain string, userID int64) ([]*entity.Menu, error) {
	return srv.resolveMenus(ctx, domain, userID)
}

func (srv *permissionService) Invalidate(ctx context.Context, domain string, userID int64) {
	if srv.cache.Delete(permissionCacheKey(domain, userID)) {
		srv.log(ctx).Debug("Permission cache entry invalidated",
			slog.String("user_domain", domain),
			slog.Int64("user_id", userID),
		)
	}
}

func (srv *permissionService) resolveMenus(ctx context.Context, domain string, userID int64) ([]*entity.Menu, error) {
	roleIDs, err := srv.permissionRepo.FindRoleIDsByUser(ctx, domain, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user roles")
	}
	if len(roleIDs) == 0 {
		return []*entity.Menu{}, nil
	}

	menuIDs, err := srv.permissionRepo.FindMenuIDsByRoleIDs(ctx, roleIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load role menus")
	}
	if len(menuIDs) == 0 {
		return []*entity.Menu{}, nil
	}

	menus, err := srv.permissionRepo.FindActiveMenusByIDs(ctx, menuIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load menus")
	}

	return menus, nil
}

func permissionCacheKey(domain string, userID int64) string {
	return domain + "\x00" + strconv.FormatInt(userID, 10)
}
