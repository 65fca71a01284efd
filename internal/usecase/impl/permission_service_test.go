package impl

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console/internal/domain/entity"
	"console/internal/errors"
	"console/internal/infra/metrics"
)

func newTestPermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{
		userRoles: map[int64][]int64{
			1: {10, 11},
			2: {12},
		},
		roleMenus: map[int64][]int64{
			10: {100, 101},
			11: {101, 102, 103},
			12: {104},
		},
		menus: map[int64]*entity.Menu{
			100: {ID: 100, Name: "Users", Permission: "system:user", Status: entity.StatusActive},
			101: {ID: 101, Name: "Sessions", Permission: "system:session", Status: entity.StatusActive},
			102: {ID: 102, Name: "Directory", Status: entity.StatusActive},
			103: {ID: 103, Name: "Roles", Permission: "system:role", Status: entity.StatusDisabled},
		},
	}
}

func createTestPermissionService(t *testing.T, repo *fakePermissionRepo) (*permissionService, *metrics.Metrics) {
	t.Helper()

	m := metrics.New()
	srv := NewPermissionService(PermissionServiceParams{
		PermissionRepo: repo,
		Config:         newTestConfig(),
		Logger:         newDiscardLogger(),
		Metrics:        m,
	})

	return srv.(*permissionService), m
}

func TestPermissionService_GetPermissions(t *testing.T) {
	repo := newTestPermissionRepo()
	srv, _ := createTestPermissionService(t, repo)
	ctx := context.Background()

	perms, err := srv.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"system:session", "system:user"}, perms.Slice())
}

func TestPermissionService_Deterministic(t *testing.T) {
	repo := newTestPermissionRepo()
	first, _ := createTestPermissionService(t, repo)
	second, _ := createTestPermissionService(t, repo)
	ctx := context.Background()

	a, err := first.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)
	b, err := second.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
}

func TestPermissionService_EmptyWithoutRolesOrMenus(t *testing.T) {
	repo := newTestPermissionRepo()
	srv, _ := createTestPermissionService(t, repo)
	ctx := context.Background()

	perms, err := srv.GetPermissions(ctx, "system", 99)
	require.NoError(t, err)
	assert.Equal(t, 0, perms.Len())

	perms, err = srv.GetPermissions(ctx, "system", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, perms.Len())
}

func TestPermissionService_CachesAndInvalidates(t *testing.T) {
	repo := newTestPermissionRepo()
	srv, m := createTestPermissionService(t, repo)
	ctx := context.Background()

	_, err := srv.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)
	_, err = srv.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), repo.roleCalls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("permission")))

	repo.roleMenus[10] = []int64{100}
	repo.roleMenus[11] = nil
	srv.Invalidate(ctx, "system", 1)

	perms, err := srv.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.roleCalls.Load())
	assert.Equal(t, []string{"system:user"}, perms.Slice())
}

func TestPermissionService_DomainsAreSeparate(t *testing.T) {
	repo := newTestPermissionRepo()
	srv, _ := createTestPermissionService(t, repo)
	ctx := context.Background()

	_, err := srv.GetPermissions(ctx, "system", 1)
	require.NoError(t, err)
	_, err = srv.GetPermissions(ctx, "intranet", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), repo.roleCalls.Load())
}

func TestPermissionService_ErrorsAreNotCached(t *testing.T) {
	repo := newTestPermissionRepo()
	repo.roleErr = errors.New("db down")
	srv, _ := createTestPermissionService(t, repo)
	ctx := context.Background()

	_, err := srv.GetPermissions(ctx, "system", 1)
	require.Error(t, err)

	allowed, err := srv.HasPermission(ctx, "system", 1, "system:user")
	require.Error(t, err)
	assert.False(t, allowed)

	repo.roleErr = nil
	allowed, err = srv.HasPermission(ctx, "system", 1, "system:user")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestPermissionService_HasPermission(t *testing.T) {
	repo := newTestPermissionRepo()
	srv, _ := createTestPermissionService(t, repo)
	ctx := context.Background()

	tests := []struct {
		permission string
		want       bool
	}{
		{permission: "system:user", want: true},
		{permission: "system:session", want: true},
		{permission: "system:role", want: false},
		{permission: "", want: true},
	}

	for _, tt := range tests {
		got, err := srv.HasPermission(ctx, "system", 1, tt.permission)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.permission)
	}
}

func TestPermissionService_GetMenus(t *testing.T) {
	repo := newTestPermissionRepo()
	srv, _ := createTestPermissionService(t, repo)

	menus, err := srv.GetMenus(context.Background(), "system", 1)
	require.NoError(t, err)

	names := make([]string, 0, len(menus))
	for _, menu := range menus {
		names = append(names, menu.Name)
	}
	assert.ElementsMatch(t, []string{"Users", "Sessions", "Directory"}, names)
}
