package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"console/config"
	"console/internal/domain/entity"
	"console/internal/domain/repository"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		SecretKey: config.SecretKey{Token: "test-signing-secret"},
		Auth: &config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
		},
	}
	cfg.ApplyDefaults()

	return cfg
}

// fakeSessionRepo is an in-memory session table shared between service instances.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session // keyed by token hash

	createErr error
	findErr   error
	listErr   error
	findCalls atomic.Int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = time.Now()
	stored := *session
	r.sessions[session.TokenHash] = &stored

	return nil
}

func (r *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	r.findCalls.Add(1)
	if r.findErr != nil {
		return nil, r.findErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	found := *session

	return &found, nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.ID == id {
			found := *session

			return &found, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (r *fakeSessionRepo) ListActiveByUser(_ context.Context, domain string, userID int64, now time.Time) ([]*entity.Session, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Session
	for _, session := range r.sessions {
		if session.Domain == domain && session.UserID == userID && session.IsValidAt(now) {
			found := *session
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	return result, nil
}

func (r *fakeSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, tokenHash)

	return nil
}

func (r *fakeSessionRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, hash)

			return nil
		}
	}

	return repository.ErrSessionNotFound
}

func (r *fakeSessionRepo) DeleteByUser(_ context.Context, domain string, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for hash, session := range r.sessions {
		if session.Domain == domain && session.UserID == userID {
			delete(r.sessions, hash)
			removed++
		}
	}

	return removed, nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for hash, session := range r.sessions {
		if !session.IsValidAt(now) {
			delete(r.sessions, hash)
			removed++
		}
	}

	return removed, nil
}

func (r *fakeSessionRepo) setStatus(tokenHash string, status entity.SessionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[tokenHash]; ok {
		session.Status = status
	}
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// fakePermissionRepo resolves a static user -> role -> menu graph and counts lookups.
type fakePermissionRepo struct {
	userRoles map[int64][]int64
	roleMenus map[int64][]int64
	menus     map[int64]*entity.Menu

	roleErr   error
	roleCalls atomic.Int64
}

func (r *fakePermissionRepo) FindRoleIDsByUser(_ context.Context, _ string, userID int64) ([]int64, error) {
	r.roleCalls.Add(1)
	if r.roleErr != nil {
		return nil, r.roleErr
	}

	return r.userRoles[userID], nil
}

func (r *fakePermissionRepo) FindMenuIDsByRoleIDs(_ context.Context, roleIDs []int64) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, roleID := range roleIDs {
		for _, menuID := range r.roleMenus[roleID] {
			if _, ok := seen[menuID]; ok {
				continue
			}
			seen[menuID] = struct{}{}
			ids = append(ids, menuID)
		}
	}

	return ids, nil
}

func (r *fakePermissionRepo) FindActiveMenusByIDs(_ context.Context, menuIDs []int64) ([]*entity.Menu, error) {
	var menus []*entity.Menu
	for _, id := range menuIDs {
		if menu, ok := r.menus[id]; ok && menu.Status == entity.StatusActive {
			menus = append(menus, menu)
		}
	}

	return menus, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*entity.User

	findErr       error
	lastLoginCall atomic.Int64
}

func (r *fakeUserRepo) FindByLoginName(_ context.Context, domain, loginName string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Domain == domain && user.LoginName == loginName {
			found := *user

			return &found, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, domain string, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.Domain != domain {
		return nil, repository.ErrUserNotFound
	}
	found := *user

	return &found, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, domain string, id int64, ip string, at time.Time) error {
	r.lastLoginCall.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.Domain != domain {
		return repository.ErrUserNotFound
	}
	user.LastLoginIP = ip
	user.LastLoginAt = &at

	return nil
}

type fakeCredentialRepo struct {
	mu          sync.Mutex
	credentials map[int64]*entity.Credential

	replaceErr error
}

func (r *fakeCredentialRepo) FindByUser(_ context.Context, domain string, userID int64) (*entity.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	credential, ok := r.credentials[userID]
	if !ok || credential.Domain != domain {
		return nil, repository.ErrCredentialNotFound
	}
	found := *credential

	return &found, nil
}

func (r *fakeCredentialRepo) Replace(_ context.Context, credential *entity.Credential) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *credential
	r.credentials[credential.UserID] = &stored

	return nil
}

type fakeRepoFactory struct {
	userRepo       repository.UserRepository
	credentialRepo repository.CredentialRepository
	sessionRepo    repository.SessionRepository
}

func (f *fakeRepoFactory) NewUserRepository() repository.UserRepository {
	return f.userRepo
}

func (f *fakeRepoFactory) NewCredentialRepository() repository.CredentialRepository {
	return f.credentialRepo
}

func (f *fakeRepoFactory) NewSessionRepository() repository.SessionRepository {
	return f.sessionRepo
}

type fakeTxManager struct {
	factory repository.RepositoryFactory
	calls   atomic.Int64
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	tm.calls.Add(1)

	return fn(tm.factory)
}

// recordingRenderer captures the last rendered question instead of drawing it.
type recordingRenderer struct {
	mu       sync.Mutex
	question string
}

func (r *recordingRenderer) Render(w io.Writer, question string) error {
	r.mu.Lock()
	r.question = question
	r.mu.Unlock()

	_, err := io.WriteString(w, "<svg>"+question+"</svg>")

	return err
}

// mockPermissions is a testify mock of usecase.PermissionUsecase.
type mockPermissions struct {
	mock.Mock
}

func (m *mockPermissions) GetPermissions(ctx context.Context, domain string, userID int64) (entity.PermissionSet, error) {
	args := m.Called(ctx, domain, userID)

	return args.Get(0).(entity.PermissionSet), args.Error(1)
}

func (m *mockPermissions) HasPermission(ctx context.Context, domain string, userID int64, permission string) (bool, error) {
	args := m.Called(ctx, domain, userID, permission)

	return args.Bool(0), args.Error(1)
}

func (m *mockPermissions) GetMenus(ctx context.Context, domain string, userID int64) ([]*entity.Menu, error) {
	args := m.Called(ctx, domain, userID)

	menus, _ := args.Get(0).([]*entity.Menu)

	return menus, args.Error(1)
}

func (m *mockPermissions) Invalidate(ctx context.Context, domain string, userID int64) {
	m.Called(ctx, domain, userID)
}
