package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/fx"

	deliverycontext "console/internal/delivery/context"
	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/repository"
	"console/internal/domain/service"
	"console/internal/errors"
	"console/internal/infra/metrics"
	"console/internal/usecase"
)

// Login outcomes reported to metrics.
const (
	loginResultSuccess     = "success"
	loginResultCaptcha     = "captcha"
	loginResultCredentials = "credentials"
	loginResultDisabled    = "disabled"
	loginResultError       = "error"
)

// AuthServiceParams defines the dependencies of the auth service.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	UserRepo       repository.UserRepository
	CredentialRepo repository.CredentialRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	Sessions       usecase.SessionUsecase
	Permissions    usecase.PermissionUsecase
	Captcha        usecase.CaptchaUsecase
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

type authService struct {
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	credentialRepo repository.CredentialRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	sessions       usecase.SessionUsecase
	permissions    usecase.PermissionUsecase
	captcha        usecase.CaptchaUsecase
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:      params.TxManager,
		userRepo:       params.UserRepo,
		credentialRepo: params.CredentialRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		sessions:       params.Sessions,
		permissions:    params.Permissions,
		captcha:        params.Captcha,
		metrics:        params.Metrics,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login checks the captcha before touching any account data, so the captcha is consumed by every attempt.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil || input.Domain == "" || strings.TrimSpace(input.LoginName) == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("domain, login name and password are required")
	}

	if !srv.captcha.Verify(ctx, input.CaptchaID, input.CaptchaText) {
		srv.metrics.LoginAttempt(loginResultCaptcha)

		return nil, domainerrors.ErrCaptchaInvalid
	}

	user, err := srv.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	// No session is recorded unless permissions and menus resolve.
	perms, err := srv.permissions.GetPermissions(ctx, user.Domain, user.ID)
	if err != nil {
		srv.metrics.LoginAttempt(loginResultError)

		return nil, errors.Wrap(err, "failed to load permissions")
	}

	menus, err := srv.permissions.GetMenus(ctx, user.Domain, user.ID)
	if err != nil {
		srv.metrics.LoginAttempt(loginResultError)

		return nil, errors.Wrap(err, "failed to load menus")
	}

	identity := user.Identity()
	token, err := srv.tokenService.Issue(identity)
	if err != nil {
		srv.metrics.LoginAttempt(loginResultError)
		srv.log(ctx).Error("Failed to issue token", slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed
	}

	claims := srv.tokenService.Verify(token)
	if claims == nil {
		srv.metrics.LoginAttempt(loginResultError)

		return nil, domainerrors.ErrTokenIssueFailed
	}

	client := usecase.ClientInfo{Device: input.Device, IPAddress: input.IPAddress}
	if err := srv.sessions.Create(ctx, token, claims, client); err != nil {
		srv.metrics.LoginAttempt(loginResultError)

		return nil, errors.Wrap(err, "failed to record session")
	}

	if err := srv.userRepo.UpdateLastLogin(ctx, user.Domain, user.ID, input.IPAddress, srv.now()); err != nil {
		srv.log(ctx).Warn("Failed to update last login", slog.Any("error", err))
	}

	srv.metrics.LoginAttempt(loginResultSuccess)
	srv.log(ctx).Info("User logged in",
		slog.String("user_domain", user.Domain),
		slog.Int64("user_id", user.ID),
		slog.String("ip", input.IPAddress),
	)

	return &usecase.LoginOutput{
		User:        user,
		Token:       token,
		ExpiresAt:   claims.ExpiresAt,
		Permissions: perms.Slice(),
		Menus:       menus,
	}, nil
}

// authenticate reports an unknown login name and a wrong password identically.
func (srv *authService) authenticate(ctx context.Context, input *usecase.LoginInput) (*entity.User, error) {
	user, err := srv.userRepo.FindByLoginName(ctx, input.Domain, strings.TrimSpace(input.LoginName))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.metrics.LoginAttempt(loginResultCredentials)

			return nil, domainerrors.ErrInvalidCredentials
		}
		srv.metrics.LoginAttempt(loginResultError)

		return nil, errors.Wrap(err, "failed to find user")
	}

	credential, err := srv.credentialRepo.FindByUser(ctx, user.Domain, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			srv.metrics.LoginAttempt(loginResultCredentials)

			return nil, domainerrors.ErrInvalidCredentials
		}
		srv.metrics.LoginAttempt(loginResultError)

		return nil, errors.Wrap(err, "failed to find credential")
	}

	if !srv.hasher.Check(input.Password, credential.PasswordHash) {
		srv.metrics.LoginAttempt(loginResultCredentials)

		return nil, domainerrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		srv.metrics.LoginAttempt(loginResultDisabled)

		return nil, domainerrors.ErrAccountDisabled
	}

	return user, nil
}

func (srv *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := srv.sessions.Revoke(ctx, token); err != nil {
		return errors.Wrap(err, "failed to log out")
	}

	return nil
}

func (srv *authService) UserInfo(ctx context.Context, identity entity.Identity) (*usecase.UserInfoOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, identity.Domain, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	perms, err := srv.permissions.GetPermissions(ctx, identity.Domain, identity.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load permissions")
	}

	menus, err := srv.permissions.GetMenus(ctx, identity.Domain, identity.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load menus")
	}

	return &usecase.UserInfoOutput{
		User:        user,
		Permissions: perms.Slice(),
		Menus:       menus,
	}, nil
}

// ChangePassword replaces the credential and then revokes every session of the identity, the caller's included.
func (srv *authService) ChangePassword(ctx context.Context, identity entity.Identity, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return domainerrors.ErrValidationFailed.WithDetails("old and new password are required")
	}

	if result := srv.hasher.ValidateStrength(newPassword); !result.Valid {
		return domainerrors.ErrPasswordStrength.WithDetails(strings.Join(result.Errors, "; "))
	}

	credential, err := srv.credentialRepo.FindByUser(ctx, identity.Domain, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return domainerrors.ErrCredentialNotFound
		}

		return errors.Wrap(err, "failed to find credential")
	}

	if !srv.hasher.Check(oldPassword, credential.PasswordHash) {
		return domainerrors.ErrPasswordMismatch
	}

	hash, err := srv.hasher.Hash(newPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return domainerrors.ErrPasswordHashFailed
	}

	err = srv.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		if _, err := txRepoFactory.NewUserRepository().FindByID(ctx, identity.Domain, identity.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		return txRepoFactory.NewCredentialRepository().Replace(ctx, &entity.Credential{
			Domain:       identity.Domain,
			UserID:       identity.UserID,
			PasswordHash: hash,
			UpdatedAt:    srv.now(),
		})
	})
	if err != nil {
		return errors.Wrap(err, "failed to change password")
	}

	if err := srv.sessions.RevokeAll(ctx, identity.Domain, identity.UserID); err != nil {
		return errors.Wrap(err, "password changed but sessions could not be revoked")
	}

	srv.log(ctx).Info("Password changed",
		slog.String("user_domain", identity.Domain),
		slog.Int64("user_id", identity.UserID),
	)

	return nil
}

func (srv *authService) CheckPasswordStrength(password string) service.StrengthResult {
	return srv.hasher.ValidateStrength(password)
}
