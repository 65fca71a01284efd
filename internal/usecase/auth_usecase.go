// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"console/internal/domain/entity"
	"console/internal/domain/service"
)

// LoginInput is a validated login form plus client details.
type LoginInput struct {
	Domain      string
	LoginName   string
	Password    string
	CaptchaID   string
	CaptchaText string
	Device      string
	IPAddress   string
}

// LoginOutput is returned on a successful login.
type LoginOutput struct {
	User        *entity.User
	Token       string
	ExpiresAt   time.Time
	Permissions []string
	Menus       []*entity.Menu
}

// UserInfoOutput describes the current caller.
type UserInfoOutput struct {
	User        *entity.User
	Permissions []string
	Menus       []*entity.Menu
}

// AuthUsecase covers login, logout and the caller's own account.
type AuthUsecase interface {
	// Login checks the captcha, then the credentials, then issues a token and records the session.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Logout revokes the session of token. An empty or unknown token is not an error.
	Logout(ctx context.Context, token string) error

	UserInfo(ctx context.Context, identity entity.Identity) (*UserInfoOutput, error)

	// ChangePassword replaces the credential and revokes every session of the identity.
	ChangePassword(ctx context.Context, identity entity.Identity, oldPassword, newPassword string) error

	CheckPasswordStrength(password string) service.StrengthResult
}
