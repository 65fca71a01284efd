package handler

import (
	"time"

	"console/internal/domain/entity"
)

// LoginRequest is the login form: {userDomain, loginName, password, captchaId, captchaText}.
type LoginRequest struct {
	UserDomain  string `json:"userDomain" validate:"required,max=32"`
	LoginName   string `json:"loginName" validate:"required,max=64"`
	Password    string `json:"password" validate:"required,max=128"`
	CaptchaID   string `json:"captchaId" validate:"required"`
	CaptchaText string `json:"captchaText" validate:"required,max=8"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// identityParams addresses one user of one domain from the URL or query string.
type identityParams struct {
	Domain string `param:"domain" query:"domain" validate:"required"`
	UserID int64  `param:"userId" query:"userId" validate:"required,gt=0"`
}

type UserResponse struct {
	ID          int64      `json:"id"`
	Domain      string     `json:"userDomain"`
	LoginName   string     `json:"loginName"`
	NickName    string     `json:"nickName"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Status      string     `json:"status"`
	LastLoginIP string     `json:"lastLoginIp,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type MenuResponse struct {
	ID         int64  `json:"id"`
	ParentID   int64  `json:"parentId"`
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	Type       string `json:"type"`
	Permission string `json:"permission,omitempty"`
	Sort       int    `json:"sort"`
}

type LoginResponse struct {
	User        *UserResponse   `json:"user"`
	Token       string          `json:"token"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Permissions []string        `json:"permissions"`
	Menus       []*MenuResponse `json:"menus"`
}

type UserInfoResponse struct {
	User        *UserResponse   `json:"user"`
	Permissions []string        `json:"permissions"`
	Menus       []*MenuResponse `json:"menus"`
}

// SessionResponse describes an online session. The token hash is never exposed.
type SessionResponse struct {
	ID        string     `json:"id"`
	Domain    string     `json:"userDomain"`
	UserID    int64      `json:"userId"`
	LoginName string     `json:"loginName"`
	Device    string     `json:"device,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func toUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:          user.ID,
		Domain:      user.Domain,
		LoginName:   user.LoginName,
		NickName:    user.NickName,
		Email:       user.Email,
		Phone:       user.Phone,
		Status:      string(user.Status),
		LastLoginIP: user.LastLoginIP,
		LastLoginAt: user.LastLoginAt,
	}
}

func toMenuResponses(menus []*entity.Menu) []*MenuResponse {
	result := make([]*MenuResponse, 0, len(menus))
	for _, menu := range menus {
		result = append(result, &MenuResponse{
			ID:         menu.ID,
			ParentID:   menu.ParentID,
			Name:       menu.Name,
			Path:       menu.Path,
			Type:       string(menu.Type),
			Permission: menu.Permission,
			Sort:       menu.Sort,
		})
	}

	return result
}

func toSessionResponses(sessions []*entity.Session) []*SessionResponse {
	result := make([]*SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		item := &SessionResponse{
			ID:        session.ID.String(),
			Domain:    session.Domain,
			UserID:    session.UserID,
			LoginName: session.LoginName,
			Device:    session.Device,
			IPAddress: session.IPAddress,
			CreatedAt: session.CreatedAt,
		}
		if !session.ExpiresAt.IsZero() {
			expiresAt := session.ExpiresAt
			item.ExpiresAt = &expiresAt
		}
		result = append(result, item)
	}

	return result
}
