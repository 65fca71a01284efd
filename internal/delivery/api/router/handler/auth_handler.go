// Package handler contains the HTTP handlers for the console API.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"console/internal/delivery/api/response"
	deliverycontext "console/internal/delivery/context"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/service"
	"console/internal/errors"
	"console/internal/usecase"
)

// AuthHandler serves login, captcha, logout, user info and password endpoints.
type AuthHandler struct {
	auth         usecase.AuthUsecase
	captcha      usecase.CaptchaUsecase
	tokenService service.TokenService
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, captcha usecase.CaptchaUsecase, tokenService service.TokenService) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		captcha:      captcha,
		tokenService: tokenService,
	}
}

// Login verifies the captcha and credentials, records the session and sets the auth cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.auth.Login(c.Request().Context(), &usecase.LoginInput{
		Domain:      req.UserDomain,
		LoginName:   req.LoginName,
		Password:    req.Password,
		CaptchaID:   req.CaptchaID,
		CaptchaText: req.CaptchaText,
		Device:      c.Request().UserAgent(),
		IPAddress:   c.RealIP(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookie(c, output.Token, int(h.tokenService.TTL().Seconds()))

	return response.SuccessWithMessage(c, http.StatusOK, &LoginResponse{
		User:        toUserResponse(output.User),
		Token:       output.Token,
		ExpiresAt:   output.ExpiresAt,
		Permissions: output.Permissions,
		Menus:       toMenuResponses(output.Menus),
	}, "Login successful")
}

// Captcha issues a new single-use math challenge.
func (h *AuthHandler) Captcha(c echo.Context) error {
	output, err := h.captcha.Generate(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	return response.Success(c, http.StatusOK, output)
}

// Logout revokes the presented session and always clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := h.tokenService.ExtractFromRequest(c.Request())

	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	h.clearAuthCookie(c)

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Logout successful")
}

func (h *AuthHandler) UserInfo(c echo.Context) error {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return domainerrors.ErrAuthRequired
	}

	output, err := h.auth.UserInfo(c.Request().Context(), identity)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, &UserInfoResponse{
		User:        toUserResponse(output.User),
		Permissions: output.Permissions,
		Menus:       toMenuResponses(output.Menus),
	})
}

// ChangePassword revokes every session of the caller, so the cookie is cleared as well.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return domainerrors.ErrAuthRequired
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.auth.ChangePassword(c.Request().Context(), identity, req.OldPassword, req.NewPassword); err != nil {
		return errors.WithStack(err)
	}

	h.clearAuthCookie(c)

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Password changed, please log in again")
}

func (h *AuthHandler) PasswordStrength(c echo.Context) error {
	var req PasswordStrengthRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}

	return response.Success(c, http.StatusOK, h.auth.CheckPasswordStrength(req.Password))
}

func (h *AuthHandler) setAuthCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     h.tokenService.CookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookie emits Max-Age=0.
func (h *AuthHandler) clearAuthCookie(c echo.Context) {
	h.setAuthCookie(c, "", -1)
}
