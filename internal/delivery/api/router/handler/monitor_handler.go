package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"console/internal/delivery/api/response"
	deliverycontext "console/internal/delivery/context"
	domainerrors "console/internal/domain/errors"
	"console/internal/errors"
	"console/internal/usecase"
)

// MonitorHandler serves the online-session monitor and permission cache maintenance.
type MonitorHandler struct {
	sessions    usecase.SessionUsecase
	permissions usecase.PermissionUsecase
	logger      *slog.Logger
}

// NewMonitorHandler is the constructor for MonitorHandler, injected by Fx.
func NewMonitorHandler(sessions usecase.SessionUsecase, permissions usecase.PermissionUsecase, logger *slog.Logger) *MonitorHandler {
	return &MonitorHandler{
		sessions:    sessions,
		permissions: permissions,
		logger:      logger,
	}
}

// ListOnline lists the active sessions of ?domain=&userId=.
func (h *MonitorHandler) ListOnline(c echo.Context) error {
	params, err := h.bindIdentity(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessions.ListActive(c.Request().Context(), params.Domain, params.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSessionResponses(sessions))
}

// ForceLogout revokes one session by id.
func (h *MonitorHandler) ForceLogout(c echo.Context) error {
	id, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid session id")
	}

	if err := h.sessions.RevokeByID(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	h.audit(c, "Session force logged out", slog.String("session_id", id.String()))

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Session revoked")
}

// ForceLogoutUser revokes every session of one identity.
func (h *MonitorHandler) ForceLogoutUser(c echo.Context) error {
	params, err := h.bindIdentity(c)
	if err != nil {
		return err
	}

	if err := h.sessions.RevokeAll(c.Request().Context(), params.Domain, params.UserID); err != nil {
		return errors.WithStack(err)
	}

	h.audit(c, "User force logged out",
		slog.String("target_domain", params.Domain),
		slog.Int64("target_user_id", params.UserID),
	)

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Sessions revoked")
}

// InvalidatePermissions drops the cached permission set after a role or menu change.
func (h *MonitorHandler) InvalidatePermissions(c echo.Context) error {
	params, err := h.bindIdentity(c)
	if err != nil {
		return err
	}

	h.permissions.Invalidate(c.Request().Context(), params.Domain, params.UserID)

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Permission cache invalidated")
}

func (h *MonitorHandler) bindIdentity(c echo.Context) (*identityParams, error) {
	var params identityParams
	if err := c.Bind(&params); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("invalid user identity")
	}
	if err := c.Validate(&params); err != nil {
		return nil, errors.WithStack(err)
	}

	return &params, nil
}

func (h *MonitorHandler) audit(c echo.Context, msg string, attrs ...any) {
	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger)
	if operator, ok := deliverycontext.GetIdentity(c); ok {
		attrs = append(attrs,
			slog.String("operator_domain", operator.Domain),
			slog.Int64("operator_id", operator.UserID),
		)
	}
	logger.Info(msg, attrs...)
}
