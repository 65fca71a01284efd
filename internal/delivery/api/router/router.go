// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"console/config"
	"console/internal/delivery/api/middleware"
	"console/internal/delivery/api/router/handler"
	"console/internal/infra/metrics"
)

// Permissions required by the management API.
const (
	PermissionMonitorOnline = "monitor:online"
	PermissionSystemRole    = "system:role"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	MonitorHandler *handler.MonitorHandler
	Gatekeeper     *middleware.Gatekeeper
	Metrics        *metrics.Metrics
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	monitorHandler *handler.MonitorHandler
	gatekeeper     *middleware.Gatekeeper
	metrics        *metrics.Metrics
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		monitorHandler: params.MonitorHandler,
		gatekeeper:     params.Gatekeeper,
		metrics:        params.Metrics,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// The gatekeeper runs in front of the router, so every route below is already authenticated unless public.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/captcha", r.authHandler.Captcha)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.GET("/userinfo", r.authHandler.UserInfo)
		authGroup.PUT("/password", r.authHandler.ChangePassword)
		authGroup.POST("/password/strength", r.authHandler.PasswordStrength)
	}

	onlineGroup := e.Group("/api/monitor/online")
	onlineGroup.Use(r.gatekeeper.RequirePermission(PermissionMonitorOnline))
	{
		onlineGroup.GET("", r.monitorHandler.ListOnline)
		onlineGroup.DELETE("/:sessionId", r.monitorHandler.ForceLogout)
		onlineGroup.DELETE("/user/:domain/:userId", r.monitorHandler.ForceLogoutUser)
	}

	systemGroup := e.Group("/api/system")
	systemGroup.Use(r.gatekeeper.RequirePermission(PermissionSystemRole))
	{
		systemGroup.DELETE("/permission-cache/:domain/:userId", r.monitorHandler.InvalidatePermissions)
	}
}
