package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"console/config"
	"console/internal/delivery/api/response"
	deliverycontext "console/internal/delivery/context"
	"console/internal/domain/entity"
	domainerrors "console/internal/domain/errors"
	"console/internal/domain/service"
	"console/internal/errors"
	"console/internal/infra/metrics"
	"console/internal/usecase"
)

// GatekeeperParams defines the dependencies of the gatekeeper.
type GatekeeperParams struct {
	fx.In

	TokenService service.TokenService
	Sessions     usecase.SessionUsecase
	Permissions  usecase.PermissionUsecase
	Config       *config.Config
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// Gatekeeper authenticates every request and authorizes page requests against the route table.
// Each request ends in exactly one of: forward, redirect to login, redirect to 403, or 401 JSON.
type Gatekeeper struct {
	tokenService service.TokenService
	sessions     usecase.SessionUsecase
	permissions  usecase.PermissionUsecase
	cfg          *config.GatekeeperConfig
	routes       *RouteTable
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewGatekeeper is the constructor for Gatekeeper.
func NewGatekeeper(params GatekeeperParams) *Gatekeeper {
	cfg := params.Config.Gatekeeper

	return &Gatekeeper{
		tokenService: params.TokenService,
		sessions:     params.Sessions,
		permissions:  params.Permissions,
		cfg:          cfg,
		routes:       NewRouteTable(cfg.Routes),
		metrics:      params.Metrics,
		logger:       params.Logger,
	}
}

// Handle is the echo middleware function.
func (g *Gatekeeper) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		stripIdentityHeaders(req.Header)

		path := req.URL.Path

		if g.isPublic(path) {
			if path == g.cfg.LoginPath {
				if _, err := g.authenticate(c); err == nil {
					g.metrics.GatekeeperDecision(metrics.OutcomeRedirectHome)

					return c.Redirect(http.StatusFound, g.cfg.HomePath)
				}
			}
			g.metrics.GatekeeperDecision(metrics.OutcomePublic)

			return next(c)
		}

		claims, err := g.authenticate(c)
		if err != nil {
			return g.reject(c, path, err)
		}

		if !g.isAPI(path) {
			if allowed := g.authorize(c, path, claims.Identity); !allowed {
				g.metrics.GatekeeperDecision(metrics.OutcomeForbidden)

				return c.Redirect(http.StatusFound, g.cfg.ForbiddenPath)
			}
		}

		attachIdentity(c, claims.Identity)
		g.metrics.GatekeeperDecision(metrics.OutcomeForward)

		return next(c)
	}
}

// authenticate returns the verified claims of a token whose session is still valid.
func (g *Gatekeeper) authenticate(c echo.Context) (*entity.Claims, error) {
	token := g.tokenService.ExtractFromRequest(c.Request())
	if token == "" {
		return nil, domainerrors.ErrAuthRequired
	}

	claims, err := g.tokenService.Parse(token)
	if err != nil {
		// Every parse failure answers INVALID_TOKEN; the kind is logged only.
		kind := service.TokenErrorMalformed
		if tokenErr, ok := errors.AsType[*service.TokenError](err); ok {
			kind = tokenErr.Kind
		}
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), g.logger).Debug("Token rejected",
			slog.String("reason", string(kind)),
		)

		return nil, domainerrors.ErrInvalidToken
	}

	if !g.sessions.IsValid(c.Request().Context(), token) {
		return nil, domainerrors.ErrSessionExpired
	}

	return claims, nil
}

// authorize fails closed when the permission set cannot be resolved.
func (g *Gatekeeper) authorize(c echo.Context, path string, identity entity.Identity) bool {
	required, ok := g.routes.Lookup(path)
	if !ok || required == "" {
		return true
	}

	ctx := c.Request().Context()
	allowed, err := g.permissions.HasPermission(ctx, identity.Domain, identity.UserID, required)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, g.logger).Error("Failed to resolve permissions",
			slog.Any("error", err),
			slog.String("path", path),
		)

		return false
	}

	return allowed
}

func (g *Gatekeeper) reject(c echo.Context, path string, err error) error {
	if g.isAPI(path) {
		g.metrics.GatekeeperDecision(metrics.OutcomeUnauthorized)

		var appErr domainerrors.AppError
		if !errors.As(err, &appErr) {
			appErr = domainerrors.ErrAuthRequired
		}

		return response.AppError(c, appErr)
	}

	g.metrics.GatekeeperDecision(metrics.OutcomeRedirectLogin)

	target := g.cfg.LoginPath
	if path != "" && path != "/" {
		target += "?redirect=" + url.QueryEscape(c.Request().URL.RequestURI())
	}

	return c.Redirect(http.StatusFound, target)
}

func (g *Gatekeeper) isPublic(path string) bool {
	if slices.Contains(g.cfg.PublicPaths, path) {
		return true
	}

	for _, prefix := range g.cfg.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

func (g *Gatekeeper) isAPI(path string) bool {
	return strings.HasPrefix(path, g.cfg.APIPrefix)
}

func stripIdentityHeaders(header http.Header) {
	header.Del(deliverycontext.HeaderXUserID)
	header.Del(deliverycontext.HeaderXUserDomain)
	header.Del(deliverycontext.HeaderXLoginName)
}

func attachIdentity(c echo.Context, identity entity.Identity) {
	header := c.Request().Header
	header.Set(deliverycontext.HeaderXUserID, strconv.FormatInt(identity.UserID, 10))
	header.Set(deliverycontext.HeaderXUserDomain, identity.Domain)
	header.Set(deliverycontext.HeaderXLoginName, identity.LoginName)

	deliverycontext.SetIdentity(c, identity)
}

// RequirePermission guards API routes, which the gatekeeper itself only authenticates.
// It must run after Handle so the caller identity is present.
func (g *Gatekeeper) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := deliverycontext.GetIdentity(c)
			if !ok {
				return domainerrors.ErrAuthRequired
			}

			ctx := c.Request().Context()
			allowed, err := g.permissions.HasPermission(ctx, identity.Domain, identity.UserID, permission)
			if err != nil {
				deliverycontext.GetLoggerOrDefault(ctx, g.logger).Error("Failed to resolve permissions",
					slog.Any("error", err),
					slog.String("permission", permission),
				)

				return domainerrors.ErrForbidden
			}
			if !allowed {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}
