// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"console/config"
	deliverycontext "console/internal/delivery/context"
	"console/internal/domain/entity"
	"console/internal/domain/service"
	"console/internal/errors"
	"console/internal/infra/metrics"
	"console/internal/usecase"
)

const (
	captchaOperandMin = 1
	captchaOperandMax = 20
)

// CaptchaServiceParams defines the dependencies of the captcha service.
type CaptchaServiceParams struct {
	fx.In

	Store    service.CaptchaStore
	Renderer service.CaptchaRenderer
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

type captchaService struct {
	store    service.CaptchaStore
	renderer service.CaptchaRenderer
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	intN     func(n int) int
	now      func() time.Time
}

// NewCaptchaService is the constructor for captchaService.
func NewCaptchaService(params CaptchaServiceParams) usecase.CaptchaUsecase {
	ttl := config.DefaultCaptchaTTL
	if params.Config != nil && params.Config.Captcha != nil && params.Config.Captcha.TTL > 0 {
		ttl = params.Config.Captcha.TTL
	}

	return &captchaService{
		store:    params.Store,
		renderer: params.Renderer,
		ttl:      ttl,
		logger:   params.Logger,
		metrics:  params.Metrics,
		intN:     rand.IntN,
		now:      time.Now,
	}
}

func (srv *captchaService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Generate stores a new "a op b" challenge and returns its id with the rendered SVG.
func (srv *captchaService) Generate(ctx context.Context) (*usecase.CaptchaOutput, error) {
	question, answer := srv.newQuestion()

	challenge := &entity.Challenge{
		ID:        uuid.NewString(),
		Answer:    strconv.Itoa(answer),
		ExpiresAt: srv.now().Add(srv.ttl),
	}

	var svg strings.Builder
	if err := srv.renderer.Render(&svg, question); err != nil {
		return nil, errors.Wrap(err, "failed to render captcha")
	}

	if err := srv.store.Put(ctx, challenge); err != nil {
		return nil, errors.Wrap(err, "failed to store captcha")
	}

	return &usecase.CaptchaOutput{ID: challenge.ID, SVG: svg.String()}, nil
}

// newQuestion draws two operands in [1,20] and + or -. Subtraction is ordered so the answer is never negative.
func (srv *captchaService) newQuestion() (string, int) {
	a := captchaOperandMin + srv.intN(captchaOperandMax-captchaOperandMin+1)
	b := captchaOperandMin + srv.intN(captchaOperandMax-captchaOperandMin+1)

	if srv.intN(2) == 0 {
		return fmt.Sprintf("%d + %d = ?", a, b), a + b
	}

	if a < b {
		a, b = b, a
	}

	return fmt.Sprintf("%d - %d = ?", a, b), a - b
}

// Verify takes the challenge out of the store before comparing, so a second call for the same id always fails.
func (srv *captchaService) Verify(ctx context.Context, id, answer string) bool {
	ok := srv.verify(ctx, id, answer)
	srv.metrics.CaptchaVerified(ok)

	return ok
}

func (srv *captchaService) verify(ctx context.Context, id, answer string) bool {
	if id == "" {
		return false
	}

	challenge, err := srv.store.Take(ctx, id)
	if err != nil {
		if !errors.Is(err, service.ErrChallengeNotFound) {
			srv.log(ctx).Error("Failed to load captcha challenge", slog.Any("error", err))
		}

		return false
	}

	if challenge.IsExpiredAt(srv.now()) {
		return false
	}

	return strings.TrimSpace(answer) == challenge.Answer
}
