// Package scheduler runs the console's periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"console/config"
	"console/internal/delivery"
	"console/internal/domain/lifecycle"
	"console/internal/errors"
	"console/internal/infra/metrics"
	"console/internal/usecase"
)

type schedulerServer struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// ServerParams holds dependencies for the scheduler
type ServerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Logger   *slog.Logger
	Sessions usecase.SessionUsecase
	Metrics  *metrics.Metrics
}

// NewServer registers the maintenance jobs. An invalid schedule is a startup error.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	logger := params.Logger.With(slog.String("component", "scheduler"))
	cronLogger := &slogCronLogger{logger: logger}

	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	job := &sessionCleanupJob{
		sessions: params.Sessions,
		metrics:  params.Metrics,
		logger:   logger,
	}
	if _, err := c.AddJob(params.Cfg.Auth.SessionCleanupSpec, job); err != nil {
		return nil, errors.Wrapf(err, "invalid session cleanup schedule %q", params.Cfg.Auth.SessionCleanupSpec)
	}

	srv := &schedulerServer{
		cron:   c,
		logger: logger,
		done:   make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve starts the scheduler and blocks until it is stopped or ctx ends.
func (s *schedulerServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()

		return nil
	}
	s.logger.Info("Starting scheduler", slog.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-s.done:
	}

	return nil
}

// stop waits for running jobs to finish, bounded by the lifecycle timeout.
func (s *schedulerServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down scheduler")

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()

		return nil
	}
	s.stopped = true
	jobsDone := s.cron.Stop()
	close(s.done)
	s.mu.Unlock()

	select {
	case <-jobsDone.Done():
		return nil
	case <-shutdownCtx.Done():
		return errors.Wrap(shutdownCtx.Err(), "scheduler jobs did not finish in time")
	}
}

// sessionCleanupJob deletes expired and inactive session records.
type sessionCleanupJob struct {
	sessions usecase.SessionUsecase
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func (j *sessionCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	removed, err := j.sessions.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("Session cleanup failed", slog.Any("error", err))

		return
	}

	j.metrics.SessionsPurged(removed)
	if removed > 0 {
		j.logger.Info("Expired sessions removed", slog.Int64("removed", removed))
	}
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
