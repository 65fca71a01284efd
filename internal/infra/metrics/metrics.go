// Package metrics exposes the console's Prometheus collectors.
package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatekeeper outcomes.
const (
	OutcomePublic        = "public"
	OutcomeForward       = "forward"
	OutcomeRedirectLogin = "redirect_login"
	OutcomeRedirectHome  = "redirect_home"
	OutcomeForbidden     = "redirect_forbidden"
	OutcomeUnauthorized  = "unauthorized"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	GatekeeperTotal     *prometheus.CounterVec
	LoginAttemptsTotal  *prometheus.CounterVec
	CaptchaVerifyTotal  *prometheus.CounterVec
	SessionsPurgedTotal prometheus.Counter
}

// New creates a registry with process and Go collectors plus the console metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_cache_hits_total",
				Help: "Total number of in-process cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_cache_misses_total",
				Help: "Total number of in-process cache misses",
			},
			[]string{"cache"},
		),
		GatekeeperTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_gatekeeper_decisions_total",
				Help: "Gatekeeper decisions by outcome",
			},
			[]string{"outcome"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		CaptchaVerifyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_captcha_verifications_total",
				Help: "Captcha verifications by result",
			},
			[]string{"result"},
		),
		SessionsPurgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_sessions_purged_total",
				Help: "Expired session records removed by the cleanup job",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.GatekeeperTotal,
		m.LoginAttemptsTotal,
		m.CaptchaVerifyTotal,
		m.SessionsPurgedTotal,
	)

	return m
}

// CacheHit implements cache.Recorder.
func (m *Metrics) CacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// CacheMiss implements cache.Recorder.
func (m *Metrics) CacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *Metrics) GatekeeperDecision(outcome string) {
	m.GatekeeperTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LoginAttempt(result string) {
	m.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) CaptchaVerified(ok bool) {
	result := "fail"
	if ok {
		result = "ok"
	}
	m.CaptchaVerifyTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionsPurged(n int64) {
	m.SessionsPurgedTotal.Add(float64(n))
}

// RegisterDBStats exports the connection pool statistics of db under the db_name label.
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
