package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

// Auth defaults. The token lifetime and the cookie max-age are the same value.
const (
	DefaultBcryptCost          = 10
	DefaultTokenTTL            = 7 * 24 * time.Hour
	DefaultCookieName          = "auth_token"
	DefaultSessionCacheSize    = 5000
	DefaultSessionCacheTTL     = 60 * time.Second
	DefaultPermissionCacheSize = 10000
	DefaultPermissionCacheTTL  = 5 * time.Minute
	DefaultSessionCleanupSpec  = "@every 1h"
)

// Captcha defaults.
const (
	CaptchaStoreMemory = "memory"
	CaptchaStoreRedis  = "redis"

	DefaultCaptchaTTL      = 5 * time.Minute
	DefaultCaptchaCapacity = 20000
	DefaultCaptchaWidth    = 120
	DefaultCaptchaHeight   = 40
)

// ErrMissingSigningSecret is returned when no token signing secret is configured.
var ErrMissingSigningSecret = errors.New("token signing secret is not set (SECRETKEY_TOKEN)")

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Redis is optional; it is required only when the captcha store is "redis".
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	SecretKey SecretKey `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Captcha *CaptchaConfig `json:"captcha" yaml:"captcha"`

	Gatekeeper *GatekeeperConfig `json:"gatekeeper" yaml:"gatekeeper"`
}

// SecretKey holds signing secrets. Token must be set through SECRETKEY_TOKEN or the config file.
type SecretKey struct {
	Token string `json:"token" yaml:"token"`
}

// RedisConfig holds the connection settings of the shared redis instance.
type RedisConfig struct {
	URL      string `json:"url" yaml:"url"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	PoolSize int    `json:"poolSize" yaml:"poolSize"`
}

// AuthConfig defines token, session and permission cache settings.
type AuthConfig struct {
	BcryptCost          int           `json:"bcryptCost" yaml:"bcryptCost"`
	TokenTTL            time.Duration `json:"tokenTtl" yaml:"tokenTtl"`
	CookieName          string        `json:"cookieName" yaml:"cookieName"`
	SessionCacheSize    int           `json:"sessionCacheSize" yaml:"sessionCacheSize"`
	SessionCacheTTL     time.Duration `json:"sessionCacheTtl" yaml:"sessionCacheTtl"`
	PermissionCacheSize int           `json:"permissionCacheSize" yaml:"permissionCacheSize"`
	PermissionCacheTTL  time.Duration `json:"permissionCacheTtl" yaml:"permissionCacheTtl"`
	// SessionCleanupSpec is a cron spec for purging expired session records.
	SessionCleanupSpec string `json:"sessionCleanupSpec" yaml:"sessionCleanupSpec"`
}

// CaptchaConfig defines where challenges live and how they are drawn.
type CaptchaConfig struct {
	Store    string        `json:"store" yaml:"store"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
	Capacity int           `json:"capacity" yaml:"capacity"`
	Width    int           `json:"width" yaml:"width"`
	Height   int           `json:"height" yaml:"height"`
}

// RouteRule maps a page path prefix to the permission required to open it.
type RouteRule struct {
	Path       string `json:"path" yaml:"path"`
	Permission string `json:"permission" yaml:"permission"`
}

// GatekeeperConfig defines the public allow-list, redirect targets and the protected route table.
type GatekeeperConfig struct {
	LoginPath      string      `json:"loginPath" yaml:"loginPath"`
	HomePath       string      `json:"homePath" yaml:"homePath"`
	ForbiddenPath  string      `json:"forbiddenPath" yaml:"forbiddenPath"`
	APIPrefix      string      `json:"apiPrefix" yaml:"apiPrefix"`
	PublicPaths    []string    `json:"publicPaths" yaml:"publicPaths"`
	PublicPrefixes []string    `json:"publicPrefixes" yaml:"publicPrefixes"`
	Routes         []RouteRule `json:"routes" yaml:"routes"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// SECRETKEY_TOKEN -> secretKey.token, matched against the keys already present in YAML.
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads config.yaml plus environment overrides and fails when the signing secret is absent.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every optional section so consumers never see nil sub-configs.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	c.Auth.applyDefaults()

	if c.Captcha == nil {
		c.Captcha = &CaptchaConfig{}
	}
	c.Captcha.applyDefaults()

	if c.Gatekeeper == nil {
		c.Gatekeeper = &GatekeeperConfig{}
	}
	c.Gatekeeper.applyDefaults()
}

// Validate reports configuration errors that must abort startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey.Token) == "" {
		return ErrMissingSigningSecret
	}

	if c.Captcha != nil && c.Captcha.Store == CaptchaStoreRedis && (c.Redis == nil || c.Redis.URL == "") {
		return errors.New("captcha store is redis but redis.url is not set")
	}

	if c.Captcha != nil && c.Captcha.Store != CaptchaStoreMemory && c.Captcha.Store != CaptchaStoreRedis {
		return errors.Errorf("unknown captcha store: %s", c.Captcha.Store)
	}

	return nil
}

func (a *AuthConfig) applyDefaults() {
	if a.BcryptCost == 0 {
		a.BcryptCost = DefaultBcryptCost
	}
	if a.TokenTTL <= 0 {
		a.TokenTTL = DefaultTokenTTL
	}
	if a.CookieName == "" {
		a.CookieName = DefaultCookieName
	}
	if a.SessionCacheSize <= 0 {
		a.SessionCacheSize = DefaultSessionCacheSize
	}
	if a.SessionCacheTTL <= 0 {
		a.SessionCacheTTL = DefaultSessionCacheTTL
	}
	if a.PermissionCacheSize <= 0 {
		a.PermissionCacheSize = DefaultPermissionCacheSize
	}
	if a.PermissionCacheTTL <= 0 {
		a.PermissionCacheTTL = DefaultPermissionCacheTTL
	}
	if a.SessionCleanupSpec == "" {
		a.SessionCleanupSpec = DefaultSessionCleanupSpec
	}
}

func (c *CaptchaConfig) applyDefaults() {
	if c.Store == "" {
		c.Store = CaptchaStoreMemory
	}
	if c.TTL <= 0 {
		c.TTL = DefaultCaptchaTTL
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCaptchaCapacity
	}
	if c.Width <= 0 {
		c.Width = DefaultCaptchaWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultCaptchaHeight
	}
}

func (g *GatekeeperConfig) applyDefaults() {
	if g.LoginPath == "" {
		g.LoginPath = "/login"
	}
	if g.HomePath == "" {
		g.HomePath = "/home"
	}
	if g.ForbiddenPath == "" {
		g.ForbiddenPath = "/403"
	}
	if g.APIPrefix == "" {
		g.APIPrefix = "/api/"
	}
	if len(g.PublicPaths) == 0 {
		g.PublicPaths = []string{
			g.LoginPath,
			g.ForbiddenPath,
			"/api/auth/login",
			"/api/auth/captcha",
			"/api/auth/logout",
		}
	}
	if len(g.PublicPrefixes) == 0 {
		g.PublicPrefixes = []string{"/health", "/metrics"}
	}
	if len(g.Routes) == 0 {
		g.Routes = DefaultRoutes()
	}
}

// DefaultRoutes is the protected page table used when none is configured.
func DefaultRoutes() []RouteRule {
	return []RouteRule{
		{Path: "/admin/user", Permission: "system:user"},
		{Path: "/admin/role", Permission: "system:role"},
		{Path: "/admin/menu", Permission: "system:menu"},
		{Path: "/admin/dept", Permission: "system:dept"},
		{Path: "/admin/post", Permission: "system:post"},
		{Path: "/admin/config", Permission: "system:config"},
		{Path: "/admin/dict", Permission: "system:dict"},
		{Path: "/admin/session", Permission: "system:session"},
		{Path: "/admin/job", Permission: "monitor:job"},
		{Path: "/admin/online", Permission: "monitor:online"},
		{Path: "/admin/operlog", Permission: "monitor:operlog"},
		{Path: "/admin/logininfor", Permission: "monitor:logininfor"},
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD} until a gap.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
