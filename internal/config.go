package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Backend       BackendConfig       `mapstructure:"backend"`
	Session       SessionConfig       `mapstructure:"session"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
	BatchSize       int           `mapstructure:"batch_size"`
}

// BackendConfig describes the hosted database/auth provider. An empty URL or
// anon key is tolerated: the provider client falls back to a placeholder.
type BackendConfig struct {
	URL            string `mapstructure:"url"`
	AnonKey        string `mapstructure:"anon_key"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	JWTSecret      string `mapstructure:"jwt_secret"`
	OAuthProvider  string `mapstructure:"oauth_provider"`
}

type SessionConfig struct {
	AccessCookie  string        `mapstructure:"access_cookie"`
	RefreshCookie string        `mapstructure:"refresh_cookie"`
	RefreshMaxAge time.Duration `mapstructure:"refresh_max_age"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	LoginPath     string        `mapstructure:"login_path"`
	DashboardPath string        `mapstructure:"dashboard_path"`
	ErrorPath     string        `mapstructure:"error_path"`
	PublicPaths   []string      `mapstructure:"public_paths"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CacheConfig struct {
	PersonnelTTL time.Duration `mapstructure:"personnel_ttl"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- DEFAULTS -----------------

const (
	DefaultBatchSize     = 1000
	DefaultPersonnelTTL  = 5 * time.Minute
	DefaultAccessCookie  = "sb-access-token"
	DefaultRefreshCookie = "sb-refresh-token"
)

// ApplyDefaults fills zero values the rest of the application relies on.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
	if c.Database.BatchSize <= 0 {
		c.Database.BatchSize = DefaultBatchSize
	}
	if c.Backend.OAuthProvider == "" {
		c.Backend.OAuthProvider = "google"
	}
	if c.Session.AccessCookie == "" {
		c.Session.AccessCookie = DefaultAccessCookie
	}
	if c.Session.RefreshCookie == "" {
		c.Session.RefreshCookie = DefaultRefreshCookie
	}
	if c.Session.RefreshMaxAge <= 0 {
		c.Session.RefreshMaxAge = 30 * 24 * time.Hour
	}
	if c.Session.LoginPath == "" {
		c.Session.LoginPath = "/login"
	}
	if c.Session.DashboardPath == "" {
		c.Session.DashboardPath = "/dashboard"
	}
	if c.Session.ErrorPath == "" {
		c.Session.ErrorPath = "/auth/auth-code-error"
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "revalidate"
	}
	if c.Cache.PersonnelTTL <= 0 {
		c.Cache.PersonnelTTL = DefaultPersonnelTTL
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the configuration for container deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
			OpenAPIPath:       getEnv("OPENAPI_PATH", "./api/openapi.yml"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
			BatchSize:       getEnvAsInt("DB_BATCH_SIZE", DefaultBatchSize),
		},
		Backend: BackendConfig{
			URL:            getEnv("BACKEND_URL", ""),
			AnonKey:        getEnv("BACKEND_ANON_KEY", ""),
			ServiceRoleKey: getEnv("BACKEND_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getEnv("BACKEND_JWT_SECRET", ""),
			OAuthProvider:  getEnv("BACKEND_OAUTH_PROVIDER", "google"),
		},
		Session: SessionConfig{
			SecureCookies: getEnv("SESSION_SECURE_COOKIES", "true") == "true",
			PublicPaths:   splitNonEmpty(getEnv("SESSION_PUBLIC_PATHS", "")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "revalidate"),
		},
		Cache: CacheConfig{
			PersonnelTTL: getEnvAsDuration("PERSONNEL_CACHE_TTL", DefaultPersonnelTTL),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Backend.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("backend config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// Validate only checks values that are present; a missing backend is allowed.
func (c *BackendConfig) Validate() error {
	if c.URL == "" {
		return nil
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url %q", c.URL)
	}
	return nil
}

func (c *BackendConfig) Configured() bool {
	return c.URL != "" && c.AnonKey != ""
}

func (c *SessionConfig) Validate() error {
	for _, p := range []string{c.LoginPath, c.DashboardPath, c.ErrorPath} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path %q must start with /", p)
		}
	}
	return nil
}
