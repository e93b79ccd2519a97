package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/jwtx"
	"github.com/ithesk/qraxer/pkg/qrsig"
)

// Config is read from defaults, then the optional YAML file, then the
// environment. Later sources win.
type Config struct {
	Env                  string        `yaml:"env"`        // dev, test, prod (default: dev)
	LogLevel             string        `yaml:"log_level"`  // debug, info, warn, error (default: info)
	LogFormat            string        `yaml:"log_format"` // json, text (default: json)
	Port                 int           `yaml:"port"`       // default: 3001
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"`
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"`
	DatabaseFile         string        `yaml:"database_file"` // refresh tokens (default: qraxer.db)
	RedisURL             string        `yaml:"redis_url"`     // optional: shared sessions, vault and events

	JWTSecret           string        `yaml:"jwt_secret"`
	JWTIssuer           string        `yaml:"jwt_issuer"`
	JWTExpiresIn        time.Duration `yaml:"jwt_expires_in"`         // default: 8h
	JWTRefreshExpiresIn time.Duration `yaml:"jwt_refresh_expires_in"` // default: 7d

	OdooURL           string        `yaml:"odoo_url"`
	OdooDB            string        `yaml:"odoo_db"`
	OdooAdminUser     string        `yaml:"odoo_admin_user"`
	OdooAdminPassword string        `yaml:"odoo_admin_password"`
	OdooCatalogURL    string        `yaml:"odoo_catalog_url"` // default: OdooURL
	OdooCatalogDB     string        `yaml:"odoo_catalog_db"`  // default: OdooDB
	OdooTimeout       time.Duration `yaml:"odoo_timeout"`     // default: 20s

	QRHMACSecret        string        `yaml:"qr_hmac_secret"`
	QRExpirationMinutes int           `yaml:"qr_expiration_minutes"` // default: 60
	QRClockSkew         time.Duration `yaml:"qr_clock_skew"`         // default: 5m
	// AllowSimpleQR defaults to true outside production.
	AllowSimpleQR *bool `yaml:"allow_simple_qr"`

	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	RateLimitMax    int           `yaml:"rate_limit_max"`

	// VaultKey keys the store of Odoo passwords used to restore expired
	// sessions. Empty means a random key per process.
	VaultKey string `yaml:"vault_key"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 3001,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		DatabaseFile:         "qraxer.db",

		JWTIssuer:           "qraxer",
		JWTExpiresIn:        jwtx.DefaultAccessTokenTTL,
		JWTRefreshExpiresIn: jwtx.DefaultRefreshTokenTTL,

		OdooTimeout: 20 * time.Second,

		QRExpirationMinutes: int(qrsig.DefaultExpiration / time.Minute),
		QRClockSkew:         qrsig.DefaultClockSkew,

		CORSOrigins:     []string{"*"},
		RateLimitWindow: httpx.DefaultAPILimit.Window,
		RateLimitMax:    httpx.DefaultAPILimit.RequestsPerWindow,
	}
}

// LoadConfig builds the configuration. path may be empty, in which case
// QRAXER_CONFIG is consulted.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("QRAXER_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	cfg.fillDerived()
	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) applyEnv() {
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)
	cfg.DatabaseFile = getEnvOrDefault("DATABASE_FILE", cfg.DatabaseFile)
	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)

	cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnvOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTExpiresIn = getEnvDurationOrDefault("JWT_EXPIRES_IN", cfg.JWTExpiresIn)
	cfg.JWTRefreshExpiresIn = getEnvDurationOrDefault("JWT_REFRESH_EXPIRES_IN", cfg.JWTRefreshExpiresIn)

	cfg.OdooURL = getEnvOrDefault("ODOO_URL", cfg.OdooURL)
	cfg.OdooDB = getEnvOrDefault("ODOO_DB", cfg.OdooDB)
	cfg.OdooAdminUser = getEnvOrDefault("ODOO_ADMIN_USER", cfg.OdooAdminUser)
	cfg.OdooAdminPassword = getEnvOrDefault("ODOO_ADMIN_PASSWORD", cfg.OdooAdminPassword)
	cfg.OdooCatalogURL = getEnvOrDefault("ODOO_CATALOG_URL", cfg.OdooCatalogURL)
	cfg.OdooCatalogDB = getEnvOrDefault("ODOO_CATALOG_DB", cfg.OdooCatalogDB)
	cfg.OdooTimeout = getEnvDurationOrDefault("ODOO_TIMEOUT", cfg.OdooTimeout)

	cfg.QRHMACSecret = getEnvOrDefault("QR_HMAC_SECRET", cfg.QRHMACSecret)
	cfg.QRExpirationMinutes = getEnvIntOrDefault("QR_EXPIRATION_MINUTES", cfg.QRExpirationMinutes)
	cfg.QRClockSkew = getEnvDurationOrDefault("QR_CLOCK_SKEW", cfg.QRClockSkew)
	if v, ok := getEnvBool("ALLOW_SIMPLE_QR"); ok {
		cfg.AllowSimpleQR = &v
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = httpx.ParseOrigins(v)
	}
	if ms := getEnvIntOrDefault("RATE_LIMIT_WINDOW_MS", 0); ms > 0 {
		cfg.RateLimitWindow = time.Duration(ms) * time.Millisecond
	}
	cfg.RateLimitMax = getEnvIntOrDefault("RATE_LIMIT_MAX", cfg.RateLimitMax)

	cfg.VaultKey = getEnvOrDefault("VAULT_KEY", cfg.VaultKey)
}

func (cfg *Config) fillDerived() {
	if cfg.OdooCatalogURL == "" {
		cfg.OdooCatalogURL = cfg.OdooURL
	}
	if cfg.OdooCatalogDB == "" {
		cfg.OdooCatalogDB = cfg.OdooDB
	}
	if cfg.AllowSimpleQR == nil {
		allow := !cfg.IsProduction()
		cfg.AllowSimpleQR = &allow
	}
}

// IsProduction reports whether Env names a production deployment.
func (cfg Config) IsProduction() bool {
	switch strings.ToLower(cfg.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// SimpleQRAllowed reports whether bare repair codes are accepted.
func (cfg Config) SimpleQRAllowed() bool {
	if cfg.AllowSimpleQR == nil {
		return !cfg.IsProduction()
	}
	return *cfg.AllowSimpleQR
}

// APILimit is the per-user limit applied to authenticated routes.
func (cfg Config) APILimit() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{RequestsPerWindow: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
}

// Validate reports every missing or unusable setting at once. Secrets may
// be left empty outside production; New then generates throwaway ones.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.OdooURL == "" {
		errs = append(errs, errors.New("ODOO_URL is required"))
	}
	if cfg.OdooDB == "" {
		errs = append(errs, errors.New("ODOO_DB is required"))
	}
	if cfg.OdooAdminUser == "" || cfg.OdooAdminPassword == "" {
		errs = append(errs, errors.New("ODOO_ADMIN_USER and ODOO_ADMIN_PASSWORD are required"))
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}
	if cfg.IsProduction() {
		if cfg.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if cfg.QRHMACSecret == "" {
			errs = append(errs, errors.New("QR_HMAC_SECRET is required in production"))
		}
		if cfg.VaultKey == "" && cfg.RedisURL != "" {
			errs = append(errs, errors.New("VAULT_KEY is required in production when REDIS_URL is set"))
		}
	}
	if cfg.JWTExpiresIn <= 0 || cfg.JWTRefreshExpiresIn <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if cfg.QRExpirationMinutes <= 0 {
		errs = append(errs, errors.New("QR_EXPIRATION_MINUTES must be positive"))
	}
	if cfg.QRClockSkew < 0 {
		errs = append(errs, errors.New("QR_CLOCK_SKEW must not be negative"))
	}
	if cfg.OdooTimeout <= 0 {
		errs = append(errs, errors.New("ODOO_TIMEOUT must be positive"))
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_MS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, ok := parseDuration(value); ok {
		return d
	}
	return defaultValue
}

// parseDuration accepts Go durations ("90s", "8h"), a day count ("7d") or
// bare integer minutes.
func parseDuration(value string) (time.Duration, bool) {
	if d, err := time.ParseDuration(value); err == nil {
		return d, true
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour, true
		}
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute, true
	}
	return 0, false
}
