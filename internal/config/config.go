package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Provider exposes read-only access to application configuration. Handlers and
// services depend on this interface so tests can substitute a small mock.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetAppEnv() string

	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetJWTSecret() string
	GetJWTTTL() time.Duration
	GetSessionSecret() string

	GetCloudinary() Cloudinary
	GetCardVersionTimeout() time.Duration
	GetCardVersionCacheTTL() time.Duration
	GetRedisURL() string

	GetStorageProvider() string
	GetStorageLocalDir() string

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string

	GetCORSOrigins() []string
	GetSweepSchedule() string
}

// Cloudinary holds the renderer credentials. They are loaded once at startup
// and passed explicitly to the cloudinary package.
type Cloudinary struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
}

// Configured reports whether every credential is present.
func (c Cloudinary) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr    string `env:"APP_ADDR" envDefault:":4000"`
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:5173"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`

	DBUrl            string        `env:"SURREAL_URL"`
	DBNs             string        `env:"SURREAL_NS"`
	DBDb             string        `env:"SURREAL_DB"`
	DBUser           string        `env:"SURREAL_USER"`
	DBPass           string        `env:"SURREAL_PASS"`
	DBQueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	DBExecuteTimeout time.Duration `env:"DB_EXECUTE_TIMEOUT" envDefault:"10s"`

	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"168h"`
	SessionSecret string        `env:"SESSION_SECRET"`

	Cloudinary          Cloudinary
	CardVersionTimeout  time.Duration `env:"CARD_VERSION_TIMEOUT" envDefault:"2s"`
	CardVersionCacheTTL time.Duration `env:"CARD_VERSION_CACHE_TTL" envDefault:"5m"`
	RedisURL            string        `env:"REDIS_URL"`

	StorageProvider string `env:"STORAGE_PROVIDER" envDefault:"cloudinary"`
	StorageLocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:"uploads"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"log"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailSender   string `env:"EMAIL_SENDER" envDefault:"Goonies <no-reply@goonies.local>"`

	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	SweepSchedule string   `env:"SWEEP_SCHEDULE" envDefault:"@every 1m"`
}

// ErrMissingRequired is returned by Load when a required variable is unset.
var ErrMissingRequired = errors.New("required configuration missing")

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv parses the current environment without touching .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCloudinary reads only the renderer credentials, for tools that do not
// need a database.
func LoadCloudinary() (Cloudinary, error) {
	_ = godotenv.Load()
	var c Cloudinary
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// New loads the configuration and exits the process when it is invalid.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	var missing []string
	if c.DBUrl == "" {
		missing = append(missing, "SURREAL_URL")
	}
	if c.DBNs == "" {
		missing = append(missing, "SURREAL_NS")
	}
	if c.DBDb == "" {
		missing = append(missing, "SURREAL_DB")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	if c.SessionSecret == "" {
		c.SessionSecret = c.JWTSecret
	}
	return nil
}

func (c *Config) GetAppAddr() string    { return c.AppAddr }
func (c *Config) GetAppBaseURL() string { return strings.TrimRight(c.AppBaseURL, "/") }
func (c *Config) GetAppEnv() string     { return c.AppEnv }

func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }

func (c *Config) GetJWTSecret() string     { return c.JWTSecret }
func (c *Config) GetJWTTTL() time.Duration { return c.JWTTTL }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }

func (c *Config) GetCloudinary() Cloudinary             { return c.Cloudinary }
func (c *Config) GetCardVersionTimeout() time.Duration  { return c.CardVersionTimeout }
func (c *Config) GetCardVersionCacheTTL() time.Duration { return c.CardVersionCacheTTL }
func (c *Config) GetRedisURL() string                   { return c.RedisURL }
func (c *Config) GetStorageProvider() string            { return c.StorageProvider }
func (c *Config) GetStorageLocalDir() string            { return c.StorageLocalDir }
func (c *Config) GetEmailProvider() string              { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string                { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string                { return c.EmailSender }
func (c *Config) GetCORSOrigins() []string              { return c.CORSOrigins }
func (c *Config) GetSweepSchedule() string              { return c.SweepSchedule }
