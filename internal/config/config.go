package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr      = "0.0.0.0:8080"
	DefaultLockTimeout     = 500 * time.Millisecond
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAnonymizeMaxAttempts = 5
	DefaultAnonymizeWindow      = time.Hour
)

type Config struct {
	ListenAddr        string         `yaml:"listenAddr"        envconfig:"LISTEN_ADDR"`
	AllowedOrigins    []string       `yaml:"allowedOrigins"    envconfig:"ALLOWED_ORIGINS"`
	Debug             bool           `yaml:"debug"             envconfig:"DEBUG"`
	LogLevel          string         `yaml:"logLevel"          envconfig:"LOG_LEVEL"`
	ShutdownTimeout   time.Duration  `yaml:"shutdownTimeout"   envconfig:"SHUTDOWN_TIMEOUT"`
	JWTSecret         string         `yaml:"jwtSecret"         envconfig:"JWT_SECRET"`
	AnonymizationSalt string         `yaml:"anonymizationSalt" envconfig:"ANONYMIZATION_SALT"`
	Anonymize         AnonymizeLimit `yaml:"anonymize"         ignored:"true"`
	Database          DatabaseConfig `yaml:"database"          ignored:"true"`
}

// AnonymizeLimit bounds anonymization attempts per actor.
type AnonymizeLimit struct {
	MaxAttempts int           `yaml:"maxAttempts" envconfig:"ANONYMIZE_MAX_ATTEMPTS"`
	Window      time.Duration `yaml:"window"      envconfig:"ANONYMIZE_WINDOW"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"            envconfig:"POSTGRES_HOST"`
	Port            string        `yaml:"port"            envconfig:"POSTGRES_PORT"`
	User            string        `yaml:"user"            envconfig:"POSTGRES_USER"`
	Password        string        `yaml:"password"        envconfig:"POSTGRES_PASSWORD"`
	Name            string        `yaml:"name"            envconfig:"POSTGRES_DB"`
	SSLMode         string        `yaml:"sslMode"         envconfig:"POSTGRES_SSLMODE"`
	LockTimeout     time.Duration `yaml:"lockTimeout"     envconfig:"LOCK_TIMEOUT"`
	MaxOpenConns    int           `yaml:"maxOpenConns"    envconfig:"POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"maxIdleConns"    envconfig:"POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" envconfig:"POSTGRES_CONN_MAX_LIFETIME"`
}

func Default() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		LogLevel:        "info",
		ShutdownTimeout: DefaultShutdownTimeout,
		Anonymize: AnonymizeLimit{
			MaxAttempts: DefaultAnonymizeMaxAttempts,
			Window:      DefaultAnonymizeWindow,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			SSLMode:         "disable",
			LockTimeout:     DefaultLockTimeout,
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and finally the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("error processing database environment: %w", err)
	}
	if err := envconfig.Process("", &cfg.Anonymize); err != nil {
		return nil, fmt.Errorf("error processing anonymize environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AnonymizationSalt == "" {
		errs = append(errs, errors.New("ANONYMIZATION_SALT is required"))
	}
	if err := c.Anonymize.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a AnonymizeLimit) Validate() error {
	var errs []error
	if a.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("ANONYMIZE_MAX_ATTEMPTS must be at least 1, got %d", a.MaxAttempts))
	}
	if a.Window < time.Minute {
		errs = append(errs, fmt.Errorf("ANONYMIZE_WINDOW must be at least 1m, got %s", a.Window))
	}
	return errors.Join(errs...)
}

func (d DatabaseConfig) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("POSTGRES_DB is required"))
	}
	if d.LockTimeout <= 0 || d.LockTimeout >= time.Second {
		errs = append(errs, fmt.Errorf("LOCK_TIMEOUT must be between 0 and 1s, got %s", d.LockTimeout))
	}
	return errors.Join(errs...)
}

func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// SlogLevel parses LogLevel, falling back to info. Debug mode always logs at debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger returns a JSON logger at the configured level. Debug adds source locations.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: c.Debug,
		Level:     c.SlogLevel(),
	}))
}
