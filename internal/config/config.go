package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"file:catalog.db?_pragma=foreign_keys(1)"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`
	ConnectRate       float64       `env:"CONNECT_RATE" envDefault:"5"`
	ConnectBurst      int           `env:"CONNECT_BURST" envDefault:"10"`

	// ProvidersFile is an optional TOML file with [google] and [facebook] credentials.
	ProvidersFile string `env:"PROVIDERS_FILE" envDefault:"providers.toml"`

	Google   ProviderCredentials `envPrefix:"GOOGLE_"`
	Facebook ProviderCredentials `envPrefix:"FACEBOOK_"`

	FacebookGraphURL string `env:"FACEBOOK_GRAPH_URL" envDefault:"https://graph.facebook.com"`
}

// ProviderCredentials is the {client_id, client_secret} pair an identity
// provider issued to this application.
type ProviderCredentials struct {
	ClientID     string `env:"CLIENT_ID" toml:"client_id"`
	ClientSecret string `env:"CLIENT_SECRET" toml:"client_secret"`
	RedirectURL  string `env:"REDIRECT_URL" toml:"redirect_url"`
}

// Configured reports whether the provider should be registered.
func (p ProviderCredentials) Configured() bool {
	return p.ClientID != ""
}

type providersFile struct {
	Google   ProviderCredentials `toml:"google"`
	Facebook ProviderCredentials `toml:"facebook"`
}

var (
	ErrUnknownDriver         = errors.New("config: unknown database driver")
	ErrUnknownSessionBackend = errors.New("config: unknown session backend")
	ErrMissingSessionSecret  = errors.New("config: session secret is required")
)

// Load reads the environment and then fills provider credentials that the
// environment left empty from ProvidersFile, if that file exists.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.mergeProvidersFile(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) mergeProvidersFile() error {
	if c.ProvidersFile == "" {
		return nil
	}

	if _, err := os.Stat(c.ProvidersFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var f providersFile
	if _, err := toml.DecodeFile(c.ProvidersFile, &f); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.ProvidersFile, err)
	}

	c.Google = merge(c.Google, f.Google)
	c.Facebook = merge(c.Facebook, f.Facebook)
	return nil
}

func merge(fromEnv, fromFile ProviderCredentials) ProviderCredentials {
	if fromEnv.ClientID == "" {
		fromEnv.ClientID = fromFile.ClientID
	}
	if fromEnv.ClientSecret == "" {
		fromEnv.ClientSecret = fromFile.ClientSecret
	}
	if fromEnv.RedirectURL == "" {
		fromEnv.RedirectURL = fromFile.RedirectURL
	}
	return fromEnv
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DatabaseDriver)
	}

	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSessionBackend, c.SessionBackend)
	}

	if c.SessionSecret == "" {
		return ErrMissingSessionSecret
	}

	return nil
}
