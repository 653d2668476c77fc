package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config is the application configuration loaded from the environment.
//
// See the individual sections for the variables they read:
//   - HTTPConfig: server address and CORS
//   - DatabaseConfig: driver, DSN and seeding
//   - AuthConfig: JWT and password hashing
//   - LogConfig: level, format and file rotation
type Config struct {
	// Dev enables debug payload logging and the startup config dump
	Dev bool `env:"DEV" envDefault:"false"`

	HTTP     HTTPConfig
	Database DatabaseConfig
	Seed     SeedConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Log      LogConfig

	// PhoneRegion is used to parse teacher phone numbers without
	// a country calling code
	PhoneRegion string `env:"PHONE_REGION" envDefault:"US"`
}

// Load reads the optional dotenv files (".env" when none is given) and
// then parses, sanitizes and validates the environment
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg.finish()
}

// FromEnvironment builds the configuration from the given variables
// only, ignoring the process environment
func FromEnvironment(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg.finish()
}

func (c Config) finish() (Config, error) {
	c.Sanitize()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Sanitize applies guardrails to values loaded from the environment
func (c *Config) Sanitize() {
	c.HTTP.Sanitize()
	c.Database.Sanitize()
	c.Auth.Sanitize()
	c.Log.Sanitize()
	c.PhoneRegion = strings.ToUpper(strings.TrimSpace(c.PhoneRegion))
	c.detectDevMode()
}

func (c *Config) detectDevMode() {
	if !c.Dev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.Dev = appEnv == "development" || appEnv == "dev"
	}
}

// Validate checks the sanitized configuration
func (c Config) Validate() error {
	errs := validation.Errors{}

	if err := c.HTTP.Validate(); err != nil {
		errs["http"] = err
	}
	if err := c.Database.Validate(); err != nil {
		errs["database"] = err
	}
	if err := c.Auth.Validate(); err != nil {
		errs["auth"] = err
	}
	if err := c.Log.Validate(); err != nil {
		errs["log"] = err
	}
	if c.Seed.Enabled {
		if err := c.Seed.Validate(); err != nil {
			errs["seed"] = err
		}
	}

	return errs.Filter()
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	out := c
	out.Auth.SigningKey = mask(c.Auth.SigningKey)
	out.Seed.AdminPassword = mask(c.Seed.AdminPassword)
	out.Database.DSN = redactDSN(c.Database.DSN)
	out.Redis.URL = redactDSN(c.Redis.URL)
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// redactDSN hides the password of URL like DSNs
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}

	credentials := dsn[scheme+3 : at]
	if idx := strings.Index(credentials, ":"); idx >= 0 {
		credentials = credentials[:idx] + ":********"
	}
	return dsn[:scheme+3] + credentials + dsn[at:]
}

func clampBcryptCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
