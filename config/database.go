package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// DatabaseConfig selects the SQL backend
type DatabaseConfig struct {
	// Driver is sqlite or postgres
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	// DSN for sqlite is a file path or URI, for postgres a connection URL
	DSN string `env:"DB_DSN" envDefault:"file:school.db?cache=shared"`
}

func (d DatabaseConfig) GetDriver() string { return d.Driver }
func (d DatabaseConfig) GetDSN() string    { return d.DSN }

func (d *DatabaseConfig) Sanitize() {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case "sqlite3":
		d.Driver = "sqlite"
	case "pg", "postgresql":
		d.Driver = "postgres"
	}
	d.DSN = strings.TrimSpace(d.DSN)
}

func (d DatabaseConfig) Validate() error {
	dsnRules := []validation.Rule{}
	if d.Driver == "postgres" {
		dsnRules = append(dsnRules, validation.Required)
	}

	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In("sqlite", "postgres")),
		validation.Field(&d.DSN, dsnRules...),
	)
}

// SeedConfig controls the bootstrap administrator account
type SeedConfig struct {
	Enabled       bool   `env:"DB_SEED" envDefault:"false"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@school.local"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func (s SeedConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.AdminEmail, validation.Required, is.Email),
		validation.Field(&s.AdminPassword, validation.Required, validation.Length(6, 100)),
	)
}

// RedisConfig enables the shared token revocation store
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// Enabled reports whether a redis URL was configured
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}
