package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	// File enables a rotated log file next to stdout
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

func (l LogConfig) GetLevel() string   { return l.Level }
func (l LogConfig) GetFormat() string  { return l.Format }
func (l LogConfig) GetFile() string    { return l.File }
func (l LogConfig) GetMaxSizeMB() int  { return l.MaxSizeMB }
func (l LogConfig) GetMaxBackups() int { return l.MaxBackups }
func (l LogConfig) GetMaxAgeDays() int { return l.MaxAgeDays }

func (l *LogConfig) Sanitize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "warning" {
		l.Level = "warn"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	l.File = strings.TrimSpace(l.File)
	if l.MaxSizeMB <= 0 {
		l.MaxSizeMB = 100
	}
	if l.MaxBackups < 0 {
		l.MaxBackups = 0
	}
	if l.MaxAgeDays < 0 {
		l.MaxAgeDays = 0
	}
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("json", "text")),
	)
}
