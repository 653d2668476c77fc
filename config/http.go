package config

import (
	"net"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"3000"`

	// CORSOrigins are the browser origins allowed to call the API
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
}

// Addr is the listen address
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

func (h *HTTPConfig) Sanitize() {
	h.Host = strings.TrimSpace(h.Host)

	origins := make([]string, 0, len(h.CORSOrigins))
	for _, origin := range h.CORSOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	h.CORSOrigins = origins
}

func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}
