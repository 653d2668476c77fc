package school

import (
	"log/slog"

	"github.com/goliatone/go-school/auth"
)

func defLogger() auth.Logger {
	return slog.Default().With("module", "school")
}
