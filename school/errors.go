package school

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	TextCodeNotFound   = "RECORD_NOT_FOUND"
	TextCodeConflict   = "RECORD_EXISTS"
	TextCodeBadRequest = "BAD_REQUEST"
)

// ErrRecordNotFound is returned when a course, student or teacher is missing
var ErrRecordNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrRecordExists is returned when a unique column is already taken
var ErrRecordExists = goerrors.New("a record with the same email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeConflict).
	WithCode(goerrors.CodeConflict)

func notFound(resource, id string) error {
	clone := ErrRecordNotFound.Clone()
	if clone == nil {
		return ErrRecordNotFound
	}
	clone.Message = strings.TrimSuffix(resource, "s") + " not found"
	return clone.WithMetadata(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

// IsNotFound reports whether err is a missing school record
func IsNotFound(err error) bool {
	var richErr *goerrors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeNotFound
	}
	return false
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
