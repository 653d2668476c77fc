package auth

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenRevoked       = "TOKEN_REVOKED"
	TextCodeTokenMissing       = "TOKEN_MISSING"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
	TextCodeEmailExists        = "EMAIL_EXISTS"
	TextCodeInvalidRole        = "INVALID_ROLE"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeValidation         = "VALIDATION_ERROR"
	TextCodeRevocationDown     = "REVOCATION_UNAVAILABLE"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword is returned for any credential failure so
// callers cannot tell unknown emails from wrong passwords.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned while an account is cooling down
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts, try again later", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(http.StatusTooManyRequests)

// ErrNoEmptyString empty passwords are never hashed
var ErrNoEmptyString = goerrors.New("password can not be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired token exp claim is in the past
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed token could not be parsed or its signature is invalid
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenRevoked token was invalidated by a logout
var ErrTokenRevoked = goerrors.New("token has been revoked", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMissing request carried no bearer credential
var ErrTokenMissing = goerrors.New("missing or malformed JWT", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to get claims from a validated token
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailAlreadyExists registration with a taken email
var ErrEmailAlreadyExists = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeConflict)

// ErrForbidden authenticated but not allowed
var ErrForbidden = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// RevocationUnavailable wraps a revocation store failure as a 503
func RevocationUnavailable(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "token revocation lookup unavailable").
		WithTextCode(TextCodeRevocationDown).
		WithCode(http.StatusServiceUnavailable)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) || errors.Is(err, jwt.ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) || errors.Is(err, jwt.ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// Forbidden returns a copy of ErrForbidden scoped to the given action
func Forbidden(resource, permission string) error {
	clone := ErrForbidden.Clone()
	if clone == nil {
		return ErrForbidden
	}
	return clone.WithMetadata(map[string]any{
		"resource":   resource,
		"permission": permission,
	})
}
