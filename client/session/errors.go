package session

import (
	"fmt"

	"github.com/goliatone/go-errors"
)

// ErrMalformedToken is returned when the payload segment can not be decoded
var ErrMalformedToken = errors.New("malformed session token", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenExpired is returned when the exp claim is in the past
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrContextMisuse means the manager was read from a context that does
// not carry one
var ErrContextMisuse = errors.New("session manager used outside of its provider", errors.CategoryInternal).
	WithTextCode("CONTEXT_MISUSE")

func wrapMalformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedToken, err)
}
