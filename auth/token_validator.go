package auth

import (
	"github.com/goliatone/go-school/middleware/jwtware"
)

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(tokenString)
}

// MiddlewareValidator exposes a TokenValidator to the jwtware middleware
func MiddlewareValidator(v TokenValidator) jwtware.TokenValidator {
	return middlewareValidator{validator: v}
}

type middlewareValidator struct {
	validator TokenValidator
}

func (m middlewareValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if m.validator == nil {
		return nil, ErrUnableToDecodeSession
	}
	claims, err := m.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
