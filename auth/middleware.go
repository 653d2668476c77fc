package auth

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-school/middleware/jwtware"
)

// ContextEnricherAdapter adapts jwtware.AuthClaims to AuthClaims and stores
// them in the standard context for downstream handlers
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// RevocationCheck rejects tokens whose id was revoked on logout. A store
// failure answers 503 and leaves the token untouched.
func RevocationCheck(store RevocationStore, logger Logger) jwtware.ValidationListener {
	logger = resolveLogger(logger)
	return func(c router.Context, claims jwtware.AuthClaims) error {
		if store == nil {
			return nil
		}

		revoked, err := store.IsRevoked(c.Context(), claims.TokenID())
		if err != nil {
			logger.Error("revocation lookup failed", "jti", claims.TokenID(), "error", err)
			return RevocationUnavailable(err)
		}

		if revoked {
			return ErrTokenRevoked
		}
		return nil
	}
}

// ProtectedRouteOption customizes the middleware built by ProtectedRoute
type ProtectedRouteOption func(*jwtware.Config)

// WithMinimumRole requires the role hierarchy level on the protected route
func WithMinimumRole(role UserRole) ProtectedRouteOption {
	return func(cfg *jwtware.Config) {
		cfg.MinimumRole = string(role)
	}
}

// WithValidationListeners appends listeners to the middleware
func WithValidationListeners(listeners ...jwtware.ValidationListener) ProtectedRouteOption {
	return func(cfg *jwtware.Config) {
		cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
	}
}

// WithErrorHandler overrides how rejected requests are answered
func WithErrorHandler(handler router.ErrorHandler) ProtectedRouteOption {
	return func(cfg *jwtware.Config) {
		cfg.ErrorHandler = handler
	}
}

// ProtectedRoute builds the JWT middleware for the given config
func ProtectedRoute(cfg Config, validator TokenValidator, opts ...ProtectedRouteOption) router.MiddlewareFunc {
	mwCfg := jwtware.Config{
		TokenValidator:  MiddlewareValidator(validator),
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		ContextEnricher: ContextEnricherAdapter,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&mwCfg)
		}
	}

	return jwtware.New(mwCfg)
}
