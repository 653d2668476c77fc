package auth

import (
	"context"
	"reflect"
)

// ResourceRoleProvider returns per resource roles that are embedded in
// the session token next to the global role
type ResourceRoleProvider interface {
	FindResourceRoles(ctx context.Context, identity Identity) (map[string]string, error)
}

type noopResourceRoleProvider struct{}

func (noopResourceRoleProvider) FindResourceRoles(context.Context, Identity) (map[string]string, error) {
	return nil, nil
}

type Auther struct {
	provider     IdentityProvider
	roleProvider ResourceRoleProvider
	logger       Logger
	tokenService TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	logger := defLogger()
	return &Auther{
		provider:     provider,
		roleProvider: noopResourceRoleProvider{},
		logger:       logger,
		tokenService: NewTokenService(
			[]byte(opts.GetSigningKey()),
			opts.GetTokenExpiration(),
			opts.GetIssuer(),
			opts.GetAudience(),
			logger,
		),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = resolveLogger(logger)
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		ts.logger = s.logger
	}
	return s
}

// WithResourceRoleProvider enables resource level permissions in tokens
func (s *Auther) WithResourceRoleProvider(provider ResourceRoleProvider) *Auther {
	if provider != nil {
		s.roleProvider = provider
	}
	return s
}

// WithTokenService replaces the token service used to sign and validate
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed token with the
// identity it was issued for
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Warn("login verify identity error", "identifier", identifier, "error", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("login identity is nil or zero value", "identifier", identifier)
		return "", nil, ErrIdentityNotFound
	}

	resourceRoles, err := s.roleProvider.FindResourceRoles(ctx, identity)
	if err != nil {
		s.logger.Error("login failed to fetch resource roles", "error", err)
		return "", nil, err
	}

	token, err := s.tokenService.Generate(identity, resourceRoles)
	if err != nil {
		s.logger.Error("login failed to generate token", "error", err)
		return "", nil, err
	}

	s.logger.Info("login success", "user_id", identity.ID())

	return token, identity, nil
}

// IdentityFromClaims resolves the current identity for validated claims
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("identity from claims lookup failed", "user_id", claims.UserID(), "error", err)
		return nil, err
	}

	return identity, nil
}
