package auth_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-school/auth"
)

// MockIdentity implements auth.Identity
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements auth.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if id, ok := args.Get(0).(auth.Identity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// testConfig implements auth.Config
type testConfig struct {
	key      string
	hours    int
	issuer   string
	audience []string
}

func newTestConfig() testConfig {
	return testConfig{
		key:      "test-signing-key",
		hours:    24,
		issuer:   "school-api",
		audience: []string{"school-web"},
	}
}

func (c testConfig) GetSigningKey() string    { return c.key }
func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetContextKey() string    { return "user" }
func (c testConfig) GetTokenExpiration() int  { return c.hours }
func (c testConfig) GetTokenLookup() string   { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string    { return "Bearer" }
func (c testConfig) GetIssuer() string        { return c.issuer }
func (c testConfig) GetAudience() []string    { return c.audience }

func newMockIdentity(id, name, email, role string) *MockIdentity {
	identity := &MockIdentity{}
	identity.On("ID").Return(id).Maybe()
	identity.On("Name").Return(name).Maybe()
	identity.On("Email").Return(email).Maybe()
	identity.On("Role").Return(role).Maybe()
	return identity
}

// MockRevocationStore implements auth.RevocationStore
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	args := m.Called(ctx, tokenID, until)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
