package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-school/auth"
)

func TestNewTokenService(t *testing.T) {
	signingKey := []byte("test-signing-key")
	audience := jwt.ClaimStrings{"test-audience"}

	t.Run("creates token service with logger", func(t *testing.T) {
		service := auth.NewTokenService(signingKey, 24, "test-issuer", audience, &MockLogger{})
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := auth.NewTokenService(signingKey, 24, "test-issuer", audience, nil)
		assert.NotNil(t, service)
	})
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	service := auth.NewTokenService([]byte("secret"), 2, "school-api", jwt.ClaimStrings{"school-web"}, nil)
	identity := newMockIdentity("user-1", "Ada Lovelace", "ada@example.com", string(auth.RoleAdmin))

	token, err := service.Generate(identity, map[string]string{"courses": string(auth.RoleOwner)})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject())
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "admin", claims.Role())
	assert.Equal(t, "ada@example.com", claims.Email())
	assert.Equal(t, "Ada Lovelace", claims.Name())
	assert.NotEmpty(t, claims.TokenID())
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.Expires(), 5*time.Second)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), 5*time.Second)
	assert.True(t, claims.CanDelete("courses"))
	assert.False(t, claims.CanDelete("students"))
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	service := auth.NewTokenService([]byte("secret"), 1, "", nil, nil)
	identity := newMockIdentity("user-1", "Ada", "ada@example.com", "guest")

	first, err := service.Generate(identity, nil)
	require.NoError(t, err)
	second, err := service.Generate(identity, nil)
	require.NoError(t, err)

	c1, err := service.Validate(first)
	require.NoError(t, err)
	c2, err := service.Validate(second)
	require.NoError(t, err)

	assert.NotEqual(t, c1.TokenID(), c2.TokenID())
}

func TestTokenService_ValidateFailures(t *testing.T) {
	identity := newMockIdentity("user-1", "Ada", "ada@example.com", "guest")
	service := auth.NewTokenService([]byte("secret"), 1, "school-api", jwt.ClaimStrings{"school-web"}, nil)

	t.Run("expired", func(t *testing.T) {
		past := auth.NewTokenService([]byte("secret"), 1, "school-api", jwt.ClaimStrings{"school-web"}, nil).
			WithClock(func() time.Time { return time.Now().Add(-3 * time.Hour) })
		token, err := past.Generate(identity, nil)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("other"), 1, "school-api", jwt.ClaimStrings{"school-web"}, nil)
		token, err := other.Generate(identity, nil)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService([]byte("secret"), 1, "someone-else", jwt.ClaimStrings{"school-web"}, nil)
		token, err := other.Generate(identity, nil)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := auth.NewTokenService([]byte("secret"), 1, "school-api", jwt.ClaimStrings{"mobile"}, nil)
		token, err := other.Generate(identity, nil)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = service.Validate(signed)
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	})
}

func TestTokenService_SignClaimsNil(t *testing.T) {
	service := auth.NewTokenService([]byte("secret"), 1, "", nil, nil)
	_, err := service.SignClaims(nil)
	assert.Error(t, err)

	_, err = service.Generate(nil, nil)
	assert.Error(t, err)
}
