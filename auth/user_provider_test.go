package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-school/auth"
)

func init() {
	auth.SetPasswordHashCost(bcrypt.MinCost)
}

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()
	mockTracker := new(MockUserTracker)

	provider := auth.NewUserProvider(mockTracker)

	t.Run("Successful verification", func(t *testing.T) {
		userID := uuid.New()
		passwordHash, _ := auth.HashPassword("password123")
		user := &auth.User{
			ID:           userID,
			Name:         "Test User",
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleAdmin,
		}

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)
		assert.Equal(t, userID.String(), identity.ID())
		assert.Equal(t, "Test User", identity.Name())
		assert.Equal(t, "test@example.com", identity.Email())
		assert.Equal(t, string(auth.RoleAdmin), identity.Role())

		mockTracker.AssertExpectations(t)
	})

	t.Run("Invalid password", func(t *testing.T) {
		passwordHash, _ := auth.HashPassword("correct_password")
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleAdmin,
		}

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackAttemptedLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})

	t.Run("User not found looks like bad credentials", func(t *testing.T) {
		mockTracker.On("GetByIdentifier", ctx, "nonexistent@example.com").
			Return(nil, sql.ErrNoRows).Once()

		identity, err := provider.VerifyIdentity(ctx, "nonexistent@example.com", "password123")

		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Store failure", func(t *testing.T) {
		mockTracker.On("GetByIdentifier", ctx, "broken@example.com").
			Return(nil, errors.New("connection reset")).Once()

		identity, err := provider.VerifyIdentity(ctx, "broken@example.com", "password123")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Too many login attempts", func(t *testing.T) {
		passwordHash, _ := auth.HashPassword("password123")
		now := time.Now()
		user := &auth.User{
			ID:             uuid.New(),
			Email:          "test@example.com",
			PasswordHash:   passwordHash,
			Role:           auth.RoleAdmin,
			LoginAttempts:  auth.MaxLoginAttempts,
			LoginAttemptAt: &now,
		}

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Equal(t, auth.ErrTooManyLoginAttempts, err)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})

	t.Run("Login attempts cooldown expired", func(t *testing.T) {
		userID := uuid.New()
		passwordHash, _ := auth.HashPassword("password123")
		oldAttempt := time.Now().Add(-48 * time.Hour)
		user := &auth.User{
			ID:             userID,
			Email:          "test@example.com",
			PasswordHash:   passwordHash,
			Role:           auth.RoleAdmin,
			LoginAttempts:  auth.MaxLoginAttempts + 1,
			LoginAttemptAt: &oldAttempt,
		}

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, mock.MatchedBy(func(u *auth.User) bool {
			return u.ID == userID && u.LoginAttempts == 0
		})).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.Equal(t, userID.String(), identity.ID())

		mockTracker.AssertExpectations(t)
	})

	t.Run("Invalid role", func(t *testing.T) {
		passwordHash, _ := auth.HashPassword("password123")
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         auth.UserRole("superuser"),
		}

		mockTracker.On("GetByIdentifier", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.Contains(t, err.Error(), "invalid role")

		mockTracker.AssertExpectations(t)
	})
}

func TestUserProviderFindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()
	mockTracker := new(MockUserTracker)

	provider := auth.NewUserProvider(mockTracker).WithLogger(nil)

	t.Run("User found", func(t *testing.T) {
		userID := uuid.New()
		user := &auth.User{
			ID:    userID,
			Name:  "Test User",
			Email: "test@example.com",
			Role:  auth.RoleMember,
		}

		mockTracker.On("GetByIdentifier", ctx, userID.String()).Return(user, nil).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, userID.String())

		assert.NoError(t, err)
		assert.Equal(t, userID.String(), identity.ID())
		assert.Equal(t, "member", identity.Role())

		mockTracker.AssertExpectations(t)
	})

	t.Run("User not found", func(t *testing.T) {
		mockTracker.On("GetByIdentifier", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "missing")

		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})
}
