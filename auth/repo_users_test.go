package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-school/auth"
	"github.com/goliatone/go-school/persistence"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := persistence.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUsersRepositoryRegister(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	created, err := users.Register(ctx, &auth.User{
		Name:         "Ada Lovelace",
		Email:        "  Ada@Example.com ",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "ada", created.Username)
	assert.Equal(t, auth.RoleGuest, created.Role)
	assert.NotNil(t, created.CreatedAt)

	_, err = users.Register(ctx, &auth.User{
		Name:         "Impostor",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}

func TestUsersRepositoryGetByIdentifier(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	created, err := users.Register(ctx, &auth.User{
		Name:         "Grace Hopper",
		Email:        "grace@example.com",
		Username:     "ghopper",
		PasswordHash: "hash",
		Role:         auth.RoleAdmin,
	})
	require.NoError(t, err)

	for _, identifier := range []string{created.ID.String(), "GRACE@example.com", "ghopper"} {
		found, err := users.GetByIdentifier(ctx, identifier)
		require.NoError(t, err, identifier)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, auth.RoleAdmin, found.Role)
	}

	_, err = users.GetByIdentifier(ctx, "nobody@example.com")
	assert.Error(t, err)
}

func TestUsersRepositoryTracking(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	user, err := users.Register(ctx, &auth.User{
		Name:         "Alan Turing",
		Email:        "alan@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	require.NoError(t, users.TrackAttemptedLogin(ctx, user))
	require.NoError(t, users.TrackAttemptedLogin(ctx, user))

	found, err := users.GetByIdentifier(ctx, "alan@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, found.LoginAttempts)
	assert.NotNil(t, found.LoginAttemptAt)
	assert.Equal(t, "Alan Turing", found.Name)

	require.NoError(t, users.TrackSuccessfulLogin(ctx, found))

	found, err = users.GetByIdentifier(ctx, "alan@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, found.LoginAttempts)
	assert.Nil(t, found.LoginAttemptAt)
	assert.NotNil(t, found.LoggedInAt)
}

func TestUsersRepositoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	users := auth.NewUsersRepository(newTestDB(t))

	first, err := users.GetOrCreate(ctx, &auth.User{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Role:         auth.RoleOwner,
	})
	require.NoError(t, err)

	second, err := users.GetOrCreate(ctx, &auth.User{
		Name:         "Someone else",
		Email:        "admin@example.com",
		PasswordHash: "other",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, auth.RoleOwner, second.Role)
}

func TestRepositoryManager(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))
	require.NoError(t, repo.Validate())

	err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := repo.Users().RegisterTx(ctx, tx, &auth.User{
			Name:         "Tx User",
			Email:        "tx@example.com",
			PasswordHash: "hash",
		})
		return err
	})
	require.NoError(t, err)

	_, err = repo.Users().GetByIdentifier(ctx, "tx@example.com")
	assert.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = repo.RunInTx(cancelled, nil, func(context.Context, bun.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
