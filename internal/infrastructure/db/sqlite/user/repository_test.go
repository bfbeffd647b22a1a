package user

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/db/sqlite"
)

func domainUser(email, name string, hash *string) domain.User {
	return domain.User{Email: email, Name: name, PasswordHash: hash}
}

func newRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sqlite.New(zap.NewNop(), filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)

	repo, err := NewRepository(db)
	require.NoError(t, err)

	return repo.(*Repository)
}

func TestRepository_CreateAndFetch(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	hash := "$2a$10$fakehash"
	created, err := r.CreateUser(ctx, domainUser("alice@example.com", "Alice", &hash))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, [16]byte{}, [16]byte(created.UUID))

	byEmail, err := r.FetchUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.UUID, byEmail.UUID)
	require.NotNil(t, byEmail.PasswordHash)
	assert.Equal(t, hash, *byEmail.PasswordHash)

	byUUID, err := r.FetchUserByUUID(ctx, created.UUID)
	require.NoError(t, err)
	require.NotNil(t, byUUID)
	assert.Equal(t, "Alice", byUUID.Name)
}

func TestRepository_DuplicateEmail(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.CreateUser(ctx, domainUser("bob@example.com", "Bob", nil))
	require.NoError(t, err)

	_, err = r.CreateUser(ctx, domainUser("bob@example.com", "Bobby", nil))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRepository_FetchMissing(t *testing.T) {
	r := newRepo(t)

	u, err := r.FetchUserByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}
