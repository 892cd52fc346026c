package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/marketplace/internal/errors"
	"github.com/allisson/marketplace/internal/testutil"
	"github.com/allisson/marketplace/internal/user/domain"
)

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "jane.doe",
		Email:    "jane@example.com",
		Password: "hashed_password",
	}

	err := repo.Create(ctx, user)
	assert.NoError(t, err)

	createdUser, err := repo.GetByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, createdUser.ID)
	assert.Equal(t, user.Username, createdUser.Username)
	assert.Equal(t, user.Email, createdUser.Email)
	assert.Equal(t, user.Password, createdUser.Password)
	assert.False(t, createdUser.CreatedAt.IsZero())
	assert.False(t, createdUser.UpdatedAt.IsZero())
}

func TestPostgreSQLUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "jane.doe",
		Email:    "jane@example.com",
		Password: "hashed_password",
	}
	require.NoError(t, repo.Create(ctx, user))

	duplicate := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "another.name",
		Email:    "jane@example.com",
		Password: "hashed_password",
	}

	err := repo.Create(ctx, duplicate)
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, domain.ErrUserAlreadyExists))
}

func TestPostgreSQLUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)

	user, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "jane.doe",
		Email:    "jane@example.com",
		Password: "hashed_password",
	}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.GetByEmail(ctx, "jane@example.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
}

func TestPostgreSQLUserRepository_GetByUsername(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "jane.doe",
		Email:    "jane@example.com",
		Password: "hashed_password",
	}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.GetByUsername(ctx, "jane.doe")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByUsername(ctx, "missing")
	assert.True(t, apperrors.Is(err, domain.ErrUserNotFound))
}
