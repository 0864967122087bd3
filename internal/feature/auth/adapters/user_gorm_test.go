package adapters

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func timeRef(t time.Time) *time.Time {
	return &t
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{
			Name:         "Alice",
			Email:        "a@x.com",
			PasswordHash: "hashed_password",
		}

		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotEmpty(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("duplicate email error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user1 := &entity.User{Name: "Alice", Email: "duplicate@example.com", PasswordHash: "h1"}
		require.NoError(t, repo.Create(context.Background(), user1), "failed to create first user")

		// Same email, different user: the unique index must reject it.
		user2 := &entity.User{Name: "Mallory", Email: "duplicate@example.com", PasswordHash: "h2"}
		err := repo.Create(context.Background(), user2)

		assert.ErrorIs(t, err, usecase.ErrDuplicateAccount)

		var count int64
		db.Model(&entity.User{}).Where("email = ?", "duplicate@example.com").Count(&count)
		assert.EqualValues(t, 1, count, "exactly one user persists for the email")
	})

	t.Run("nil user error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	user := &entity.User{Name: "Alice", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(context.Background(), user))

	t.Run("existing user", func(t *testing.T) {
		got, err := repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
		assert.ErrorIs(t, err, usecase.ErrUnknownAccount)
	})
}

func TestUserGorm_FindByResetToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	holder := &entity.User{
		Name:               "Alice",
		Email:              "a@x.com",
		PasswordHash:       "h",
		ResetToken:         "tok-1",
		ResetTokenIssuedAt: timeRef(time.Now()),
	}
	require.NoError(t, repo.Create(context.Background(), holder))

	// A second user without a token must never match an empty lookup.
	require.NoError(t, repo.Create(context.Background(), &entity.User{
		Name: "Bob", Email: "b@x.com", PasswordHash: "h",
	}))

	t.Run("token holder found", func(t *testing.T) {
		got, err := repo.FindByResetToken(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, holder.ID, got.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := repo.FindByResetToken(context.Background(), "tok-2")
		assert.ErrorIs(t, err, usecase.ErrInvalidToken)
	})

	t.Run("empty token never matches", func(t *testing.T) {
		_, err := repo.FindByResetToken(context.Background(), "")
		assert.ErrorIs(t, err, usecase.ErrInvalidToken)
	})
}

func TestUserGorm_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	user := &entity.User{
		Name:               "Alice",
		Email:              "a@x.com",
		PasswordHash:       "old_hash",
		ResetToken:         "tok-1",
		ResetTokenIssuedAt: timeRef(time.Now()),
	}
	require.NoError(t, repo.Create(context.Background(), user))

	t.Run("clearing the reset token persists", func(t *testing.T) {
		user.PasswordHash = "new_hash"
		user.ResetToken = ""
		user.ResetTokenIssuedAt = nil
		require.NoError(t, repo.Save(context.Background(), user))

		got, err := repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "new_hash", got.PasswordHash)
		assert.Empty(t, got.ResetToken, "reset token must be cleared")

		_, err = repo.FindByResetToken(context.Background(), "tok-1")
		assert.ErrorIs(t, err, usecase.ErrInvalidToken, "consumed token must not resolve")
	})

	t.Run("saving an unknown user fails", func(t *testing.T) {
		ghost := &entity.User{ID: "missing", Name: "Ghost", Email: "g@x.com", PasswordHash: "x"}
		err := repo.Save(context.Background(), ghost)
		assert.ErrorIs(t, err, usecase.ErrUnknownAccount)
	})
}

// MySQL in its default strict mode rejects a zero time.Time, which the
// driver would encode as "0000-00-00". The absent issuance time must
// therefore reach the store as NULL, both on create and when a consumed
// token is cleared. SQLite accepts zero dates, so this asserts the raw
// column value rather than relying on the insert to fail.
func TestUserGorm_IssuedAtStoredAsNull(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	user := &entity.User{Name: "Alice", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(context.Background(), user))

	issuedAt := func() sql.NullTime {
		var v sql.NullTime
		row := db.Raw("SELECT reset_token_issued_at FROM users WHERE id = ?", user.ID).Row()
		require.NoError(t, row.Scan(&v))
		return v
	}

	t.Run("new user has NULL issuance time", func(t *testing.T) {
		assert.False(t, issuedAt().Valid, "expected NULL, got a stored time")
	})

	t.Run("clearing a token writes NULL back", func(t *testing.T) {
		user.ResetToken = "tok-1"
		user.ResetTokenIssuedAt = timeRef(time.Now())
		require.NoError(t, repo.Save(context.Background(), user))
		require.True(t, issuedAt().Valid, "issuance time not stored")

		user.ResetToken = ""
		user.ResetTokenIssuedAt = nil
		require.NoError(t, repo.Save(context.Background(), user))
		assert.False(t, issuedAt().Valid, "expected NULL after clearing the token")
	})
}
