package users

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeeper/pagekeeper/internal/database"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()

	dbPath := "./test_users_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestCreateUser(t *testing.T) {
	t.Run("creates user with an empty profile", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		user, err := repo.CreateUser("reader", "reader@example.com")
		require.NoError(t, err)

		assert.Equal(t, entities.UserRoleUser, user.Role)

		profile, err := repo.GetProfile(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, profile.ReviewsWritten)
		assert.Equal(t, 0, profile.TotalPagesRead)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		_, err := repo.CreateUser("reader", "reader@example.com")
		require.NoError(t, err)

		_, err = repo.CreateUser("reader", "other@example.com")
		assert.Error(t, err)

		// The failed transaction must not leave an orphan profile
		var count int64
		require.NoError(t, db.DB.Model(&entities.UserProfile{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestGetUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	user, err := repo.CreateUser("reader", "reader@example.com")
	require.NoError(t, err)

	byID, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", byID.Username)

	byName, err := repo.GetUserByUsername("reader")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetUserByID(999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetUserByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	user, err := repo.CreateUser("reader", "reader@example.com")
	require.NoError(t, err)

	profile, err := repo.UpdateProfile(user.ID, "I read a lot.", "", "Fantasy", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "I read a lot.", profile.Bio)

	got, err := repo.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", got.FavoriteGenre)
	assert.Equal(t, "https://example.com", got.WebsiteURL)
}
