package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

func TestPostReview(t *testing.T) {
	t.Run("recounts reviews_written", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		first := createTestBook(t, db, "Dune", 412)
		second := createTestBook(t, db, "Hyperion", 482)
		repo := NewRepository(db.DB)

		review, err := repo.PostReview(user.ID, first.ID, "A classic.")
		require.NoError(t, err)
		assert.False(t, review.Publish.IsZero())
		assert.Equal(t, 1, profileFor(t, db, user.ID).ReviewsWritten)

		_, err = repo.PostReview(user.ID, second.ID, "Also great.")
		require.NoError(t, err)
		assert.Equal(t, 2, profileFor(t, db, user.ID).ReviewsWritten)
	})

	t.Run("allows several reviews of the same book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		_, err := repo.PostReview(user.ID, book.ID, "First impression.")
		require.NoError(t, err)
		_, err = repo.PostReview(user.ID, book.ID, "On re-read.")
		require.NoError(t, err)

		assert.Equal(t, 2, profileFor(t, db, user.ID).ReviewsWritten)
	})

	t.Run("rejects unknown book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		repo := NewRepository(db.DB)

		_, err := repo.PostReview(user.ID, 999, "Ghost review.")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPromoteIfEligible(t *testing.T) {
	t.Run("rejects below the threshold", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		_, err := repo.PostReview(user.ID, book.ID, "One down.")
		require.NoError(t, err)

		outcome, err := repo.PromoteIfEligible(user.ID)
		require.NoError(t, err)

		assert.False(t, outcome.Promoted)
		assert.Equal(t, 1, outcome.Remaining)
		assert.Equal(t, "Sorry, you need to write 1 more reviews to become a reviewer.", outcome.Message)

		var refreshed entities.User
		require.NoError(t, db.DB.First(&refreshed, user.ID).Error)
		assert.False(t, refreshed.IsReviewer)
	})

	t.Run("promotes at the threshold", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		first := createTestBook(t, db, "Dune", 412)
		second := createTestBook(t, db, "Hyperion", 482)
		repo := NewRepository(db.DB)

		_, err := repo.PostReview(user.ID, first.ID, "One.")
		require.NoError(t, err)
		_, err = repo.PostReview(user.ID, second.ID, "Two.")
		require.NoError(t, err)

		outcome, err := repo.PromoteIfEligible(user.ID)
		require.NoError(t, err)

		assert.True(t, outcome.Promoted)
		assert.Equal(t, "Congratulations! You are now a reviewer.", outcome.Message)

		var refreshed entities.User
		require.NoError(t, db.DB.First(&refreshed, user.ID).Error)
		assert.True(t, refreshed.IsReviewer)
	})

	t.Run("already promoted users stay promoted", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		first := createTestBook(t, db, "Dune", 412)
		second := createTestBook(t, db, "Hyperion", 482)
		repo := NewRepository(db.DB)

		_, err := repo.PostReview(user.ID, first.ID, "One.")
		require.NoError(t, err)
		_, err = repo.PostReview(user.ID, second.ID, "Two.")
		require.NoError(t, err)

		_, err = repo.PromoteIfEligible(user.ID)
		require.NoError(t, err)

		outcome, err := repo.PromoteIfEligible(user.ID)
		require.NoError(t, err)
		assert.True(t, outcome.Promoted)
	})
}

func TestRecountProfiles(t *testing.T) {
	t.Run("repairs drifted counters", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		_, err := repo.SetPage(user.ID, book.ID, 100)
		require.NoError(t, err)
		_, err = repo.PostReview(user.ID, book.ID, "Solid.")
		require.NoError(t, err)

		// Corrupt the counters directly
		require.NoError(t, db.DB.Model(&entities.UserProfile{}).
			Where("user_id = ?", user.ID).
			Updates(map[string]any{"total_pages_read": 999, "reviews_written": 42}).Error)

		_, err = repo.RecountProfiles()
		require.NoError(t, err)

		profile := profileFor(t, db, user.ID)
		assert.Equal(t, 100, profile.TotalPagesRead)
		assert.Equal(t, 1, profile.ReviewsWritten)
	})

	t.Run("is a no-op on a correct database", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "critic")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		_, err := repo.SetPage(user.ID, book.ID, 100)
		require.NoError(t, err)

		_, err = repo.RecountProfiles()
		require.NoError(t, err)

		assert.Equal(t, 100, profileFor(t, db, user.ID).TotalPagesRead)
	})
}
