package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

func TestCreateNote(t *testing.T) {
	t.Run("stores a note per book and user", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "reader")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		note := &entities.BookNote{
			BookID:        book.ID,
			UserID:        user.ID,
			Thoughts:      "Spice is everything.",
			OverallRating: 5,
		}
		require.NoError(t, repo.CreateNote(note))

		got, err := repo.GetNote(user.ID, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Spice is everything.", got.Thoughts)
		assert.Equal(t, 5, got.OverallRating)
	})

	t.Run("rejects a second note for the same book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "reader")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		require.NoError(t, repo.CreateNote(&entities.BookNote{BookID: book.ID, UserID: user.ID}))

		err := repo.CreateNote(&entities.BookNote{BookID: book.ID, UserID: user.ID})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("different users may note the same book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		alice := createTestUser(t, db, "alice")
		bob := createTestUser(t, db, "bob")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		require.NoError(t, repo.CreateNote(&entities.BookNote{BookID: book.ID, UserID: alice.ID}))
		require.NoError(t, repo.CreateNote(&entities.BookNote{BookID: book.ID, UserID: bob.ID}))
	})
}

func TestUpdateNote(t *testing.T) {
	t.Run("rewrites the note contents", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := createTestUser(t, db, "reader")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		note := &entities.BookNote{BookID: book.ID, UserID: user.ID, Thoughts: "First pass."}
		require.NoError(t, repo.CreateNote(note))

		note.Thoughts = "Second pass."
		note.PlotRating = 4
		require.NoError(t, repo.UpdateNote(note))

		got, err := repo.GetNote(user.ID, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second pass.", got.Thoughts)
		assert.Equal(t, 4, got.PlotRating)
	})

	t.Run("cannot touch another user's note", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		alice := createTestUser(t, db, "alice")
		bob := createTestUser(t, db, "bob")
		book := createTestBook(t, db, "Dune", 412)
		repo := NewRepository(db.DB)

		note := &entities.BookNote{BookID: book.ID, UserID: alice.ID}
		require.NoError(t, repo.CreateNote(note))

		_, err := repo.GetNoteByID(bob.ID, note.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListNotes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "reader")
	first := createTestBook(t, db, "Dune", 412)
	second := createTestBook(t, db, "Hyperion", 482)
	repo := NewRepository(db.DB)

	require.NoError(t, repo.CreateNote(&entities.BookNote{BookID: first.ID, UserID: user.ID}))
	require.NoError(t, repo.CreateNote(&entities.BookNote{BookID: second.ID, UserID: user.ID}))

	notes, err := repo.ListNotes(user.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}
