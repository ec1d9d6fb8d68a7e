package catalog

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

	dbPath := "./test_catalog_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestCreateBook(t *testing.T) {
	t.Run("links authors and genres", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		book := &entities.Book{Title: "The Fellowship of the Ring", PageCount: 423}

		created, isNew, err := repo.CreateBook(book,
			[]string{"J.R.R. Tolkien"}, []string{"Fantasy"})
		require.NoError(t, err)
		assert.True(t, isNew)

		got, err := repo.GetBookByID(created.ID)
		require.NoError(t, err)
		require.Len(t, got.Authors, 1)
		assert.Equal(t, "J.R.R. Tolkien", got.Authors[0].Name)
		require.Len(t, got.Genres, 1)
		assert.Equal(t, "Fantasy", got.Genres[0].Name)
	})

	t.Run("duplicate title returns the existing book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)

		first, isNew, err := repo.CreateBook(&entities.Book{Title: "Dune"}, nil, nil)
		require.NoError(t, err)
		require.True(t, isNew)

		// Case-insensitive match
		second, isNew, err := repo.CreateBook(&entities.Book{Title: "DUNE"}, nil, nil)
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, first.ID, second.ID)

		count, err := repo.CountBooks()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("allows multiple books without an ISBN", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)

		first, isNew, err := repo.CreateBook(&entities.Book{Title: "Dune", PageCount: 412}, nil, nil)
		require.NoError(t, err)
		require.True(t, isNew)
		assert.Nil(t, first.ISBN)

		second, isNew, err := repo.CreateBook(&entities.Book{Title: "Hyperion", PageCount: 482}, nil, nil)
		require.NoError(t, err)
		require.True(t, isNew)
		assert.Nil(t, second.ISBN)

		// A blank ISBN stores as NULL too, not as an empty string
		blank := ""
		third, isNew, err := repo.CreateBook(&entities.Book{Title: "Blindsight", ISBN: &blank}, nil, nil)
		require.NoError(t, err)
		require.True(t, isNew)
		assert.Nil(t, third.ISBN)

		withISBN, isNew, err := repo.CreateBook(
			&entities.Book{Title: "Ubik", ISBN: entities.NormalizeISBN("9780547572291")}, nil, nil)
		require.NoError(t, err)
		require.True(t, isNew)
		require.NotNil(t, withISBN.ISBN)
		assert.Equal(t, "9780547572291", *withISBN.ISBN)
	})

	t.Run("reuses existing authors", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)

		_, _, err := repo.CreateBook(&entities.Book{Title: "Dune"}, []string{"Frank Herbert"}, nil)
		require.NoError(t, err)
		_, _, err = repo.CreateBook(&entities.Book{Title: "Dune Messiah"}, []string{"Frank Herbert"}, nil)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.DB.Model(&entities.Author{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestSearchBooks(t *testing.T) {
	t.Run("empty query yields no results", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		_, _, err := repo.CreateBook(&entities.Book{Title: "Dune"}, nil, nil)
		require.NoError(t, err)

		books, err := repo.SearchBooks("")
		require.NoError(t, err)
		assert.Empty(t, books)

		books, err = repo.SearchBooks("   ")
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("matches title substrings case-insensitively", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		_, _, err := repo.CreateBook(&entities.Book{Title: "The Left Hand of Darkness"}, nil, nil)
		require.NoError(t, err)
		_, _, err = repo.CreateBook(&entities.Book{Title: "Dune"}, nil, nil)
		require.NoError(t, err)

		books, err := repo.SearchBooks("darkness")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "The Left Hand of Darkness", books[0].Title)
	})

	t.Run("matches author names", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		_, _, err := repo.CreateBook(&entities.Book{Title: "Dune"}, []string{"Frank Herbert"}, nil)
		require.NoError(t, err)

		books, err := repo.SearchBooks("herbert")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)
	})

	t.Run("no match yields empty slice", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db.DB)
		books, err := repo.SearchBooks("nonexistent")
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestGenreShelf(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	_, _, err := repo.CreateBook(&entities.Book{Title: "Dune"}, nil, []string{"Space Opera"})
	require.NoError(t, err)
	_, _, err = repo.CreateBook(&entities.Book{Title: "Emma"}, nil, []string{"Classic"})
	require.NoError(t, err)

	genres, err := repo.ResolveGenres([]string{"Space Opera"})
	require.NoError(t, err)
	require.Len(t, genres, 1)

	books, err := repo.GenreShelf(genres[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestUpdateBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	book, _, err := repo.CreateBook(&entities.Book{Title: "Dune", PageCount: 400},
		[]string{"F. Herbert"}, nil)
	require.NoError(t, err)

	book.PageCount = 412
	require.NoError(t, repo.UpdateBook(book, []string{"Frank Herbert"}, []string{"Science Fiction"}))

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 412, got.PageCount)
	require.Len(t, got.Authors, 1)
	assert.Equal(t, "Frank Herbert", got.Authors[0].Name)
	require.Len(t, got.Genres, 1)
}

func TestSetLocalImage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db.DB)
	book, _, err := repo.CreateBook(&entities.Book{
		Title:    "Dune",
		ImageURL: "https://example.com/dune.jpg",
	}, nil, nil)
	require.NoError(t, err)

	missing, err := repo.BooksMissingLocalImage()
	require.NoError(t, err)
	require.Len(t, missing, 1)

	require.NoError(t, repo.SetLocalImage(book.ID, "/covers/cover_1_abc.jpg"))

	missing, err = repo.BooksMissingLocalImage()
	require.NoError(t, err)
	assert.Empty(t, missing)

	assert.ErrorIs(t, repo.SetLocalImage(999, "x"), ErrNotFound)
}
