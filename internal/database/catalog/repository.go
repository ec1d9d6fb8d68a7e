// Package catalog provides database operations for books, authors and genres.
//
// This package implements the catalog store interfaces consumed by the HTTP
// controllers and the CSV importer.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	books, err := repo.SearchBooks("tolkien")
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

var (
	// ErrNotFound is returned when a book does not exist.
	ErrNotFound = errors.New("book not found")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book with its authors and genres.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Authors").Preload("Genres").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// SearchBooks performs a case-insensitive substring search against book titles
// and linked author names. An empty query yields no results, not all books.
func (r *Repository) SearchBooks(query string) ([]entities.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.Book{}, nil
	}

	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Distinct("books.*").
		Joins("LEFT JOIN book_authors ON book_authors.book_id = books.id").
		Joins("LEFT JOIN authors ON authors.id = book_authors.author_id").
		Where("LOWER(books.title) LIKE LOWER(?) OR LOWER(authors.name) LIKE LOWER(?)", pattern, pattern).
		Preload("Authors").Preload("Genres").
		Find(&books).Error
	return books, err
}

// PickRandom returns up to n random books for the homepage shelf.
func (r *Repository) PickRandom(n int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Authors").Preload("Genres").
		Order("RANDOM()").Limit(n).
		Find(&books).Error
	return books, err
}

// RandomGenres returns up to n random genres.
func (r *Repository) RandomGenres(n int) ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.Order("RANDOM()").Limit(n).Find(&genres).Error
	return genres, err
}

// GenreShelf returns up to n books belonging to the given genre.
func (r *Repository) GenreShelf(genreID uint, n int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Joins("JOIN book_genres ON book_genres.book_id = books.id").
		Where("book_genres.genre_id = ?", genreID).
		Preload("Authors").
		Limit(n).
		Find(&books).Error
	return books, err
}

// ResolveAuthors turns free-text author names into Author rows, creating any
// that do not exist yet. Idempotent per name; blank names are skipped.
func (r *Repository) ResolveAuthors(names []string) ([]entities.Author, error) {
	authors := make([]entities.Author, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var author entities.Author
		err := r.db.Where("name = ?", name).
			FirstOrCreate(&author, entities.Author{Name: name}).Error
		if err != nil {
			return nil, fmt.Errorf("resolve author %q: %w", name, err)
		}
		authors = append(authors, author)
	}
	return authors, nil
}

// ResolveGenres turns free-text genre names into Genre rows, creating any that
// do not exist yet. Idempotent per name; blank names are skipped.
func (r *Repository) ResolveGenres(names []string) ([]entities.Genre, error) {
	genres := make([]entities.Genre, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var genre entities.Genre
		err := r.db.Where("name = ?", name).
			FirstOrCreate(&genre, entities.Genre{Name: name}).Error
		if err != nil {
			return nil, fmt.Errorf("resolve genre %q: %w", name, err)
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

// CreateBook saves a new book, resolving comma-separated author and genre
// names into linked rows. If a book with the same title already exists
// (case-insensitive), the existing book is returned and created is false.
func (r *Repository) CreateBook(book *entities.Book, authorNames, genreNames []string) (*entities.Book, bool, error) {
	// A pointer to a blank string would still collide on the unique index
	if book.ISBN != nil {
		book.ISBN = entities.NormalizeISBN(*book.ISBN)
	}

	var existing entities.Book
	err := r.db.Where("LOWER(title) = LOWER(?)", book.Title).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	authors, err := r.ResolveAuthors(authorNames)
	if err != nil {
		return nil, false, err
	}
	genres, err := r.ResolveGenres(genreNames)
	if err != nil {
		return nil, false, err
	}
	book.Authors = authors
	book.Genres = genres

	if err := r.db.Create(book).Error; err != nil {
		return nil, false, fmt.Errorf("create book: %w", err)
	}
	return book, true, nil
}

// UpdateBook applies a catalog edit. Author and genre names replace the
// existing associations when provided.
func (r *Repository) UpdateBook(book *entities.Book, authorNames, genreNames []string) error {
	if authorNames != nil {
		authors, err := r.ResolveAuthors(authorNames)
		if err != nil {
			return err
		}
		if err := r.db.Model(book).Association("Authors").Replace(authors); err != nil {
			return fmt.Errorf("replace authors: %w", err)
		}
	}
	if genreNames != nil {
		genres, err := r.ResolveGenres(genreNames)
		if err != nil {
			return err
		}
		if err := r.db.Model(book).Association("Genres").Replace(genres); err != nil {
			return fmt.Errorf("replace genres: %w", err)
		}
	}
	return r.db.Save(book).Error
}

// SetLocalImage records the locally cached cover path for a book.
func (r *Repository) SetLocalImage(bookID uint, path string) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", bookID).
		Update("image_local", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BooksMissingLocalImage lists books that have a remote cover URL but no
// cached local copy yet. Used by the cover fetch task.
func (r *Repository) BooksMissingLocalImage() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("image_url <> '' AND (image_local IS NULL OR image_local = '')").
		Find(&books).Error
	return books, err
}

// CountBooks returns the total number of books in the catalog.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
