// Package engagement maintains per-user reading state: progress rows,
// favorites, reviews and book notes, together with the profile-level derived
// counters (total_pages_read, reviews_written).
//
// Every mutating operation runs as a single transaction over at most one
// (profile, progress) pair, so the counters stay consistent with the detail
// rows under concurrent requests for the same user.
//
// # Usage
//
//	repo := engagement.NewRepository(db)
//	progress, err := repo.SetPage(userID, bookID, 42)
package engagement

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

var (
	// ErrPageOutOfRange is returned when a page number falls outside
	// [0, book.page_count].
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrNotFound is returned when a referenced book, progress row or note
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when creating a row that would violate the
	// one-row-per-(user, book) constraint.
	ErrDuplicate = errors.New("record already exists")
)

// Repository handles all engagement database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new engagement repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// getProfile loads the profile owning the counters for a user.
func getProfile(tx *gorm.DB, userID uint) (*entities.UserProfile, error) {
	var profile entities.UserProfile
	err := tx.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func getBook(tx *gorm.DB, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := tx.First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}
