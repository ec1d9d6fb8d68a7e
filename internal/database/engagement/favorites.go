package engagement

import (
	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// ToggleFavorite flips the favorite pairing between a user's profile and a
// book. Returns true when the book is now a favorite, false when the pairing
// was removed. No counters depend on favorites.
func (r *Repository) ToggleFavorite(userID, bookID uint) (bool, error) {
	var isFavorite bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		profile, err := getProfile(tx, userID)
		if err != nil {
			return err
		}
		book, err := getBook(tx, bookID)
		if err != nil {
			return err
		}

		var count int64
		err = tx.Table("book_favorites").
			Where("user_profile_id = ? AND book_id = ?", profile.ID, book.ID).
			Count(&count).Error
		if err != nil {
			return err
		}

		assoc := tx.Model(profile).Association("FavoriteBooks")
		if count > 0 {
			isFavorite = false
			return assoc.Delete(book)
		}
		isFavorite = true
		return assoc.Append(book)
	})
	return isFavorite, err
}

// IsFavorite reports whether a book is in the user's favorites.
func (r *Repository) IsFavorite(userID, bookID uint) (bool, error) {
	profile, err := getProfile(r.db, userID)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.Table("book_favorites").
		Where("user_profile_id = ? AND book_id = ?", profile.ID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListFavorites returns the user's favorite books.
func (r *Repository) ListFavorites(userID uint) ([]entities.Book, error) {
	profile, err := getProfile(r.db, userID)
	if err != nil {
		return nil, err
	}
	var books []entities.Book
	err = r.db.Model(profile).
		Preload("Authors").
		Association("FavoriteBooks").
		Find(&books)
	return books, err
}
