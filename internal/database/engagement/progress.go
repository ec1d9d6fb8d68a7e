package engagement

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// EnsureProgress returns the progress row for (user, book), creating it with
// page 0 and no status on first touch. Idempotent: the unique index on
// (user_id, book_id) guarantees a single row even under concurrent creation.
func (r *Repository) EnsureProgress(userID, bookID uint) (*entities.BookProgress, error) {
	if _, err := getBook(r.db, bookID); err != nil {
		return nil, err
	}

	// Conditions are parameterized because a struct condition drops
	// zero-valued fields and user ID 0 would match any user's row.
	var progress entities.BookProgress
	err := r.db.
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Attrs(entities.BookProgress{UserID: userID, BookID: bookID}).
		FirstOrCreate(&progress).Error
	if err == nil {
		return &progress, nil
	}

	// A concurrent request may have created the row between the lookup and
	// the insert; the unique index rejects the duplicate, so re-read.
	var existing entities.BookProgress
	if ferr := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&existing).Error; ferr == nil {
		return &existing, nil
	}
	return nil, err
}

// SetPage moves the reader's position. The page must be within
// [0, book.page_count]; the owning profile's total_pages_read is adjusted by
// the delta in the same transaction. Reaching the last page marks the book
// completed, any other page marks it reading.
func (r *Repository) SetPage(userID, bookID uint, newPage int) (*entities.BookProgress, error) {
	var progress *entities.BookProgress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := getBook(tx, bookID)
		if err != nil {
			return err
		}
		if newPage < 0 || newPage > book.PageCount {
			return ErrPageOutOfRange
		}
		progress, err = ensureProgressTx(tx, userID, bookID)
		if err != nil {
			return err
		}
		return applyPage(tx, progress, book, newPage)
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkCompleted forces the progress to the last page. It goes through the
// same aggregate-adjustment path as SetPage so the counter cannot drift.
func (r *Repository) MarkCompleted(userID, bookID uint) (*entities.BookProgress, error) {
	var progress *entities.BookProgress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := getBook(tx, bookID)
		if err != nil {
			return err
		}
		progress, err = ensureProgressTx(tx, userID, bookID)
		if err != nil {
			return err
		}
		return applyPage(tx, progress, book, book.PageCount)
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkDropped sets the status to dropped without touching the page number or
// the pages-read aggregate: pages already read from a dropped book remain
// counted. Stated policy, not an oversight.
func (r *Repository) MarkDropped(userID, bookID uint) (*entities.BookProgress, error) {
	var progress *entities.BookProgress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := getBook(tx, bookID); err != nil {
			return err
		}
		var err error
		progress, err = ensureProgressTx(tx, userID, bookID)
		if err != nil {
			return err
		}
		progress.Status = entities.ProgressStatusDropped
		return tx.Save(progress).Error
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// GetProgress returns the progress row for (user, book) without creating one.
func (r *Repository) GetProgress(userID, bookID uint) (*entities.BookProgress, error) {
	var progress entities.BookProgress
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// ListShelf returns all progress rows for a user with books preloaded,
// grouped by the caller into reading/completed/dropped shelves.
func (r *Repository) ListShelf(userID uint) ([]entities.BookProgress, error) {
	var rows []entities.BookProgress
	err := r.db.Preload("Book").Preload("Book.Authors").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// ShelfCounts returns the number of reading, completed and dropped books for
// a user.
func (r *Repository) ShelfCounts(userID uint) (reading, completed, dropped int64, err error) {
	count := func(status entities.ProgressStatus) (int64, error) {
		var n int64
		err := r.db.Model(&entities.BookProgress{}).
			Where("user_id = ? AND status = ?", userID, status).
			Count(&n).Error
		return n, err
	}
	if reading, err = count(entities.ProgressStatusReading); err != nil {
		return
	}
	if completed, err = count(entities.ProgressStatusCompleted); err != nil {
		return
	}
	dropped, err = count(entities.ProgressStatusDropped)
	return
}

// ensureProgressTx is EnsureProgress inside an existing transaction.
func ensureProgressTx(tx *gorm.DB, userID, bookID uint) (*entities.BookProgress, error) {
	var progress entities.BookProgress
	err := tx.
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Attrs(entities.BookProgress{UserID: userID, BookID: bookID}).
		FirstOrCreate(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// applyPage is the single aggregate-adjustment primitive shared by SetPage and
// MarkCompleted: it moves the page, derives the status, and shifts the
// profile's total_pages_read by the delta, all within the caller's
// transaction.
func applyPage(tx *gorm.DB, progress *entities.BookProgress, book *entities.Book, newPage int) error {
	profile, err := getProfile(tx, progress.UserID)
	if err != nil {
		return err
	}

	delta := newPage - progress.PageNumber
	progress.PageNumber = newPage
	if newPage == book.PageCount {
		progress.Status = entities.ProgressStatusCompleted
	} else {
		progress.Status = entities.ProgressStatusReading
	}

	if err := tx.Save(progress).Error; err != nil {
		return err
	}
	return tx.Model(profile).
		Update("total_pages_read", gorm.Expr("total_pages_read + ?", delta)).Error
}
