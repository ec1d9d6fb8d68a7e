package engagement

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// CreateNote saves a new book note. Each (book, user) pair may hold a single
// note; a second create returns ErrDuplicate.
func (r *Repository) CreateNote(note *entities.BookNote) error {
	if _, err := getBook(r.db, note.BookID); err != nil {
		return err
	}

	var existing entities.BookNote
	err := r.db.Where("book_id = ? AND user_id = ?", note.BookID, note.UserID).
		First(&existing).Error
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(note).Error
}

// UpdateNote applies changes to an existing note owned by the user.
func (r *Repository) UpdateNote(note *entities.BookNote) error {
	var existing entities.BookNote
	err := r.db.Where("id = ? AND user_id = ?", note.ID, note.UserID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	note.BookID = existing.BookID
	note.CreatedAt = existing.CreatedAt
	return r.db.Save(note).Error
}

// GetNote returns the user's note for a book.
func (r *Repository) GetNote(userID, bookID uint) (*entities.BookNote, error) {
	var note entities.BookNote
	err := r.db.Where("book_id = ? AND user_id = ?", bookID, userID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// GetNoteByID returns a note by its ID, scoped to the owning user.
func (r *Repository) GetNoteByID(userID, noteID uint) (*entities.BookNote, error) {
	var note entities.BookNote
	err := r.db.Where("id = ? AND user_id = ?", noteID, userID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// ListNotes returns all notes written by a user, newest first.
func (r *Repository) ListNotes(userID uint) ([]entities.BookNote, error) {
	var notes []entities.BookNote
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
