package entities

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// ISBN is unique when present. NULL for books without one, so the
	// unique index never collides on absent values.
	ISBN *string `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`

	Title           string `gorm:"index;size:350" json:"title"`
	Description     string `gorm:"type:text" json:"description,omitempty"`
	Publisher       string `gorm:"size:200" json:"publisher,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Language        string `gorm:"size:50;default:'English'" json:"language"`
	PageCount       int    `json:"page_count"`

	// Remote cover URL and the locally cached copy fetched by the cover task.
	ImageURL   string `gorm:"size:500" json:"image_url,omitempty"`
	ImageLocal string `gorm:"size:1024" json:"image_local,omitempty"`

	Authors []Author `gorm:"many2many:book_authors;" json:"authors,omitempty"`
	Genres  []Genre  `gorm:"many2many:book_genres;" json:"genres,omitempty"`

	// Profiles that favorited this book.
	Favorites []UserProfile `gorm:"many2many:book_favorites;" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Author struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"index;size:350" json:"name"`
	Books []Book `gorm:"many2many:book_authors;" json:"-"`
}

type Genre struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"index;size:200" json:"name"`
	Books []Book `gorm:"many2many:book_genres;" json:"-"`
}

// NormalizeISBN maps a blank ISBN to nil so it stores as NULL.
func NormalizeISBN(isbn string) *string {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil
	}
	return &isbn
}

func (Book) TableName() string {
	return "books"
}

func (Author) TableName() string {
	return "authors"
}

func (Genre) TableName() string {
	return "genres"
}
