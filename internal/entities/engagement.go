package entities

import (
	"time"
)

type ProgressStatus string

const (
	ProgressStatusReading   ProgressStatus = "reading"
	ProgressStatusCompleted ProgressStatus = "completed"
	ProgressStatusDropped   ProgressStatus = "dropped"
)

// BookProgress is the per-(user, book) record of last-read page and reading
// status. Exactly one row exists per pair; it is created lazily with page 0
// and an empty status, and never deleted.
type BookProgress struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"uniqueIndex:idx_progress_user_book" json:"user_id"`
	BookID     uint           `gorm:"uniqueIndex:idx_progress_user_book" json:"book_id"`
	PageNumber int            `gorm:"default:0" json:"page_number"`
	Status     ProgressStatus `gorm:"size:10" json:"status,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Review struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BookID  uint   `gorm:"index" json:"book_id"`
	UserID  uint   `gorm:"index" json:"user_id"`
	Content string `gorm:"type:text" json:"content"`

	// Publish is set once at creation and never updated.
	Publish time.Time `json:"publish"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`
}

// BookNote is a structured reading reflection, unique per (book, user).
type BookNote struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BookID uint `gorm:"uniqueIndex:idx_note_book_user" json:"book_id"`
	UserID uint `gorm:"uniqueIndex:idx_note_book_user" json:"user_id"`

	Thoughts                string `gorm:"type:text" json:"thoughts,omitempty"`
	FavoriteCharacters      string `gorm:"type:text" json:"favorite_characters,omitempty"`
	LeastFavoriteCharacters string `gorm:"type:text" json:"least_favorite_characters,omitempty"`
	FavoriteQuote           string `gorm:"type:text" json:"favorite_quote,omitempty"`
	SurprisingMoment        string `gorm:"type:text" json:"surprising_moment,omitempty"`
	PageNumberOfMoment      int    `json:"page_number_of_moment,omitempty"`
	EndingOpinion           string `gorm:"type:text" json:"ending_opinion,omitempty"`

	// Ratings are 1-5; zero means unrated.
	SettingsRating   int `json:"settings_rating,omitempty"`
	PlotRating       int `json:"plot_rating,omitempty"`
	CharacterRating  int `json:"character_rating,omitempty"`
	StyleRating      int `json:"style_rating,omitempty"`
	EngagementRating int `json:"engagement_rating,omitempty"`
	OverallRating    int `json:"overall_rating,omitempty"`

	StartDate  *time.Time `json:"start_date,omitempty"`
	FinishDate *time.Time `json:"finish_date,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BookProgress) TableName() string {
	return "book_progress"
}

func (Review) TableName() string {
	return "reviews"
}

func (BookNote) TableName() string {
	return "book_notes"
}
