package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"    // Catalog management, request decisions
	UserRoleReviewer UserRole = "reviewer" // Promoted after the review threshold; may decide requests
	UserRoleUser     UserRole = "user"
)

type User struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Username string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email    string   `gorm:"uniqueIndex;size:255" json:"email"`
	Role     UserRole `gorm:"size:20;default:'user'" json:"role"`

	// IsReviewer is set by the promotion endpoint once the user has written
	// enough reviews. Kept separate from Role so an admin keeps the flag too.
	IsReviewer bool `gorm:"default:false" json:"is_reviewer"`

	// Authentication
	PasswordHash   string     `gorm:"size:128" json:"-"`
	TokenHash      string     `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	TokenCreatedAt *time.Time `json:"-"`

	// Login tracking
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	Profile UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// UserProfile carries the per-user derived counters. ReviewsWritten and
// TotalPagesRead are maintained by the engagement repository and must stay
// consistent with the underlying review and progress rows.
type UserProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	Bio           string `gorm:"type:text" json:"bio,omitempty"`
	ProfilePic    string `gorm:"size:1024" json:"profile_pic,omitempty"`
	FavoriteGenre string `gorm:"size:255" json:"favorite_genre,omitempty"`
	WebsiteURL    string `gorm:"size:255" json:"website_url,omitempty"`

	ReviewsWritten int `gorm:"default:0" json:"reviews_written"`
	TotalPagesRead int `gorm:"default:0" json:"total_pages_read"`

	FavoriteBooks []Book `gorm:"many2many:book_favorites;" json:"favorite_books,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
