package entities

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDenied   RequestStatus = "denied"
)

// BookRequest is a user-submitted acquisition request. It starts pending and
// is decided exactly once; approved and denied are terminal.
type BookRequest struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"uniqueIndex;size:36" json:"reference"`

	UserID uint   `gorm:"index" json:"user_id"`
	Title  string `gorm:"size:350" json:"title"`
	Author string `gorm:"size:350" json:"author,omitempty"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`

	Status RequestStatus `gorm:"size:10;default:'pending';index" json:"status"`

	DecisionMessage string     `gorm:"type:text" json:"decision_message,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	DecidedByID     uint       `json:"decided_by_id,omitempty"`

	User      User `gorm:"foreignKey:UserID" json:"-"`
	DecidedBy User `gorm:"foreignKey:DecidedByID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BookRequest) TableName() string {
	return "book_requests"
}
