// Package requests implements the book acquisition request workflow: a
// request starts pending and is decided exactly once, to approved or denied.
//
// # Usage
//
//	repo := requests.NewRepository(db)
//	req, err := repo.Submit(userID, "The Dispossessed", "Ursula K. Le Guin", "")
//	err = repo.Decide(req.ID, requests.DecisionApprove, approverID)
package requests

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// Decision is the terminal action applied once to a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

var (
	// ErrNotFound is returned when no request exists with the given id.
	ErrNotFound = errors.New("book request not found")

	// ErrAlreadyDecided is returned when deciding a request that is no
	// longer pending. The first decision is preserved.
	ErrAlreadyDecided = errors.New("book request already decided")

	// ErrInvalidDecision is returned for a decision value other than
	// approve or deny.
	ErrInvalidDecision = errors.New("invalid decision")
)

// Repository handles all book request database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new book request repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Submit creates a new request in the pending state with a public reference
// code.
func (r *Repository) Submit(userID uint, title, author, notes string) (*entities.BookRequest, error) {
	request := &entities.BookRequest{
		Reference: uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Author:    author,
		Notes:     notes,
		Status:    entities.RequestStatusPending,
	}
	if err := r.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("create book request: %w", err)
	}
	return request, nil
}

// Decide applies a terminal decision to a pending request, recording a
// human-readable decision message, the timestamp, and the approver. A second
// decision on the same request fails with ErrAlreadyDecided; the original
// decision stands.
func (r *Repository) Decide(requestID uint, decision Decision, approverID uint) (*entities.BookRequest, error) {
	if decision != DecisionApprove && decision != DecisionDeny {
		return nil, ErrInvalidDecision
	}

	var request *entities.BookRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var req entities.BookRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if req.Status != entities.RequestStatusPending {
			return ErrAlreadyDecided
		}

		now := time.Now()
		switch decision {
		case DecisionApprove:
			req.Status = entities.RequestStatusApproved
			req.DecisionMessage = fmt.Sprintf("Request for %s has been approved.", req.Title)
		case DecisionDeny:
			req.Status = entities.RequestStatusDenied
			req.DecisionMessage = fmt.Sprintf("Request for %s has been denied.", req.Title)
		}
		req.DecidedAt = &now
		req.DecidedByID = approverID

		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		request = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// GetByID returns a request by its id.
func (r *Repository) GetByID(requestID uint) (*entities.BookRequest, error) {
	var request entities.BookRequest
	err := r.db.First(&request, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// ListForUser returns all requests submitted by a user, newest first.
func (r *Repository) ListForUser(userID uint) ([]entities.BookRequest, error) {
	var requests []entities.BookRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListPending returns all undecided requests, oldest first so approvers work
// through the queue in submission order.
func (r *Repository) ListPending() ([]entities.BookRequest, error) {
	var requests []entities.BookRequest
	err := r.db.Where("status = ?", entities.RequestStatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}
