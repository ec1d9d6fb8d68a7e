package engagement

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pagekeeper/pagekeeper/internal/config"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// PromotionOutcome is the result of a reviewer promotion attempt, shaped for
// the promotion endpoint's JSON payload.
type PromotionOutcome struct {
	Promoted  bool
	Remaining int
	Message   string
}

// PostReview creates a review and recomputes the author's reviews_written
// counter as a full recount of their review rows. The recount (rather than an
// increment) makes the counter self-healing against any prior drift.
func (r *Repository) PostReview(userID, bookID uint, content string) (*entities.Review, error) {
	var review *entities.Review
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := getBook(tx, bookID); err != nil {
			return err
		}
		profile, err := getProfile(tx, userID)
		if err != nil {
			return err
		}

		review = &entities.Review{
			BookID:  bookID,
			UserID:  userID,
			Content: content,
			Publish: time.Now(),
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		var count int64
		if err := tx.Model(&entities.Review{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(profile).Update("reviews_written", count).Error
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// PromoteIfEligible promotes a user to reviewer once they have written at
// least config.ReviewerThreshold reviews. Below the threshold it returns a
// rejected outcome carrying the number of reviews still required.
func (r *Repository) PromoteIfEligible(userID uint) (*PromotionOutcome, error) {
	profile, err := getProfile(r.db, userID)
	if err != nil {
		return nil, err
	}

	if profile.ReviewsWritten >= config.ReviewerThreshold {
		err := r.db.Model(&entities.User{}).
			Where("id = ?", userID).
			Update("is_reviewer", true).Error
		if err != nil {
			return nil, err
		}
		return &PromotionOutcome{
			Promoted: true,
			Message:  "Congratulations! You are now a reviewer.",
		}, nil
	}

	remaining := config.ReviewerThreshold - profile.ReviewsWritten
	return &PromotionOutcome{
		Promoted:  false,
		Remaining: remaining,
		Message:   fmt.Sprintf("Sorry, you need to write %d more reviews to become a reviewer.", remaining),
	}, nil
}

// ListBookReviews returns a book's reviews, newest first.
func (r *Repository) ListBookReviews(bookID uint) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Where("book_id = ?", bookID).
		Order("publish DESC").
		Find(&reviews).Error
	return reviews, err
}

// ListRecentReviews returns the n most recent reviews across all books.
func (r *Repository) ListRecentReviews(n int) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Order("publish DESC").Limit(n).Find(&reviews).Error
	return reviews, err
}

// RecountProfiles recomputes both derived counters for every profile straight
// from the detail rows. Run periodically as a maintenance task; a correct
// database is a no-op.
func (r *Repository) RecountProfiles() (int64, error) {
	result := r.db.Exec(`
		UPDATE user_profiles SET
			reviews_written = (
				SELECT COUNT(*) FROM reviews
				WHERE reviews.user_id = user_profiles.user_id
			),
			total_pages_read = (
				SELECT COALESCE(SUM(page_number), 0) FROM book_progress
				WHERE book_progress.user_id = user_profiles.user_id
			)`)
	if result.Error != nil {
		return 0, fmt.Errorf("recount profiles: %w", result.Error)
	}
	return result.RowsAffected, nil
}
