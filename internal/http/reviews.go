package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/database/engagement"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// ReviewsStore defines database operations for reviews and reviewer
// promotion.
type ReviewsStore interface {
	PostReview(userID, bookID uint, content string) (*entities.Review, error)
	PromoteIfEligible(userID uint) (*engagement.PromotionOutcome, error)
	ListBookReviews(bookID uint) ([]entities.Review, error)
}

type ReviewsController struct {
	store ReviewsStore
}

func NewReviewsController(store ReviewsStore) *ReviewsController {
	return &ReviewsController{store: store}
}

type postReviewRequest struct {
	Content string `json:"content" binding:"required"`
}

// Post publishes a review for a book.
// POST /api/books/:id/reviews
func (rc *ReviewsController) Post(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req postReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		respondBadRequest(c, "content is required")
		return
	}

	review, err := rc.store.PostReview(GetUserID(c), bookID, strings.TrimSpace(req.Content))
	if err != nil {
		if errors.Is(err, engagement.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "post review")
		return
	}

	respondCreated(c, gin.H{"review": review})
}

// ListForBook returns a book's reviews, newest first.
// GET /api/books/:id/reviews
func (rc *ReviewsController) ListForBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := rc.store.ListBookReviews(bookID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// RequestPromotion asks to become a reviewer. The form hides once the
// outcome is settled so the user cannot re-submit.
// POST /api/profile/promote
func (rc *ReviewsController) RequestPromotion(c *gin.Context) {
	outcome, err := rc.store.PromoteIfEligible(GetUserID(c))
	if err != nil {
		if errors.Is(err, engagement.ErrNotFound) {
			respondNotFound(c, "profile")
			return
		}
		respondInternalError(c, err, "request promotion")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  outcome.Message,
		"hideForm": outcome.Promoted,
	})
}
