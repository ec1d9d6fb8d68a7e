package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/database/engagement"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// ProgressStore defines database operations for reading progress.
type ProgressStore interface {
	SetPage(userID, bookID uint, newPage int) (*entities.BookProgress, error)
	MarkCompleted(userID, bookID uint) (*entities.BookProgress, error)
	MarkDropped(userID, bookID uint) (*entities.BookProgress, error)
	GetProgress(userID, bookID uint) (*entities.BookProgress, error)
	ListShelf(userID uint) ([]entities.BookProgress, error)
	ShelfCounts(userID uint) (reading, completed, dropped int64, err error)
}

type ProgressController struct {
	store ProgressStore
}

func NewProgressController(store ProgressStore) *ProgressController {
	return &ProgressController{store: store}
}

type setPageRequest struct {
	Page *int `json:"page" binding:"required"`
}

// SetPage records the reader's current page. Finishing the last page marks
// the book completed; any other page puts it back in the reading state.
// POST /api/books/:id/progress
func (pc *ProgressController) SetPage(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setPageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Page == nil {
		respondBadRequest(c, "page is required")
		return
	}

	progress, err := pc.store.SetPage(GetUserID(c), bookID, *req.Page)
	if err != nil {
		pc.respondProgressError(c, err, "set page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// MarkCompleted jumps the reader to the last page of the book.
// POST /api/books/:id/complete
func (pc *ProgressController) MarkCompleted(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	progress, err := pc.store.MarkCompleted(GetUserID(c), bookID)
	if err != nil {
		pc.respondProgressError(c, err, "mark completed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// MarkDropped abandons the book. Pages read so far stay on record.
// POST /api/books/:id/drop
func (pc *ProgressController) MarkDropped(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	progress, err := pc.store.MarkDropped(GetUserID(c), bookID)
	if err != nil {
		pc.respondProgressError(c, err, "mark dropped")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// Bookshelf lists everything the reader has touched, grouped by status.
// GET /api/bookshelf
func (pc *ProgressController) Bookshelf(c *gin.Context) {
	userID := GetUserID(c)

	shelf, err := pc.store.ListShelf(userID)
	if err != nil {
		respondInternalError(c, err, "list shelf")
		return
	}

	grouped := map[entities.ProgressStatus][]entities.BookProgress{
		entities.ProgressStatusReading:   {},
		entities.ProgressStatusCompleted: {},
		entities.ProgressStatusDropped:   {},
	}
	for _, p := range shelf {
		grouped[p.Status] = append(grouped[p.Status], p)
	}

	reading, completed, dropped, err := pc.store.ShelfCounts(userID)
	if err != nil {
		respondInternalError(c, err, "shelf counts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reading":   grouped[entities.ProgressStatusReading],
		"completed": grouped[entities.ProgressStatusCompleted],
		"dropped":   grouped[entities.ProgressStatusDropped],
		"counts": gin.H{
			"reading":   reading,
			"completed": completed,
			"dropped":   dropped,
		},
	})
}

func (pc *ProgressController) respondProgressError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, engagement.ErrPageOutOfRange):
		respondBadRequest(c, "page is out of range for this book")
	case errors.Is(err, engagement.ErrNotFound):
		respondNotFound(c, "book")
	default:
		respondInternalError(c, err, context)
	}
}
