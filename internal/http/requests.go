package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/database/requests"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// RequestsStore defines database operations for the book request workflow.
type RequestsStore interface {
	Submit(userID uint, title, author, notes string) (*entities.BookRequest, error)
	Decide(requestID uint, decision requests.Decision, approverID uint) (*entities.BookRequest, error)
	GetByID(requestID uint) (*entities.BookRequest, error)
	ListForUser(userID uint) ([]entities.BookRequest, error)
	ListPending() ([]entities.BookRequest, error)
}

type RequestsController struct {
	store RequestsStore
}

func NewRequestsController(store RequestsStore) *RequestsController {
	return &RequestsController{store: store}
}

type submitRequestPayload struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
	Notes  string `json:"notes"`
}

// Submit files a request for a book the catalog is missing.
// POST /api/requests
func (rc *RequestsController) Submit(c *gin.Context) {
	var payload submitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.Title) == "" {
		respondBadRequest(c, "title is required")
		return
	}

	request, err := rc.store.Submit(
		GetUserID(c),
		strings.TrimSpace(payload.Title),
		strings.TrimSpace(payload.Author),
		payload.Notes,
	)
	if err != nil {
		respondInternalError(c, err, "submit request")
		return
	}

	respondCreated(c, gin.H{"request": request})
}

// ListMine returns the user's own requests, newest first.
// GET /api/requests
func (rc *RequestsController) ListMine(c *gin.Context) {
	reqs, err := rc.store.ListForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": reqs, "total": len(reqs)})
}

// ListPending returns the approval queue, oldest first. Reviewer or admin
// role required, enforced at the route level.
// GET /api/requests/pending
func (rc *RequestsController) ListPending(c *gin.Context) {
	reqs, err := rc.store.ListPending()
	if err != nil {
		respondInternalError(c, err, "list pending requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": reqs, "total": len(reqs)})
}

type decidePayload struct {
	Decision string `json:"decision" binding:"required"`
}

// Decide approves or denies a pending request. Each request is decided at
// most once; the first decision sticks.
// POST /api/requests/:id/decide
func (rc *RequestsController) Decide(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload decidePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "decision is required")
		return
	}

	request, err := rc.store.Decide(requestID, requests.Decision(payload.Decision), GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrInvalidDecision):
			respondBadRequest(c, "decision must be approve or deny")
		case errors.Is(err, requests.ErrNotFound):
			respondNotFound(c, "request")
		case errors.Is(err, requests.ErrAlreadyDecided):
			respondConflict(c, "request has already been decided")
		default:
			respondInternalError(c, err, "decide request")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": request,
		"message": request.DecisionMessage,
	})
}
