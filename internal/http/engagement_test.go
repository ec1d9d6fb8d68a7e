package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeeper/pagekeeper/internal/auth"
	"github.com/pagekeeper/pagekeeper/internal/database"
	"github.com/pagekeeper/pagekeeper/internal/database/engagement"
	"github.com/pagekeeper/pagekeeper/internal/database/users"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

func setupEngagementTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_engagement_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

// newTestRouter returns a bare router that authenticates every request as
// the given user, mirroring what the auth middleware does in production.
func newTestRouter(userID uint) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Next()
	})
	return router
}

func createHTTPTestUser(t *testing.T, db *database.Database, username string) *entities.User {
	t.Helper()
	user, err := users.NewRepository(db.DB).CreateUser(username, username+"@example.com")
	require.NoError(t, err)
	return user
}

func createHTTPTestBook(t *testing.T, db *database.Database, title string, pageCount int) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, PageCount: pageCount}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func TestProgressController_SetPage(t *testing.T) {
	t.Run("records the current page", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		book := createHTTPTestBook(t, db, "Dune", 412)

		controller := NewProgressController(engagement.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/books/:id/progress", controller.SetPage)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/1/progress",
			strings.NewReader(`{"page": 100}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Progress entities.BookProgress `json:"progress"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 100, response.Progress.PageNumber)
		assert.Equal(t, entities.ProgressStatusReading, response.Progress.Status)
		assert.Equal(t, book.ID, response.Progress.BookID)
	})

	t.Run("reaching the last page completes the book", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		createHTTPTestBook(t, db, "Dune", 412)

		controller := NewProgressController(engagement.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/books/:id/progress", controller.SetPage)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/1/progress",
			strings.NewReader(`{"page": 412}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Progress entities.BookProgress `json:"progress"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, entities.ProgressStatusCompleted, response.Progress.Status)
	})

	t.Run("rejects a page beyond the book", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		createHTTPTestBook(t, db, "Dune", 412)

		controller := NewProgressController(engagement.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/books/:id/progress", controller.SetPage)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/1/progress",
			strings.NewReader(`{"page": 500}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "out of range")
	})

	t.Run("requires a page field", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		createHTTPTestBook(t, db, "Dune", 412)

		controller := NewProgressController(engagement.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/books/:id/progress", controller.SetPage)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/1/progress",
			strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")

		controller := NewProgressController(engagement.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/books/:id/progress", controller.SetPage)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/999/progress",
			strings.NewReader(`{"page": 10}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProgressController_Bookshelf(t *testing.T) {
	t.Run("groups books by status", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		reading := createHTTPTestBook(t, db, "Dune", 412)
		finished := createHTTPTestBook(t, db, "Hyperion", 482)

		repo := engagement.NewRepository(db.DB)
		_, err := repo.SetPage(user.ID, reading.ID, 100)
		require.NoError(t, err)
		_, err = repo.MarkCompleted(user.ID, finished.ID)
		require.NoError(t, err)

		controller := NewProgressController(repo)
		router := newTestRouter(user.ID)
		router.GET("/api/bookshelf", controller.Bookshelf)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/bookshelf", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Reading   []entities.BookProgress `json:"reading"`
			Completed []entities.BookProgress `json:"completed"`
			Dropped   []entities.BookProgress `json:"dropped"`
			Counts    map[string]int64        `json:"counts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Reading, 1)
		assert.Len(t, response.Completed, 1)
		assert.Empty(t, response.Dropped)
		assert.Equal(t, int64(1), response.Counts["reading"])
		assert.Equal(t, int64(1), response.Counts["completed"])
	})
}

func TestFavouritesController_Toggle(t *testing.T) {
	t.Run("toggles on and off", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		createHTTPTestBook(t, db, "Dune", 412)

		controller := NewFavouritesController(engagement.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/books/:id/favourite", controller.Toggle)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/1/favourite", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			IsFavorite bool `json:"is_favorite"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.IsFavorite)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("POST", "/api/books/1/favourite", nil)
		router.ServeHTTP(w, req)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.IsFavorite)
	})
}

func TestReviewsController_RequestPromotion(t *testing.T) {
	t.Run("reports remaining reviews below the threshold", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		createHTTPTestBook(t, db, "Dune", 412)

		repo := engagement.NewRepository(db.DB)
		_, err := repo.PostReview(user.ID, 1, "A sweeping desert epic.")
		require.NoError(t, err)

		controller := NewReviewsController(repo)
		router := newTestRouter(user.ID)
		router.POST("/api/profile/promote", controller.RequestPromotion)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/profile/promote", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Message  string `json:"message"`
			HideForm bool   `json:"hideForm"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Message, "1 more review")
		assert.False(t, response.HideForm)
	})

	t.Run("promotes at the threshold", func(t *testing.T) {
		db, cleanup := setupEngagementTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")
		createHTTPTestBook(t, db, "Dune", 412)
		createHTTPTestBook(t, db, "Hyperion", 482)

		repo := engagement.NewRepository(db.DB)
		_, err := repo.PostReview(user.ID, 1, "A sweeping desert epic.")
		require.NoError(t, err)
		_, err = repo.PostReview(user.ID, 2, "The Shrike lingers.")
		require.NoError(t, err)

		controller := NewReviewsController(repo)
		router := newTestRouter(user.ID)
		router.POST("/api/profile/promote", controller.RequestPromotion)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/profile/promote", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Message  string `json:"message"`
			HideForm bool   `json:"hideForm"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Congratulations! You are now a reviewer.", response.Message)
		assert.True(t, response.HideForm)
	})
}
