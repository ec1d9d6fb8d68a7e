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

	"github.com/pagekeeper/pagekeeper/internal/database"
	"github.com/pagekeeper/pagekeeper/internal/database/requests"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

func setupRequestsTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_requests_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestRequestsController_Submit(t *testing.T) {
	t.Run("files a pending request", func(t *testing.T) {
		db, cleanup := setupRequestsTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")

		controller := NewRequestsController(requests.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/requests", controller.Submit)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/requests",
			strings.NewReader(`{"title": "Blindsight", "author": "Peter Watts"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response struct {
			Request entities.BookRequest `json:"request"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Blindsight", response.Request.Title)
		assert.Equal(t, entities.RequestStatusPending, response.Request.Status)
		assert.NotEmpty(t, response.Request.Reference)
	})

	t.Run("requires a title", func(t *testing.T) {
		db, cleanup := setupRequestsTestDB(t)
		defer cleanup()

		user := createHTTPTestUser(t, db, "reader")

		controller := NewRequestsController(requests.NewRepository(db.DB))
		router := newTestRouter(user.ID)
		router.POST("/api/requests", controller.Submit)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/requests",
			strings.NewReader(`{"title": "   "}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestsController_Decide(t *testing.T) {
	t.Run("approve returns the decision message", func(t *testing.T) {
		db, cleanup := setupRequestsTestDB(t)
		defer cleanup()

		requester := createHTTPTestUser(t, db, "reader")
		reviewer := createHTTPTestUser(t, db, "curator")

		repo := requests.NewRepository(db.DB)
		pending, err := repo.Submit(requester.ID, "Blindsight", "Peter Watts", "")
		require.NoError(t, err)

		controller := NewRequestsController(repo)
		router := newTestRouter(reviewer.ID)
		router.POST("/api/requests/:id/decide", controller.Decide)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/requests/1/decide",
			strings.NewReader(`{"decision": "approve"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Request entities.BookRequest `json:"request"`
			Message string               `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, pending.ID, response.Request.ID)
		assert.Equal(t, entities.RequestStatusApproved, response.Request.Status)
		assert.Equal(t, "Request for Blindsight has been approved.", response.Message)
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		db, cleanup := setupRequestsTestDB(t)
		defer cleanup()

		requester := createHTTPTestUser(t, db, "reader")
		reviewer := createHTTPTestUser(t, db, "curator")

		repo := requests.NewRepository(db.DB)
		_, err := repo.Submit(requester.ID, "Blindsight", "", "")
		require.NoError(t, err)
		_, err = repo.Decide(1, requests.DecisionDeny, reviewer.ID)
		require.NoError(t, err)

		controller := NewRequestsController(repo)
		router := newTestRouter(reviewer.ID)
		router.POST("/api/requests/:id/decide", controller.Decide)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/requests/1/decide",
			strings.NewReader(`{"decision": "approve"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects an unknown decision", func(t *testing.T) {
		db, cleanup := setupRequestsTestDB(t)
		defer cleanup()

		requester := createHTTPTestUser(t, db, "reader")
		reviewer := createHTTPTestUser(t, db, "curator")

		repo := requests.NewRepository(db.DB)
		_, err := repo.Submit(requester.ID, "Blindsight", "", "")
		require.NoError(t, err)

		controller := NewRequestsController(repo)
		router := newTestRouter(reviewer.ID)
		router.POST("/api/requests/:id/decide", controller.Decide)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/requests/1/decide",
			strings.NewReader(`{"decision": "maybe"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "approve or deny")
	})

	t.Run("unknown request returns 404", func(t *testing.T) {
		db, cleanup := setupRequestsTestDB(t)
		defer cleanup()

		reviewer := createHTTPTestUser(t, db, "curator")

		controller := NewRequestsController(requests.NewRepository(db.DB))
		router := newTestRouter(reviewer.ID)
		router.POST("/api/requests/:id/decide", controller.Decide)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/requests/999/decide",
			strings.NewReader(`{"decision": "approve"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
