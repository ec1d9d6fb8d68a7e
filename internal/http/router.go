package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/auth"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	if cfg.CoversDir != "" {
		router.Static("/covers", cfg.CoversDir)
	}

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	booksController := NewBooksController(cfg.CatalogStore, cfg.BookEngagementStore)
	router.GET("/api/home", booksController.Home)
	router.GET("/api/books/search", booksController.Search)
	router.GET("/api/books/:id", booksController.Detail)
	router.POST("/api/books", booksController.Create)
	router.PUT("/api/books/:id", booksController.Update)

	progressController := NewProgressController(cfg.ProgressStore)
	router.POST("/api/books/:id/progress", progressController.SetPage)
	router.POST("/api/books/:id/complete", progressController.MarkCompleted)
	router.POST("/api/books/:id/drop", progressController.MarkDropped)
	router.GET("/api/bookshelf", progressController.Bookshelf)

	favouritesController := NewFavouritesController(cfg.FavouritesStore)
	router.POST("/api/books/:id/favourite", favouritesController.Toggle)
	router.GET("/api/favourites", favouritesController.List)

	reviewsController := NewReviewsController(cfg.ReviewsStore)
	router.GET("/api/books/:id/reviews", reviewsController.ListForBook)
	router.POST("/api/books/:id/reviews", reviewsController.Post)
	router.POST("/api/profile/promote", reviewsController.RequestPromotion)

	notesController := NewNotesController(cfg.NotesStore)
	router.POST("/api/books/:id/note", notesController.Create)
	router.GET("/api/books/:id/note", notesController.GetForBook)
	router.PUT("/api/notes/:id", notesController.Update)
	router.GET("/api/notes", notesController.List)

	requestsController := NewRequestsController(cfg.RequestsStore)
	router.POST("/api/requests", requestsController.Submit)
	router.GET("/api/requests", requestsController.ListMine)

	// Only reviewers and admins see the approval queue and decide requests
	pendingHandlers := []gin.HandlerFunc{requestsController.ListPending}
	decideHandlers := []gin.HandlerFunc{requestsController.Decide}
	if cfg.AuthMiddleware != nil {
		requireReviewer := cfg.AuthMiddleware.RequireRole(entities.UserRoleReviewer, entities.UserRoleAdmin)
		pendingHandlers = append([]gin.HandlerFunc{requireReviewer}, pendingHandlers...)
		decideHandlers = append([]gin.HandlerFunc{requireReviewer}, decideHandlers...)
	}
	router.GET("/api/requests/pending", pendingHandlers...)
	router.POST("/api/requests/:id/decide", decideHandlers...)

	profileController := NewProfileController(cfg.ProfileStore, cfg.ProfileEngagement)
	router.GET("/api/profile", profileController.Own)
	router.PUT("/api/profile", profileController.Update)
	router.GET("/api/users/:username", profileController.ByUsername)

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.POST("/api/tasks/covers/sync", tasksController.EnqueueCoverSync)
		router.POST("/api/tasks/recount", tasksController.EnqueueRecount)
		router.GET("/api/tasks/:id", tasksController.GetStatus)
	}

	return router
}
