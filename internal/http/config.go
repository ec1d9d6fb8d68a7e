package http

import (
	"github.com/pagekeeper/pagekeeper/internal/auth"
	"github.com/pagekeeper/pagekeeper/internal/config"
	"github.com/pagekeeper/pagekeeper/internal/database"
	"github.com/pagekeeper/pagekeeper/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Domain stores
	CatalogStore        CatalogStore
	BookEngagementStore BookEngagementStore
	ProgressStore       ProgressStore
	FavouritesStore     FavouritesStore
	ReviewsStore        ReviewsStore
	NotesStore          NotesStore
	RequestsStore       RequestsStore
	ProfileStore        ProfileStore
	ProfileEngagement   ProfileEngagementStore

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Locally cached cover images are served from this directory.
	CoversDir string

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
