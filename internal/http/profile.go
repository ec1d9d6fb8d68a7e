package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/database/users"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// ProfileStore defines database operations for user profiles.
type ProfileStore interface {
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	GetProfile(userID uint) (*entities.UserProfile, error)
	UpdateProfile(userID uint, bio, profilePic, favoriteGenre, websiteURL string) (*entities.UserProfile, error)
}

// ProfileEngagementStore supplies the reading statistics shown on profile
// pages.
type ProfileEngagementStore interface {
	ShelfCounts(userID uint) (reading, completed, dropped int64, err error)
	ListFavorites(userID uint) ([]entities.Book, error)
}

type ProfileController struct {
	store      ProfileStore
	engagement ProfileEngagementStore
}

func NewProfileController(store ProfileStore, eng ProfileEngagementStore) *ProfileController {
	return &ProfileController{store: store, engagement: eng}
}

func (pc *ProfileController) respondProfile(c *gin.Context, user *entities.User) {
	profile, err := pc.store.GetProfile(user.ID)
	if err != nil {
		respondInternalError(c, err, "get profile")
		return
	}

	reading, completed, dropped, err := pc.engagement.ShelfCounts(user.ID)
	if err != nil {
		respondInternalError(c, err, "shelf counts")
		return
	}

	favorites, err := pc.engagement.ListFavorites(user.ID)
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"profile":   profile,
		"favorites": favorites,
		"shelf_counts": gin.H{
			"reading":   reading,
			"completed": completed,
			"dropped":   dropped,
		},
	})
}

// Own returns the authenticated user's profile with reading statistics.
// GET /api/profile
func (pc *ProfileController) Own(c *gin.Context) {
	user, err := pc.store.GetUserByID(GetUserID(c))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "profile")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}
	pc.respondProfile(c, user)
}

// ByUsername returns another member's public profile.
// GET /api/users/:username
func (pc *ProfileController) ByUsername(c *gin.Context) {
	username := c.Param("username")
	user, err := pc.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}
	pc.respondProfile(c, user)
}

type updateProfilePayload struct {
	Bio           string `json:"bio"`
	ProfilePic    string `json:"profile_pic"`
	FavoriteGenre string `json:"favorite_genre"`
	WebsiteURL    string `json:"website_url"`
}

// Update edits the descriptive fields of the authenticated user's profile.
// The derived reading counters are not editable.
// PUT /api/profile
func (pc *ProfileController) Update(c *gin.Context) {
	var payload updateProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid profile payload")
		return
	}

	profile, err := pc.store.UpdateProfile(
		GetUserID(c),
		payload.Bio,
		payload.ProfilePic,
		payload.FavoriteGenre,
		payload.WebsiteURL,
	)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "profile")
			return
		}
		respondInternalError(c, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
