package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// FavouritesStore defines database operations for favourite books.
type FavouritesStore interface {
	ToggleFavorite(userID, bookID uint) (bool, error)
	ListFavorites(userID uint) ([]entities.Book, error)
}

type FavouritesController struct {
	store FavouritesStore
}

func NewFavouritesController(store FavouritesStore) *FavouritesController {
	return &FavouritesController{store: store}
}

// Toggle flips a book in or out of the user's favourites and reports the
// resulting state.
// POST /api/books/:id/favourite
func (fc *FavouritesController) Toggle(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	isFavorite, err := fc.store.ToggleFavorite(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "toggle favourite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": isFavorite})
}

// List returns the user's favourite books.
// GET /api/favourites
func (fc *FavouritesController) List(c *gin.Context) {
	books, err := fc.store.ListFavorites(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favourites")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}
