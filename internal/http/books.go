package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/database/catalog"
	"github.com/pagekeeper/pagekeeper/internal/database/engagement"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

const (
	homeBookCount   = 21
	homeGenreCount  = 3
	genreShelfSize  = 7
	homeReviewCount = 10
)

// CatalogStore defines database operations for browsing and managing books.
type CatalogStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	SearchBooks(query string) ([]entities.Book, error)
	PickRandom(n int) ([]entities.Book, error)
	RandomGenres(n int) ([]entities.Genre, error)
	GenreShelf(genreID uint, n int) ([]entities.Book, error)
	CreateBook(book *entities.Book, authorNames, genreNames []string) (*entities.Book, bool, error)
	UpdateBook(book *entities.Book, authorNames, genreNames []string) error
}

// BookEngagementStore provides the per-user state shown on book pages.
type BookEngagementStore interface {
	EnsureProgress(userID, bookID uint) (*entities.BookProgress, error)
	IsFavorite(userID, bookID uint) (bool, error)
	GetNote(userID, bookID uint) (*entities.BookNote, error)
	ListBookReviews(bookID uint) ([]entities.Review, error)
	ListRecentReviews(n int) ([]entities.Review, error)
}

type BooksController struct {
	store      CatalogStore
	engagement BookEngagementStore
}

func NewBooksController(store CatalogStore, eng BookEngagementStore) *BooksController {
	return &BooksController{store: store, engagement: eng}
}

// GenreShelf pairs a genre with a sample of its books for the home page.
type GenreShelf struct {
	Genre entities.Genre  `json:"genre"`
	Books []entities.Book `json:"books"`
}

// Home returns the landing page data: a random selection of books, a few
// genre shelves and the latest reviews.
// GET /api/home
func (bc *BooksController) Home(c *gin.Context) {
	books, err := bc.store.PickRandom(homeBookCount)
	if err != nil {
		respondInternalError(c, err, "home books")
		return
	}

	genres, err := bc.store.RandomGenres(homeGenreCount)
	if err != nil {
		respondInternalError(c, err, "home genres")
		return
	}

	shelves := make([]GenreShelf, 0, len(genres))
	for _, genre := range genres {
		shelf, err := bc.store.GenreShelf(genre.ID, genreShelfSize)
		if err != nil {
			respondInternalError(c, err, "genre shelf")
			return
		}
		shelves = append(shelves, GenreShelf{Genre: genre, Books: shelf})
	}

	reviews, err := bc.engagement.ListRecentReviews(homeReviewCount)
	if err != nil {
		respondInternalError(c, err, "recent reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books":   books,
		"shelves": shelves,
		"reviews": reviews,
	})
}

// Detail returns a single book together with the viewer's engagement state.
// Opening a book page creates the progress record if the viewer has none,
// so every later page update is a plain save.
// GET /api/books/:id
func (bc *BooksController) Detail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	userID := GetUserID(c)

	progress, err := bc.engagement.EnsureProgress(userID, id)
	if err != nil {
		respondInternalError(c, err, "ensure progress")
		return
	}

	isFavorite, err := bc.engagement.IsFavorite(userID, id)
	if err != nil {
		respondInternalError(c, err, "favorite lookup")
		return
	}

	reviews, err := bc.engagement.ListBookReviews(id)
	if err != nil {
		respondInternalError(c, err, "book reviews")
		return
	}

	resp := gin.H{
		"book":        book,
		"progress":    progress,
		"completion":  completionPercent(progress.PageNumber, book.PageCount),
		"is_favorite": isFavorite,
		"reviews":     reviews,
	}

	note, err := bc.engagement.GetNote(userID, id)
	if err == nil {
		resp["note"] = note
	} else if !errors.Is(err, engagement.ErrNotFound) {
		respondInternalError(c, err, "book note")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Search finds books whose title or author matches the query. An empty
// query returns no results rather than the full catalog.
// GET /api/books/search?q=...
func (bc *BooksController) Search(c *gin.Context) {
	query := c.Query("q")

	books, err := bc.store.SearchBooks(query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": strings.TrimSpace(query),
		"books": books,
	})
}

type bookPayload struct {
	Title           string   `json:"title" binding:"required"`
	ISBN            string   `json:"isbn"`
	Description     string   `json:"description"`
	Publisher       string   `json:"publisher"`
	PublicationYear int      `json:"publication_year"`
	Language        string   `json:"language"`
	PageCount       int      `json:"page_count"`
	ImageURL        string   `json:"image_url"`
	Authors         []string `json:"authors"`
	Genres          []string `json:"genres"`
}

// Create adds a book to the catalog. Submitting a title that already
// exists (case-insensitive) returns the existing book instead of a
// duplicate entry.
// POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	var payload bookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "title is required")
		return
	}
	if payload.PageCount < 0 {
		respondBadRequest(c, "page_count must not be negative")
		return
	}

	book := &entities.Book{
		Title:           strings.TrimSpace(payload.Title),
		ISBN:            entities.NormalizeISBN(payload.ISBN),
		Description:     payload.Description,
		Publisher:       payload.Publisher,
		PublicationYear: payload.PublicationYear,
		Language:        payload.Language,
		PageCount:       payload.PageCount,
		ImageURL:        payload.ImageURL,
	}

	result, created, err := bc.store.CreateBook(book, payload.Authors, payload.Genres)
	if err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"book":    result,
			"message": "a book with this title already exists",
		})
		return
	}

	respondCreated(c, gin.H{"book": result})
}

// Update replaces a book's details and its author/genre associations.
// PUT /api/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload bookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "title is required")
		return
	}
	if payload.PageCount < 0 {
		respondBadRequest(c, "page_count must not be negative")
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	book.Title = strings.TrimSpace(payload.Title)
	book.ISBN = entities.NormalizeISBN(payload.ISBN)
	book.Description = payload.Description
	book.Publisher = payload.Publisher
	book.PublicationYear = payload.PublicationYear
	book.Language = payload.Language
	book.PageCount = payload.PageCount
	book.ImageURL = payload.ImageURL

	if err := bc.store.UpdateBook(book, payload.Authors, payload.Genres); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}
