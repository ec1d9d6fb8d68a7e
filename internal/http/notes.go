package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagekeeper/pagekeeper/internal/database/engagement"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// NotesStore defines database operations for structured book notes.
type NotesStore interface {
	CreateNote(note *entities.BookNote) error
	UpdateNote(note *entities.BookNote) error
	GetNote(userID, bookID uint) (*entities.BookNote, error)
	GetNoteByID(userID, noteID uint) (*entities.BookNote, error)
	ListNotes(userID uint) ([]entities.BookNote, error)
}

type NotesController struct {
	store NotesStore
}

func NewNotesController(store NotesStore) *NotesController {
	return &NotesController{store: store}
}

type notePayload struct {
	Thoughts                string     `json:"thoughts"`
	FavoriteCharacters      string     `json:"favorite_characters"`
	LeastFavoriteCharacters string     `json:"least_favorite_characters"`
	FavoriteQuote           string     `json:"favorite_quote"`
	SurprisingMoment        string     `json:"surprising_moment"`
	PageNumberOfMoment      int        `json:"page_number_of_moment"`
	EndingOpinion           string     `json:"ending_opinion"`
	SettingsRating          int        `json:"settings_rating"`
	PlotRating              int        `json:"plot_rating"`
	CharacterRating         int        `json:"character_rating"`
	StyleRating             int        `json:"style_rating"`
	EngagementRating        int        `json:"engagement_rating"`
	OverallRating           int        `json:"overall_rating"`
	StartDate               *time.Time `json:"start_date"`
	FinishDate              *time.Time `json:"finish_date"`
}

func (p *notePayload) valid() bool {
	for _, rating := range []int{
		p.SettingsRating, p.PlotRating, p.CharacterRating,
		p.StyleRating, p.EngagementRating, p.OverallRating,
	} {
		if rating < 0 || rating > 5 {
			return false
		}
	}
	return true
}

func (p *notePayload) apply(note *entities.BookNote) {
	note.Thoughts = p.Thoughts
	note.FavoriteCharacters = p.FavoriteCharacters
	note.LeastFavoriteCharacters = p.LeastFavoriteCharacters
	note.FavoriteQuote = p.FavoriteQuote
	note.SurprisingMoment = p.SurprisingMoment
	note.PageNumberOfMoment = p.PageNumberOfMoment
	note.EndingOpinion = p.EndingOpinion
	note.SettingsRating = p.SettingsRating
	note.PlotRating = p.PlotRating
	note.CharacterRating = p.CharacterRating
	note.StyleRating = p.StyleRating
	note.EngagementRating = p.EngagementRating
	note.OverallRating = p.OverallRating
	note.StartDate = p.StartDate
	note.FinishDate = p.FinishDate
}

// Create adds the user's note for a book. A second note for the same book
// is rejected; edit the existing one instead.
// POST /api/books/:id/note
func (nc *NotesController) Create(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload notePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid note payload")
		return
	}
	if !payload.valid() {
		respondBadRequest(c, "ratings must be between 0 and 5")
		return
	}

	note := &entities.BookNote{BookID: bookID, UserID: GetUserID(c)}
	payload.apply(note)

	if err := nc.store.CreateNote(note); err != nil {
		if errors.Is(err, engagement.ErrDuplicate) {
			respondConflict(c, "a note for this book already exists")
			return
		}
		respondInternalError(c, err, "create note")
		return
	}

	respondCreated(c, gin.H{"note": note})
}

// Update rewrites the user's note for a book.
// PUT /api/notes/:id
func (nc *NotesController) Update(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload notePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid note payload")
		return
	}
	if !payload.valid() {
		respondBadRequest(c, "ratings must be between 0 and 5")
		return
	}

	userID := GetUserID(c)
	note, err := nc.store.GetNoteByID(userID, noteID)
	if err != nil {
		if errors.Is(err, engagement.ErrNotFound) {
			respondNotFound(c, "note")
			return
		}
		respondInternalError(c, err, "get note")
		return
	}

	payload.apply(note)
	if err := nc.store.UpdateNote(note); err != nil {
		respondInternalError(c, err, "update note")
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// GetForBook returns the user's note for a book, if any.
// GET /api/books/:id/note
func (nc *NotesController) GetForBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	note, err := nc.store.GetNote(GetUserID(c), bookID)
	if err != nil {
		if errors.Is(err, engagement.ErrNotFound) {
			respondNotFound(c, "note")
			return
		}
		respondInternalError(c, err, "get note")
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// List returns all of the user's notes.
// GET /api/notes
func (nc *NotesController) List(c *gin.Context) {
	notes, err := nc.store.ListNotes(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes, "total": len(notes)})
}
