package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kotoba/internal/entities"
	"github.com/mrlokans/kotoba/internal/utils"
)

// DeckStore is the deck service as seen by the HTTP layer.
type DeckStore interface {
	BackendName() string
	GetAllDecks(ctx context.Context) ([]entities.Deck, error)
	GetDeckByID(ctx context.Context, id uint) (*entities.Deck, error)
	AddDeck(ctx context.Context, deck *entities.Deck) (uint, error)
	UpdateDeck(ctx context.Context, id uint, changes entities.DeckChanges) (int, error)
	UpdateDeckName(ctx context.Context, id uint, name string) (int, error)
	DeleteDeck(ctx context.Context, id uint) error
	ExportAllData(ctx context.Context) (string, error)
	ImportData(ctx context.Context, text string) error
}

// DeckParser turns an uploaded markdown document into an unsaved deck.
type DeckParser interface {
	Parse(content, origin string) entities.Deck
}

type DecksController struct {
	store          DeckStore
	parser         DeckParser
	maxUploadBytes int64
}

func NewDecksController(store DeckStore, parser DeckParser, maxUploadBytes int64) *DecksController {
	return &DecksController{
		store:          store,
		parser:         parser,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateDeckRequest is the body of POST /api/decks.
type CreateDeckRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Cards       []entities.Card `json:"cards"`
}

// RenameDeckRequest is the body of PUT /api/decks/:id/name.
type RenameDeckRequest struct {
	Name string `json:"name" binding:"required"`
}

// ParseDeckResponse is returned by POST /api/decks/parse.
type ParseDeckResponse struct {
	Deck  entities.Deck `json:"deck"`
	Saved bool          `json:"saved"`
}

// ListDecks handles GET /api/decks
func (dc *DecksController) ListDecks(c *gin.Context) {
	decks, err := dc.store.GetAllDecks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list decks")
		return
	}
	if decks == nil {
		decks = []entities.Deck{}
	}
	c.JSON(http.StatusOK, decks)
}

// GetDeck handles GET /api/decks/:id
func (dc *DecksController) GetDeck(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deck, err := dc.store.GetDeckByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get deck")
		return
	}
	if deck == nil {
		respondNotFound(c, "deck")
		return
	}
	c.JSON(http.StatusOK, deck)
}

// CreateDeck handles POST /api/decks
func (dc *DecksController) CreateDeck(c *gin.Context) {
	var req CreateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	deck := entities.Deck{
		Name:        req.Name,
		Description: req.Description,
		Cards:       req.Cards,
	}
	id, err := dc.store.AddDeck(c.Request.Context(), &deck)
	if err != nil {
		respondInternalError(c, err, "create deck")
		return
	}
	respondCreated(c, gin.H{"id": id})
}

// UpdateDeck handles PATCH /api/decks/:id
// The body is a partial deck; updatedAt is always set by the server.
func (dc *DecksController) UpdateDeck(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var changes entities.DeckChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	updated, err := dc.store.UpdateDeck(c.Request.Context(), id, changes)
	if err != nil {
		respondInternalError(c, err, "update deck")
		return
	}
	if updated == 0 {
		respondNotFound(c, "deck")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// RenameDeck handles PUT /api/decks/:id/name
func (dc *DecksController) RenameDeck(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RenameDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	updated, err := dc.store.UpdateDeckName(c.Request.Context(), id, req.Name)
	if err != nil {
		respondInternalError(c, err, "rename deck")
		return
	}
	if updated == 0 {
		respondNotFound(c, "deck")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteDeck handles DELETE /api/decks/:id
func (dc *DecksController) DeleteDeck(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := dc.store.DeleteDeck(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "delete deck")
		return
	}
	respondSuccess(c, "deck deleted")
}

// Export handles GET /api/export
func (dc *DecksController) Export(c *gin.Context) {
	data, err := dc.store.ExportAllData(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "export decks")
		return
	}

	filename := fmt.Sprintf("kotoba-decks-%s.json", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(data))
}

// Import handles POST /api/import
// The body is an export document; all existing decks are replaced.
func (dc *DecksController) Import(c *gin.Context) {
	body, ok := dc.readLimited(c, c.Request.Body)
	if !ok {
		return
	}

	if err := dc.store.ImportData(c.Request.Context(), string(body)); err != nil {
		respondServiceError(c, err, "import decks")
		return
	}
	respondSuccess(c, "decks imported")
}

// Parse handles POST /api/decks/parse
// Expects a multipart "file" field; "save=true" also stores the deck.
func (dc *DecksController) Parse(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}
	if dc.maxUploadBytes > 0 && fileHeader.Size > dc.maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return
	}
	defer file.Close()

	content, ok := dc.readLimited(c, file)
	if !ok {
		return
	}

	deck := dc.parser.Parse(string(content), utils.SanitizeFilename(fileHeader.Filename))

	save, _ := strconv.ParseBool(c.PostForm("save"))
	if save {
		if _, err := dc.store.AddDeck(c.Request.Context(), &deck); err != nil {
			respondInternalError(c, err, "save parsed deck")
			return
		}
	}

	c.JSON(http.StatusOK, ParseDeckResponse{Deck: deck, Saved: save})
}

func (dc *DecksController) readLimited(c *gin.Context, r io.Reader) ([]byte, bool) {
	if dc.maxUploadBytes > 0 {
		r = io.LimitReader(r, dc.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return nil, false
	}
	if dc.maxUploadBytes > 0 && int64(len(data)) > dc.maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "payload too large")
		return nil, false
	}
	return data, true
}
