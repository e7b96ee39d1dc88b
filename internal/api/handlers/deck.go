package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eternal-forge/eternal-forge/internal/api/response"
	"github.com/eternal-forge/eternal-forge/internal/deckio"
	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	store *storage.Service
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(store *storage.Service) *DeckHandler {
	return &DeckHandler{store: store}
}

// ListDecks returns all saved decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.store.ListDecks(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, decks)
}

// GetDeck returns a single deck with its card slots.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return
	}

	record, err := h.store.GetDeck(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if record == nil {
		response.NotFound(w, errors.New("deck not found"))
		return
	}

	response.Success(w, record)
}

// UpdateDeckRequest represents a request to update deck metadata.
type UpdateDeckRequest struct {
	Name   *string `json:"name,omitempty"`
	Format *string `json:"format,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// UpdateDeck updates a deck's name, format, or notes.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return
	}

	var req UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	record, err := h.store.GetDeck(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if record == nil {
		response.NotFound(w, errors.New("deck not found"))
		return
	}

	if req.Name != nil {
		record.Name = *req.Name
	}
	if req.Format != nil {
		record.Format = *req.Format
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := h.store.SaveDeck(r.Context(), record); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, record)
}

// DeleteDeck deletes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return
	}

	if err := h.store.DeleteDeck(r.Context(), deckID); err != nil {
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}

// ImportDeckRequest represents a request to import a deck list.
type ImportDeckRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ImportDeck imports a deck from export-format text and saves it.
func (h *DeckHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	var req ImportDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Content == "" {
		response.BadRequest(w, errors.New("deck content is required"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	result, err := h.store.ImportDeckList(r.Context(), req.Name, req.Content)
	if err != nil {
		response.UnprocessableEntity(w, err)
		return
	}

	response.Created(w, result)
}

// ParseDeckRequest represents a request to parse a deck list without saving.
type ParseDeckRequest struct {
	Content string `json:"content"`
}

// ParseDeckList parses a deck list and returns the parsed entries and any
// warnings, without touching the database.
func (h *DeckHandler) ParseDeckList(w http.ResponseWriter, r *http.Request) {
	var req ParseDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	parsed, err := deckio.Parse(req.Content)
	if err != nil {
		response.UnprocessableEntity(w, err)
		return
	}

	response.Success(w, parsed)
}

// ExportDeck returns the deck in export format as plain text.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return
	}

	snapshot, err := h.store.LoadSnapshot(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if snapshot == nil {
		response.NotFound(w, errors.New("deck not found"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(deckio.Export(snapshot)))
}

// ValidateDeck runs format legality checks against a saved deck.
func (h *DeckHandler) ValidateDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return
	}

	snapshot, err := h.store.LoadSnapshot(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if snapshot == nil {
		response.NotFound(w, errors.New("deck not found"))
		return
	}

	response.Success(w, snapshot.Validate())
}
