package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eternal-forge/eternal-forge/internal/api/response"
	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// CardHandler handles card database API requests.
type CardHandler struct {
	store *storage.Service
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(store *storage.Service) *CardHandler {
	return &CardHandler{store: store}
}

// SearchCards searches cards by name substring. Query params: q, limit.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	cards, err := h.store.SearchCards(r.Context(), query, limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, cards)
}

// GetCard returns a single card by database ID.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil {
		response.BadRequest(w, errors.New("card ID must be an integer"))
		return
	}

	card, err := h.store.GetCard(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if card == nil {
		response.NotFound(w, errors.New("card not found"))
		return
	}

	response.Success(w, card)
}

// GetCardByName returns a single card by exact name.
func (h *CardHandler) GetCardByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("card name is required"))
		return
	}

	card, err := h.store.GetCardByName(r.Context(), name)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if card == nil {
		response.NotFound(w, errors.New("card not found"))
		return
	}

	response.Success(w, card)
}

// CountCards returns the number of cards in the database.
func (h *CardHandler) CountCards(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountCards(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, map[string]int{"count": count})
}
