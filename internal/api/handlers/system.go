package handlers

import (
	"net/http"

	"github.com/eternal-forge/eternal-forge/internal/api/response"
	"github.com/eternal-forge/eternal-forge/internal/storage"
	"github.com/eternal-forge/eternal-forge/internal/version"
)

// SystemHandler handles system status API requests.
type SystemHandler struct {
	store *storage.Service
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(store *storage.Service) *SystemHandler {
	return &SystemHandler{store: store}
}

// StatusResponse summarizes the server state.
type StatusResponse struct {
	Version   string `json:"version"`
	CardCount int    `json:"card_count"`
	DeckCount int    `json:"deck_count"`
}

// GetStatus returns the version plus card and deck counts.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	cardCount, err := h.store.CountCards(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	decks, err := h.store.ListDecks(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, StatusResponse{
		Version:   version.GetVersion(),
		CardCount: cardCount,
		DeckCount: len(decks),
	})
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"version": version.GetVersion()})
}
