package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eternal-forge/eternal-forge/internal/analysis"
	"github.com/eternal-forge/eternal-forge/internal/api/response"
	"github.com/eternal-forge/eternal-forge/internal/charts"
	"github.com/eternal-forge/eternal-forge/internal/power"
	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// ChartHandler renders deck analysis charts as HTML pages.
type ChartHandler struct {
	store *storage.Service
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(store *storage.Service) *ChartHandler {
	return &ChartHandler{store: store}
}

// DeckReport renders the curve, type, and power odds charts for a deck as
// a single HTML page.
func (h *ChartHandler) DeckReport(w http.ResponseWriter, r *http.Request) {
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

	snapshot := record.Snapshot()
	full := analysis.NewAnalyzer(snapshot).FullAnalysis()
	rows := power.NewAnalyzer(snapshot).PowerTable(10)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderDeckReport(w, record.Name, full, rows); err != nil {
		response.InternalError(w, err)
	}
}
