package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eternal-forge/eternal-forge/internal/analysis"
	"github.com/eternal-forge/eternal-forge/internal/api/response"
	"github.com/eternal-forge/eternal-forge/internal/deck"
	"github.com/eternal-forge/eternal-forge/internal/power"
	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// AnalysisHandler handles deck analysis API requests.
type AnalysisHandler struct {
	store *storage.Service
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(store *storage.Service) *AnalysisHandler {
	return &AnalysisHandler{store: store}
}

// loadDeck fetches a deck snapshot by the deckID URL param, writing the
// error response itself when the deck can't be loaded.
func (h *AnalysisHandler) loadDeck(w http.ResponseWriter, r *http.Request) *deck.Deck {
	deckID := chi.URLParam(r, "deckID")
	if deckID == "" {
		response.BadRequest(w, errors.New("deck ID is required"))
		return nil
	}

	snapshot, err := h.store.LoadSnapshot(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return nil
	}
	if snapshot == nil {
		response.NotFound(w, errors.New("deck not found"))
		return nil
	}
	return snapshot
}

// FullAnalysis returns curve, types, influence, and synergy analysis in one
// payload.
func (h *AnalysisHandler) FullAnalysis(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}
	response.Success(w, analysis.NewAnalyzer(d).FullAnalysis())
}

// Curve returns the mana curve analysis.
func (h *AnalysisHandler) Curve(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}
	response.Success(w, analysis.NewAnalyzer(d).AnalyzeCurve())
}

// Types returns the card type distribution.
func (h *AnalysisHandler) Types(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}
	response.Success(w, analysis.NewAnalyzer(d).AnalyzeTypeDistribution())
}

// Influence returns the influence requirements analysis.
func (h *AnalysisHandler) Influence(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}
	response.Success(w, analysis.NewAnalyzer(d).AnalyzeInfluenceRequirements())
}

// Synergies returns keyword and tribal synergy detection results.
func (h *AnalysisHandler) Synergies(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}
	response.Success(w, analysis.NewAnalyzer(d).AnalyzeSynergies())
}

// PowerBaseSummary describes a deck's power base composition.
type PowerBaseSummary struct {
	TotalCards       int                       `json:"total_cards"`
	TotalPower       int                       `json:"total_power"`
	Undepleted       int                       `json:"undepleted"`
	Depleted         int                       `json:"depleted"`
	Conditional      int                       `json:"conditional"`
	InfluenceSources map[string]int            `json:"influence_sources"`
	ByCategory       map[string][]power.Source `json:"by_category"`
}

// PowerBase returns the power base classification for a deck.
func (h *AnalysisHandler) PowerBase(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}

	a := power.NewAnalyzer(d)
	response.Success(w, PowerBaseSummary{
		TotalCards:       a.TotalCards(),
		TotalPower:       a.TotalPowerCount(),
		Undepleted:       a.UndepletedCount(),
		Depleted:         a.DepletedCount(),
		Conditional:      a.ConditionalCount(),
		InfluenceSources: a.InfluenceSources(),
		ByCategory:       a.SourcesByCategory(),
	})
}

// PowerTableResponse bundles the per-turn power and influence odds tables.
type PowerTableResponse struct {
	Power     []power.TableRow            `json:"power"`
	Influence map[string][]power.TableRow `json:"influence"`
}

// PowerTable returns the per-turn odds tables. Query param: turns (default 10).
func (h *AnalysisHandler) PowerTable(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}

	turns := 10
	if raw := r.URL.Query().Get("turns"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, errors.New("turns must be a positive integer"))
			return
		}
		turns = parsed
	}

	a := power.NewAnalyzer(d)
	response.Success(w, PowerTableResponse{
		Power:     a.PowerTable(turns),
		Influence: a.InfluenceTable(turns),
	})
}

// KeyCards returns castability odds for the deck's expensive cards.
func (h *AnalysisHandler) KeyCards(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}
	response.Success(w, power.NewAnalyzer(d).KeyCardAnalysis(d))
}

// PowerOddsRequest asks for the probability of hitting a power and
// influence requirement by a given turn.
type PowerOddsRequest struct {
	PowerNeeded     int            `json:"power_needed"`
	InfluenceNeeded map[string]int `json:"influence_needed,omitempty"`
	ByTurn          int            `json:"by_turn"`
}

// PowerOddsResponse is the computed probability for one requirement.
type PowerOddsResponse struct {
	PowerNeeded     int            `json:"power_needed"`
	InfluenceNeeded map[string]int `json:"influence_needed,omitempty"`
	ByTurn          int            `json:"by_turn"`
	Probability     float64        `json:"probability"`
}

// PowerOdds computes the odds of meeting a specific requirement by a turn.
func (h *AnalysisHandler) PowerOdds(w http.ResponseWriter, r *http.Request) {
	d := h.loadDeck(w, r)
	if d == nil {
		return
	}

	var req PowerOddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.ByTurn <= 0 {
		response.BadRequest(w, errors.New("by_turn must be positive"))
		return
	}
	if req.PowerNeeded < 0 {
		response.BadRequest(w, errors.New("power_needed cannot be negative"))
		return
	}

	a := power.NewAnalyzer(d)
	prob := a.CombinedOdds(req.PowerNeeded, req.InfluenceNeeded, req.ByTurn)

	response.Success(w, PowerOddsResponse{
		PowerNeeded:     req.PowerNeeded,
		InfluenceNeeded: req.InfluenceNeeded,
		ByTurn:          req.ByTurn,
		Probability:     prob,
	})
}
