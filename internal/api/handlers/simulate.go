package handlers

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eternal-forge/eternal-forge/internal/api/response"
	"github.com/eternal-forge/eternal-forge/internal/deck"
	"github.com/eternal-forge/eternal-forge/internal/sim/battle"
	"github.com/eternal-forge/eternal-forge/internal/sim/draw"
	"github.com/eternal-forge/eternal-forge/internal/sim/goldfish"
	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// SimulationHandler handles draw, goldfish, and battle simulation requests.
type SimulationHandler struct {
	store    *storage.Service
	sessions *SessionStore
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(store *storage.Service, sessions *SessionStore) *SimulationHandler {
	return &SimulationHandler{store: store, sessions: sessions}
}

// seededRNG returns a deterministic rand for non-zero seeds, nil otherwise.
// Simulators treat a nil rand as "seed from the clock".
func seededRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}

func (h *SimulationHandler) loadDeckByID(w http.ResponseWriter, r *http.Request, deckID string) *deck.Deck {
	if deckID == "" {
		response.BadRequest(w, errors.New("deck_id is required"))
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

// --- Draw sessions ---

// CreateDrawSessionRequest starts an interactive draw session.
type CreateDrawSessionRequest struct {
	DeckID string `json:"deck_id"`
	Seed   int64  `json:"seed,omitempty"`
}

// DrawSessionState is the client-visible state of a draw session.
type DrawSessionState struct {
	SessionID string         `json:"session_id"`
	Hand      []draw.Card    `json:"hand"`
	HandStats draw.HandStats `json:"hand_stats"`
	Remaining int            `json:"remaining"`
	Mulligans int            `json:"mulligans"`
	CanMull   bool           `json:"can_mulligan"`
}

func drawSessionState(id string, sim *draw.Simulator) DrawSessionState {
	return DrawSessionState{
		SessionID: id,
		Hand:      sim.Hand(),
		HandStats: sim.HandStats(),
		Remaining: sim.Remaining(),
		Mulligans: sim.MulliganCount(),
		CanMull:   sim.CanMulligan(),
	}
}

// CreateDrawSession shuffles a deck, draws an opening hand, and registers
// the session.
func (h *SimulationHandler) CreateDrawSession(w http.ResponseWriter, r *http.Request) {
	var req CreateDrawSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	d := h.loadDeckByID(w, r, req.DeckID)
	if d == nil {
		return
	}

	sim := draw.New(d, seededRNG(req.Seed))
	id := h.sessions.CreateDraw(sim)

	response.Created(w, drawSessionState(id, sim))
}

// GetDrawSession returns the current hand and deck state of a session.
func (h *SimulationHandler) GetDrawSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Draw(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}
	response.Success(w, drawSessionState(id, sim))
}

// Mulligan takes a mulligan in a draw session.
func (h *SimulationHandler) Mulligan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Draw(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	if !sim.CanMulligan() {
		response.UnprocessableEntity(w, errors.New("no mulligans remaining"))
		return
	}

	sim.Mulligan()
	h.sessions.SaveDraw(id, sim)
	response.Success(w, drawSessionState(id, sim))
}

// DrawCard draws one card in a draw session.
func (h *SimulationHandler) DrawCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Draw(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	card, ok := sim.DrawCard()
	if !ok {
		response.UnprocessableEntity(w, errors.New("deck is empty"))
		return
	}
	h.sessions.SaveDraw(id, sim)

	response.Success(w, map[string]interface{}{
		"drawn": card,
		"state": drawSessionState(id, sim),
	})
}

// ResetDrawSession reshuffles and deals a fresh opening hand.
func (h *SimulationHandler) ResetDrawSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Draw(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	sim.ShuffleAndDraw()
	h.sessions.SaveDraw(id, sim)
	response.Success(w, drawSessionState(id, sim))
}

// DeleteDrawSession discards a draw session.
func (h *SimulationHandler) DeleteDrawSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !h.sessions.DeleteDraw(id) {
		response.NotFound(w, errors.New("session not found"))
		return
	}
	response.NoContent(w)
}

// OpeningHandsRequest runs a Monte Carlo opening hand study.
type OpeningHandsRequest struct {
	DeckID string `json:"deck_id"`
	Trials int    `json:"trials,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

// OpeningHands simulates many opening hands and returns aggregate stats.
func (h *SimulationHandler) OpeningHands(w http.ResponseWriter, r *http.Request) {
	var req OpeningHandsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Trials < 0 {
		response.BadRequest(w, errors.New("trials cannot be negative"))
		return
	}
	if req.Trials == 0 {
		req.Trials = 1000
	}

	d := h.loadDeckByID(w, r, req.DeckID)
	if d == nil {
		return
	}

	stats := draw.SimulateOpeningHands(d, req.Trials, seededRNG(req.Seed))
	response.Success(w, stats)
}

// --- Goldfish sessions ---

// CreateGoldfishSessionRequest starts an interactive goldfish session.
type CreateGoldfishSessionRequest struct {
	DeckID string `json:"deck_id"`
	Seed   int64  `json:"seed,omitempty"`
}

// GoldfishSessionState is the client-visible state of a goldfish session.
type GoldfishSessionState struct {
	SessionID string           `json:"session_id"`
	Summary   goldfish.Summary `json:"summary"`
	Playable  []goldfish.Card  `json:"playable"`
}

func goldfishSessionState(id string, sim *goldfish.Simulator) GoldfishSessionState {
	return GoldfishSessionState{
		SessionID: id,
		Summary:   sim.StateSummary(),
		Playable:  sim.PlayableCards(),
	}
}

// CreateGoldfishSession deals an opening hand and registers the session.
func (h *SimulationHandler) CreateGoldfishSession(w http.ResponseWriter, r *http.Request) {
	var req CreateGoldfishSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	d := h.loadDeckByID(w, r, req.DeckID)
	if d == nil {
		return
	}

	sim := goldfish.New(d, seededRNG(req.Seed))
	id := h.sessions.CreateGoldfish(sim)

	response.Created(w, goldfishSessionState(id, sim))
}

// GetGoldfishSession returns the current state of a goldfish session.
func (h *SimulationHandler) GetGoldfishSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Goldfish(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}
	response.Success(w, goldfishSessionState(id, sim))
}

// StartTurn advances a goldfish session to the next turn.
func (h *SimulationHandler) StartTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Goldfish(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	info := sim.StartTurn()
	h.sessions.SaveGoldfish(id, sim)
	response.Success(w, map[string]interface{}{
		"turn":  info,
		"state": goldfishSessionState(id, sim),
	})
}

// PlayCardRequest plays one card from hand in a goldfish session.
type PlayCardRequest struct {
	HandPosition int `json:"hand_position"`
}

// PlayCard plays the card at a hand position.
func (h *SimulationHandler) PlayCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Goldfish(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	var req PlayCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	result := sim.PlayCard(req.HandPosition)
	if !result.Success {
		response.UnprocessableEntity(w, errors.New(result.Error))
		return
	}
	h.sessions.SaveGoldfish(id, sim)

	response.Success(w, map[string]interface{}{
		"result": result,
		"state":  goldfishSessionState(id, sim),
	})
}

// AutoPlayTurn greedily plays out the current turn of a goldfish session.
func (h *SimulationHandler) AutoPlayTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Goldfish(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	results := sim.AutoPlayTurn()
	h.sessions.SaveGoldfish(id, sim)
	response.Success(w, map[string]interface{}{
		"plays": results,
		"state": goldfishSessionState(id, sim),
	})
}

// ResetGoldfishSession restarts a goldfish session from a fresh shuffle.
func (h *SimulationHandler) ResetGoldfishSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sim, ok := h.sessions.Goldfish(id)
	if !ok {
		response.NotFound(w, errors.New("session not found"))
		return
	}

	sim.Reset()
	h.sessions.SaveGoldfish(id, sim)
	response.Success(w, goldfishSessionState(id, sim))
}

// DeleteGoldfishSession discards a goldfish session.
func (h *SimulationHandler) DeleteGoldfishSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !h.sessions.DeleteGoldfish(id) {
		response.NotFound(w, errors.New("session not found"))
		return
	}
	response.NoContent(w)
}

// GoldfishRunRequest runs a non-interactive goldfish simulation.
type GoldfishRunRequest struct {
	DeckID string `json:"deck_id"`
	Turns  int    `json:"turns,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

// RunGoldfish auto-plays a number of turns and returns per-turn summaries.
func (h *SimulationHandler) RunGoldfish(w http.ResponseWriter, r *http.Request) {
	var req GoldfishRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Turns < 0 {
		response.BadRequest(w, errors.New("turns cannot be negative"))
		return
	}
	if req.Turns == 0 {
		req.Turns = 10
	}

	d := h.loadDeckByID(w, r, req.DeckID)
	if d == nil {
		return
	}

	sim := goldfish.New(d, seededRNG(req.Seed))
	response.Success(w, sim.SimulateTurns(req.Turns))
}

// --- Battle ---

// BattleRequest pits two saved decks against each other.
type BattleRequest struct {
	Deck1ID string `json:"deck1_id"`
	Deck2ID string `json:"deck2_id"`
	Games   int    `json:"games,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
}

// RunBattle simulates games between two decks and returns aggregate results.
func (h *SimulationHandler) RunBattle(w http.ResponseWriter, r *http.Request) {
	var req BattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Games < 0 {
		response.BadRequest(w, errors.New("games cannot be negative"))
		return
	}
	if req.Games == 0 {
		req.Games = 100
	}

	d1 := h.loadDeckByID(w, r, req.Deck1ID)
	if d1 == nil {
		return
	}
	d2 := h.loadDeckByID(w, r, req.Deck2ID)
	if d2 == nil {
		return
	}

	sim := battle.New(d1, d2, seededRNG(req.Seed))
	response.Success(w, sim.SimulateGames(req.Games))
}
