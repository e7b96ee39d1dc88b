package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternal-forge/eternal-forge/internal/storage"
)

const testDeckList = `FORMAT:Throne
25 Fire Sigil (Set1 #1)
4 Oni Ronin (Set1 #13)
4 Torch (Set1 #8)
2 Obliterate (Set1 #48)
`

// setupServer builds a server over a temporary migrated database seeded
// with a handful of cards.
func setupServer(t *testing.T) *Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	config := storage.DefaultConfig(dbPath)
	config.AutoMigrate = true
	db, err := storage.Open(config)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewService(db)
	seed := []*storage.Card{
		{Name: "Fire Sigil", CardType: "Sigil", Influence: "{F}", SetNumber: 1, EternalID: 1},
		{Name: "Oni Ronin", CardType: "Unit", Cost: 1, Influence: "{F}", Attack: 2, Health: 1, UnitTypes: "Oni, Warrior", SetNumber: 1, EternalID: 13},
		{Name: "Torch", CardType: "Fast Spell", Cost: 1, Influence: "{F}", SetNumber: 1, EternalID: 8},
		{Name: "Obliterate", CardType: "Spell", Cost: 6, Influence: "{F}{F}", SetNumber: 1, EternalID: 48},
	}
	for _, c := range seed {
		require.NoError(t, store.SaveCard(context.Background(), c))
	}

	return NewServer(DefaultConfig(), store)
}

// doJSON performs a request with a JSON body against the server's router.
func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" envelope of a response into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// importTestDeck imports the standard test deck and returns its ID.
func importTestDeck(t *testing.T, s *Server, name string) string {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/v1/decks/import", map[string]string{
		"name":    name,
		"content": testDeckList,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "import deck: %s", rec.Body.String())

	var result struct {
		DeckID string `json:"deck_id"`
	}
	decodeData(t, rec, &result)
	require.NotEmpty(t, result.DeckID)
	return result.DeckID
}

func TestHealthCheck(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestContentTypeEnforced(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks/parse", strings.NewReader(`{"content":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestDeckLifecycle(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Burn Queen")

	// List shows the deck.
	rec := doJSON(t, s, http.MethodGet, "/api/v1/decks/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, rec, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Burn Queen", summaries[0].Name)

	// Get returns slots.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record struct {
		Name  string `json:"name"`
		Slots []struct {
			Quantity int `json:"quantity"`
		} `json:"slots"`
	}
	decodeData(t, rec, &record)
	assert.Equal(t, "Burn Queen", record.Name)
	assert.Len(t, record.Slots, 4)

	// Update renames.
	rec = doJSON(t, s, http.MethodPut, "/api/v1/decks/"+deckID, map[string]string{"name": "Mono Fire"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID, nil)
	decodeData(t, rec, &record)
	assert.Equal(t, "Mono Fire", record.Name)

	// Export round-trips the list as plain text.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "25 Fire Sigil (Set1 #1)")

	// Validate reports the 35-card deck as illegal.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID+"/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var validation struct {
		Valid bool `json:"valid"`
	}
	decodeData(t, rec, &validation)
	assert.False(t, validation.Valid)

	// Delete removes it.
	rec = doJSON(t, s, http.MethodDelete, "/api/v1/decks/"+deckID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseDeckList(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/decks/parse", map[string]string{
		"content": testDeckList,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var parsed struct {
		Format string `json:"format"`
		Cards  []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"cards"`
	}
	decodeData(t, rec, &parsed)
	assert.Equal(t, "Throne", parsed.Format)
	assert.Len(t, parsed.Cards, 4)
}

func TestAnalysisEndpoints(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Analysis Deck")

	paths := []string{
		"/api/v1/decks/%s/analysis",
		"/api/v1/decks/%s/analysis/curve",
		"/api/v1/decks/%s/analysis/types",
		"/api/v1/decks/%s/analysis/influence",
		"/api/v1/decks/%s/analysis/synergies",
		"/api/v1/decks/%s/power",
		"/api/v1/decks/%s/power/table",
		"/api/v1/decks/%s/power/keycards",
	}
	for _, p := range paths {
		rec := doJSON(t, s, http.MethodGet, fmt.Sprintf(p, deckID), nil)
		assert.Equal(t, http.StatusOK, rec.Code, "GET %s: %s", p, rec.Body.String())
	}

	// Missing deck gives 404.
	rec := doJSON(t, s, http.MethodGet, "/api/v1/decks/no-such-deck/analysis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPowerBaseCounts(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Power Deck")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID+"/power", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		TotalCards int `json:"total_cards"`
		TotalPower int `json:"total_power"`
		Undepleted int `json:"undepleted"`
	}
	decodeData(t, rec, &summary)
	assert.Equal(t, 35, summary.TotalCards)
	assert.Equal(t, 25, summary.TotalPower)
	assert.Equal(t, 25, summary.Undepleted)
}

func TestPowerOdds(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Odds Deck")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/decks/"+deckID+"/power/odds", map[string]interface{}{
		"power_needed": 2,
		"by_turn":      3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Probability float64 `json:"probability"`
	}
	decodeData(t, rec, &result)
	assert.Greater(t, result.Probability, 0.5)
	assert.LessOrEqual(t, result.Probability, 1.0)

	// by_turn is required.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/decks/"+deckID+"/power/odds", map[string]interface{}{
		"power_needed": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartReport(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Chart Deck")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/decks/"+deckID+"/charts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestCardEndpoints(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/cards/?q=oni", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cards []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, rec, &cards)
	require.Len(t, cards, 1)
	assert.Equal(t, "Oni Ronin", cards[0].Name)

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/cards/%d", cards[0].ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/cards/name/Torch", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/cards/name/Nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/cards/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var count struct {
		Count int `json:"count"`
	}
	decodeData(t, rec, &count)
	assert.Equal(t, 4, count.Count)
}

func TestDrawSessionLifecycle(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Draw Deck")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/sessions", map[string]interface{}{
		"deck_id": deckID,
		"seed":    42,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var state struct {
		SessionID string            `json:"session_id"`
		Hand      []json.RawMessage `json:"hand"`
		Remaining int               `json:"remaining"`
		CanMull   bool              `json:"can_mulligan"`
	}
	decodeData(t, rec, &state)
	require.NotEmpty(t, state.SessionID)
	assert.Len(t, state.Hand, 7)
	assert.Equal(t, 28, state.Remaining)
	assert.True(t, state.CanMull)
	sessionID := state.SessionID

	// First mulligan keeps 7 cards.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/sessions/"+sessionID+"/mulligan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &state)
	assert.Len(t, state.Hand, 7)

	// Second mulligan goes to 6.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/sessions/"+sessionID+"/mulligan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &state)
	assert.Len(t, state.Hand, 6)
	assert.False(t, state.CanMull)

	// Third is refused.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/sessions/"+sessionID+"/mulligan", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Drawing a card shrinks the deck.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/sessions/"+sessionID+"/draw", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Reset restores a full 7-card hand and the mulligan allowance.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/sessions/"+sessionID+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &state)
	assert.Len(t, state.Hand, 7)
	assert.True(t, state.CanMull)

	// Delete, then the session is gone.
	rec = doJSON(t, s, http.MethodDelete, "/api/v1/simulate/draw/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodGet, "/api/v1/simulate/draw/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpeningHands(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Monte Carlo Deck")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/simulate/draw/opening-hands", map[string]interface{}{
		"deck_id": deckID,
		"trials":  200,
		"seed":    7,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats struct {
		Simulations int `json:"num_simulations"`
	}
	decodeData(t, rec, &stats)
	assert.Equal(t, 200, stats.Simulations)
}

func TestGoldfishSessionLifecycle(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Goldfish Deck")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/simulate/goldfish/sessions", map[string]interface{}{
		"deck_id": deckID,
		"seed":    11,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var state struct {
		SessionID string `json:"session_id"`
		Summary   struct {
			Turn     int `json:"turn"`
			HandSize int `json:"hand_size"`
		} `json:"summary"`
	}
	decodeData(t, rec, &state)
	require.NotEmpty(t, state.SessionID)
	assert.Equal(t, 7, state.Summary.HandSize)
	sessionID := state.SessionID

	// Start turn 1, then auto-play it.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/goldfish/sessions/"+sessionID+"/turn", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/goldfish/sessions/"+sessionID+"/auto", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/simulate/goldfish/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &state)
	assert.Equal(t, 1, state.Summary.Turn)

	// Playing an out-of-range position fails cleanly.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/goldfish/sessions/"+sessionID+"/play", map[string]int{
		"hand_position": 99,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/goldfish/sessions/"+sessionID+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &state)
	assert.Equal(t, 0, state.Summary.Turn)

	rec = doJSON(t, s, http.MethodDelete, "/api/v1/simulate/goldfish/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGoldfishRun(t *testing.T) {
	s := setupServer(t)
	deckID := importTestDeck(t, s, "Run Deck")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/simulate/goldfish/run", map[string]interface{}{
		"deck_id": deckID,
		"turns":   5,
		"seed":    3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var turns []struct {
		Turn int `json:"turn"`
	}
	decodeData(t, rec, &turns)
	require.Len(t, turns, 5)
	assert.Equal(t, 1, turns[0].Turn)
	assert.Equal(t, 5, turns[4].Turn)
}

func TestBattle(t *testing.T) {
	s := setupServer(t)
	deck1 := importTestDeck(t, s, "Battle Deck 1")
	deck2 := importTestDeck(t, s, "Battle Deck 2")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/simulate/battle", map[string]interface{}{
		"deck1_id": deck1,
		"deck2_id": deck2,
		"games":    20,
		"seed":     5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var agg struct {
		GamesPlayed int `json:"games_played"`
		Player1Wins int `json:"player1_wins"`
		Player2Wins int `json:"player2_wins"`
		Draws       int `json:"draws"`
	}
	decodeData(t, rec, &agg)
	assert.Equal(t, 20, agg.GamesPlayed)
	assert.Equal(t, 20, agg.Player1Wins+agg.Player2Wins+agg.Draws)

	// A missing deck is a 404.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/simulate/battle", map[string]interface{}{
		"deck1_id": deck1,
		"deck2_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemStatus(t *testing.T) {
	s := setupServer(t)
	importTestDeck(t, s, "Status Deck")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Version   string `json:"version"`
		CardCount int    `json:"card_count"`
		DeckCount int    `json:"deck_count"`
	}
	decodeData(t, rec, &status)
	assert.Equal(t, "dev", status.Version)
	assert.Equal(t, 4, status.CardCount)
	assert.Equal(t, 1, status.DeckCount)
}
