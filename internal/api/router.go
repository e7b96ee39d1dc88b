package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eternal-forge/eternal-forge/internal/api/handlers"
	"github.com/eternal-forge/eternal-forge/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Deck routes
		deckHandler := handlers.NewDeckHandler(s.store)
		chartHandler := handlers.NewChartHandler(s.store)
		analysisHandler := handlers.NewAnalysisHandler(s.store)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.ListDecks)
			r.Post("/import", deckHandler.ImportDeck)
			r.Post("/parse", deckHandler.ParseDeckList)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Put("/{deckID}", deckHandler.UpdateDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Get("/{deckID}/export", deckHandler.ExportDeck)
			r.Get("/{deckID}/validate", deckHandler.ValidateDeck)
			r.Get("/{deckID}/charts", chartHandler.DeckReport)

			// Analysis routes
			r.Get("/{deckID}/analysis", analysisHandler.FullAnalysis)
			r.Get("/{deckID}/analysis/curve", analysisHandler.Curve)
			r.Get("/{deckID}/analysis/types", analysisHandler.Types)
			r.Get("/{deckID}/analysis/influence", analysisHandler.Influence)
			r.Get("/{deckID}/analysis/synergies", analysisHandler.Synergies)
			r.Get("/{deckID}/power", analysisHandler.PowerBase)
			r.Get("/{deckID}/power/table", analysisHandler.PowerTable)
			r.Get("/{deckID}/power/keycards", analysisHandler.KeyCards)
			r.Post("/{deckID}/power/odds", analysisHandler.PowerOdds)
		})

		// Card routes
		cardHandler := handlers.NewCardHandler(s.store)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.SearchCards)
			r.Get("/count", cardHandler.CountCards)
			r.Get("/name/{name}", cardHandler.GetCardByName)
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		// Simulation routes
		simHandler := handlers.NewSimulationHandler(s.store, s.sessions)
		r.Route("/simulate", func(r chi.Router) {
			r.Route("/draw", func(r chi.Router) {
				r.Post("/opening-hands", simHandler.OpeningHands)
				r.Post("/sessions", simHandler.CreateDrawSession)
				r.Route("/sessions/{sessionID}", func(r chi.Router) {
					r.Get("/", simHandler.GetDrawSession)
					r.Delete("/", simHandler.DeleteDrawSession)
					r.Post("/mulligan", simHandler.Mulligan)
					r.Post("/draw", simHandler.DrawCard)
					r.Post("/reset", simHandler.ResetDrawSession)
				})
			})

			r.Route("/goldfish", func(r chi.Router) {
				r.Post("/run", simHandler.RunGoldfish)
				r.Post("/sessions", simHandler.CreateGoldfishSession)
				r.Route("/sessions/{sessionID}", func(r chi.Router) {
					r.Get("/", simHandler.GetGoldfishSession)
					r.Delete("/", simHandler.DeleteGoldfishSession)
					r.Post("/turn", simHandler.StartTurn)
					r.Post("/play", simHandler.PlayCard)
					r.Post("/auto", simHandler.AutoPlayTurn)
					r.Post("/reset", simHandler.ResetGoldfishSession)
				})
			})

			r.Post("/battle", simHandler.RunBattle)
		})

		// System routes
		systemHandler := handlers.NewSystemHandler(s.store)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/version", systemHandler.GetVersion)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "eternal-forge-api",
	})
}
