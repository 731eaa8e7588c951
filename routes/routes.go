package routes

import (
	"net/http"

	_ "github.com/Dosada05/tabletennis-tournament/docs" // регистрирует swagger-спецификацию
	"github.com/Dosada05/tabletennis-tournament/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Match      *handlers.MatchHandler
	Roster     *handlers.RosterHandler
	Player     *handlers.PlayerHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Post("/", h.Tournament.CreateHandler)
		r.Get("/open", h.Tournament.ListOpenHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetByIDHandler)
			r.Put("/", h.Tournament.UpdateHandler)
			r.Delete("/", h.Tournament.DeleteHandler)
			r.Get("/standings", h.Tournament.StandingsHandler)
			r.Get("/pending", h.Tournament.PendingHandler)
			r.Post("/generate", h.Tournament.GenerateHandler)
			r.Post("/advance", h.Tournament.AdvanceHandler)

			r.Post("/players", h.Roster.JoinHandler)
			r.Delete("/players/{playerID}", h.Roster.LeaveHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Post("/score", h.Match.EnterScoreHandler)
		r.Put("/score", h.Match.EditScoreHandler)
		r.Post("/approve", h.Match.ApproveHandler)
	})

	router.Post("/scoring/validate", h.Match.ValidateHandler)
	router.Get("/ranking", h.Tournament.RankingHandler)
	router.Get("/players/{playerID}", h.Player.HistoryHandler)

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
