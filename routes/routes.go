package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/courtline/bracket-engine/handlers"
	"github.com/courtline/bracket-engine/middleware"
)

// SetupRoutes wires the HTTP surface. Reads are public; everything that
// mutates a tournament requires an organizer or admin token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	tournamentHandler *handlers.TournamentHandler,
	entrantHandler *handlers.EntrantHandler,
	bracketHandler *handlers.BracketHandler,
	resultHandler *handlers.ResultHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.Authorize(middleware.RoleOrganizer, middleware.RoleAdmin)

	router.Route("/tournaments", func(r chi.Router) {
		// Public reads.
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/entrants", entrantHandler.ListHandler)
		r.Get("/{tournamentID}/bracket", bracketHandler.NodesHandler)
		r.Get("/{tournamentID}/standings", bracketHandler.StandingsHandler)
		r.Get("/{tournamentID}/ranking", bracketHandler.RankingHandler)

		// Team registration is open to any authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/entrants", entrantHandler.RegisterHandler)
		})

		// Organizer mutations.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Put("/{tournamentID}", tournamentHandler.UpdateHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)

			r.Put("/{tournamentID}/seeds", entrantHandler.AssignSeedsHandler)
			r.Post("/{tournamentID}/bracket", bracketHandler.GenerateHandler)

			r.Post("/{tournamentID}/nodes/{nodeID}/schedule", resultHandler.ScheduleHandler)
			r.Post("/{tournamentID}/nodes/{nodeID}/start", resultHandler.StartHandler)
			r.Post("/{tournamentID}/nodes/{nodeID}/result", resultHandler.ReportHandler)
			r.Post("/{tournamentID}/nodes/{nodeID}/reopen", resultHandler.ReopenHandler)
			r.Post("/{tournamentID}/swiss/advance", resultHandler.AdvanceSwissHandler)
		})
	})

	router.Route("/entrants", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{entrantID}/withdraw", entrantHandler.WithdrawHandler)
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/{entrantID}/approve", entrantHandler.ApproveHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
