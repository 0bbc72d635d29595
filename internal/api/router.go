package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nico/impostor-party-server/internal/api/handlers"
	"github.com/nico/impostor-party-server/internal/api/middleware"
	"github.com/nico/impostor-party-server/internal/config"
	"github.com/nico/impostor-party-server/internal/push"
	"github.com/nico/impostor-party-server/internal/service"
)

func NewRouter(services *service.Services, hub *push.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	roomHandler := handlers.NewRoomHandler(services.Game)
	wordHandler := handlers.NewWordHandler(services.Word)
	watchHandler := handlers.NewWatchHandler(services.Game, hub)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			// Public: creating or joining a room is what mints a session.
			r.Post("/", roomHandler.Create)
			r.Post("/{code}/join", roomHandler.Join)

			// Everything else requires the session token from create/join.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Session(services.Session))
				r.Get("/{code}", roomHandler.State)
				r.Get("/{code}/watch", watchHandler.Watch)
				r.Post("/{code}/restart", roomHandler.Restart)
				r.Post("/{code}/call-vote", roomHandler.CallVote)
				r.Post("/{code}/vote", roomHandler.CastVote)
				r.Post("/{code}/continue", roomHandler.Continue)
			})
		})

		// Content administration, operator-only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(cfg))

			r.Route("/words", func(r chi.Router) {
				r.Get("/", wordHandler.List)
				r.Post("/", wordHandler.Add)
				r.Get("/top", wordHandler.Top)
				r.Get("/stats", wordHandler.Stats)
				r.Delete("/{id}", wordHandler.Deactivate)
				r.Post("/{id}/feedback", wordHandler.Feedback)
			})

			r.Route("/themes", func(r chi.Router) {
				r.Get("/", wordHandler.ListThemes)
				r.Post("/", wordHandler.CreateTheme)
				r.Post("/{id}/items/{index}/feedback", wordHandler.ThemeItemFeedback)
			})
		})
	})

	return r
}
