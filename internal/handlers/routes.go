package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger    *slog.Logger
	Sessions  SessionService
	Views     ViewService
	Comments  CommentService
	Playlists PlaylistService
	Tokens    middleware.TokenVerifier
	Limiter   RateLimiter
	DB        Pinger

	// AllowedOrigins configures CORS; empty means same-origin only.
	AllowedOrigins []string
}

// NewRouter wires every HTTP endpoint into a chi router.
func NewRouter(deps Dependencies) http.Handler {
	users := UserHandler{Sessions: deps.Sessions, Views: deps.Views, Limiter: deps.Limiter}
	comments := CommentHandler{Comments: deps.Comments, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	health := HealthHandler{DB: deps.DB}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics)

	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", health.Handle)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(deps.Tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", users.Register)
			r.Post("/login", users.Login)
			r.Post("/refresh-token", users.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", users.Logout)
				r.Post("/change-password", users.ChangePassword)
				r.Get("/current", users.Current)
				r.Get("/channel/{username}", users.Channel)
				r.Get("/history", users.History)
				r.Post("/history/{videoId}", users.RecordWatch)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{videoId}", comments.ListForVideo)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/{playlistId}", playlists.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", playlists.Create)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
			})
		})
	})

	return r
}
