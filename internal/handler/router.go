package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/niangamadou888/bookish-beacon-blog/internal/middleware"
)

// RouterConfig holds what NewRouter needs to mount the API.
type RouterConfig struct {
	Auth       *AuthHandler
	Posts      *PostHandler
	Tokens     middleware.TokenValidator
	CORSOrigin string
}

// NewRouter mounts the health check and the /api routes. Reads are public; every
// mutation and /auth/me sit behind the JWT guard.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", cfg.Auth.HandleRegister)
		r.Post("/auth/login", cfg.Auth.HandleLogin)

		r.Get("/posts", cfg.Posts.HandleList)
		r.Get("/posts/{id}", cfg.Posts.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.Tokens))
			r.Get("/auth/me", cfg.Auth.HandleMe)

			r.Post("/posts", cfg.Posts.HandleCreate)
			r.Put("/posts/{id}", cfg.Posts.HandleUpdate)
			r.Delete("/posts/{id}", cfg.Posts.HandleDelete)
			r.Post("/posts/{id}/comments", cfg.Posts.HandleAddComment)
			r.Delete("/posts/{id}/comments/{commentId}", cfg.Posts.HandleDeleteComment)
		})
	})

	return r
}
