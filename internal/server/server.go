package server

import (
	"net/http"

	"github.com/alfagnish/authapi/internal/config"
	"github.com/alfagnish/authapi/internal/handlers"
	"github.com/alfagnish/authapi/internal/metrics"
	"github.com/alfagnish/authapi/internal/middleware"
	"github.com/alfagnish/authapi/internal/users"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// New creates a fully-configured chi router with all route groups,
// middleware, and handlers wired together.
func New(cfg *config.Config, dir *users.Directory, m *metrics.Metrics, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	// Any origin, no credentials: browsers get a literal "*".
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger, m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	// ── Handlers ────────────────────────────────────────────
	authH := handlers.NewAuthHandler(dir, m, logger)
	usersH := handlers.NewUsersHandler(dir)
	systemH := handlers.NewSystemHandler(dir)

	// ── Route groups ────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		authH.Routes(r)
		r.Route("/users", usersH.Routes)
		r.Route("/system", systemH.Routes)
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())

	if cfg.Debug {
		r.Mount("/debug", chimw.Profiler())
	}

	return r
}
