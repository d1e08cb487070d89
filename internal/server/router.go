package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/placeshare/placeshare/internal/handler"
	"github.com/placeshare/placeshare/internal/middleware"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 64 << 10

// RouterConfig carries the handlers and middleware settings for NewRouter.
type RouterConfig struct {
	Logger        *slog.Logger
	Places        *handler.PlaceHandler
	Users         *handler.UserHandler
	Health        *handler.HealthHandler
	Images        http.Handler
	Metrics       http.Handler
	Verifier      middleware.TokenVerifier
	RateLimit     middleware.RateLimitConfig
	CORS          middleware.CORSConfig
	IsDevelopment bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := handler.New()
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Probes and metrics (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	// Committed images
	if cfg.Images != nil {
		r.Handle("/uploads/images/*", http.StripPrefix("/uploads/images", cfg.Images))
	}

	authCfg := middleware.AuthConfig{
		Logger:   cfg.Logger,
		Verifier: cfg.Verifier,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
		r.Use(middleware.RateLimitIP(cfg.RateLimit))

		r.Get("/users", cfg.Users.List)

		r.Route("/places", func(r chi.Router) {
			r.Get("/user/{uid}", cfg.Places.ListByUser)
			r.Get("/{pid}", cfg.Places.Get)

			// Mutations require a principal.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				r.Use(middleware.RateLimitPrincipal(cfg.RateLimit))

				r.Post("/", cfg.Places.Create)
				r.With(middleware.MaxBodySize(maxJSONBody)).Patch("/{pid}", cfg.Places.Update)
				r.Delete("/{pid}", cfg.Places.Delete)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
