package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"auth-service/internal/config"
	"auth-service/internal/handler"
	"auth-service/internal/metrics"
	"auth-service/pkg/cache"
	"auth-service/pkg/middleware"
)

// SetupRoutes assembles the request gate in its fixed order: CORS first so
// even limiter and sanitizer rejections carry the headers, then the global
// rate limit, then sanitization, then per-route CSRF/limits/auth.
func SetupRoutes(
	r chi.Router,
	h *handler.AuthHandler,
	oauthHandler *handler.OAuth2Handler,
	auth *middleware.AuthMiddleware,
	csrf *middleware.CSRFGuard,
	store cache.Store,
	cfg config.AppConfig,
) chi.Router {
	origins := cfg.CORSOrigins
	if len(origins) == 0 && !cfg.Production() {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)
	r.Use(middleware.RateLimiter(store, 100, time.Minute, 10*time.Minute, "global_auth"))
	r.Use(middleware.Sanitize())

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/auth", func(api chi.Router) {
		api.Get("/health", h.Health)
		api.Get("/csrf", h.CSRFToken)

		// Credential endpoints carry their own, much tighter windows tracked
		// independently of the global counter.
		api.Group(func(g chi.Router) {
			g.Use(csrf.Verify)
			g.Use(middleware.RateLimiter(store, 5, 15*time.Minute, time.Hour, "login"))
			g.Post("/login", h.HandleLogin)
		})
		api.Group(func(g chi.Router) {
			g.Use(csrf.Verify)
			g.Use(middleware.RateLimiter(store, 3, time.Hour, 24*time.Hour, "register"))
			g.Post("/register", h.HandleRegister)
		})

		if cfg.OAuthEnabled() {
			api.Get("/google/start", oauthHandler.HandleGoogleStart)
			api.Get("/google/callback", oauthHandler.HandleGoogleCallback)
		}

		api.Group(func(g chi.Router) {
			g.Use(auth.Require)
			g.Get("/me", h.HandleMe)
			g.With(csrf.Verify).Post("/logout", h.HandleLogout)
		})
	})

	return r
}
