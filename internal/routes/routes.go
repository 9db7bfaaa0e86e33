package routes

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/config"
	"github.com/AnshRaj112/feedback-portal/internal/handlers"
	"github.com/AnshRaj112/feedback-portal/internal/middleware"
	"github.com/AnshRaj112/feedback-portal/pkg/clientip"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Deps is everything the router needs. Limiter may be nil, in which case an
// in-process limiter with the configured budget is used.
type Deps struct {
	Config   *config.Config
	Log      zerolog.Logger
	Auth     *middleware.Authenticator
	Accounts handlers.Accounts
	Feedback handlers.Feedback
	Comments handlers.Comments
	Limiter  middleware.WindowLimiter
	Started  time.Time
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	ips := clientip.Resolver{TrustProxy: cfg.TrustProxy}

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Log, ips))
	r.Use(middleware.Recoverer(d.Log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})

	// Health check (no rate limit)
	r.Get("/health", handlers.Health(d.Started))

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.RateLimit(limiter, ips, d.Log))
		api.Use(chimw.Timeout(cfg.RequestTimeout))
		api.Use(middleware.MaxBody(cfg.MaxBodyBytes))

		api.Route("/v1", func(v1 chi.Router) {
			SetupRoutes(v1, d, ips)
		})
	})

	return r
}

// SetupRoutes mounts the v1 API on r.
func SetupRoutes(r chi.Router, d Deps, ips clientip.Resolver) {
	auth := handlers.NewAuthHandler(d.Accounts, d.Log)
	feedback := handlers.NewFeedbackHandler(d.Feedback, d.Log)
	comments := handlers.NewCommentHandler(d.Comments, d.Log)

	r.Get("/", handlers.APIInfo)

	// Auth routes
	r.Post("/auth/register", auth.Register)
	if d.Config.IsProduction() {
		r.With(middleware.LoginRateLimit(ips)).Post("/auth/login", auth.Login)
	} else {
		r.Post("/auth/login", auth.Login)
	}
	r.With(d.Auth.Required).Get("/auth/me", auth.Me)
	r.With(d.Auth.AdminOnly).Get("/auth/admin/ping", auth.AdminPing)

	// Feedback routes
	r.With(d.Auth.Optional).Post("/feedback", feedback.Create)
	r.With(d.Auth.Optional).Get("/feedback", feedback.List)
	r.With(d.Auth.AdminOnly).Patch("/feedback/{id}/status", feedback.UpdateStatus)

	// Comment routes
	r.With(d.Auth.Required).Get("/feedback/{id}/comments", comments.List)
	r.With(d.Auth.Required).Post("/feedback/{id}/comments", comments.Add)
}
