package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fixam/fixam-site/internal/feedback"
	"github.com/fixam/fixam-site/internal/handoff"
	httpmiddleware "github.com/fixam/fixam-site/internal/http/middleware"
	"github.com/fixam/fixam-site/internal/leads"
	"github.com/fixam/fixam-site/internal/news"
	"github.com/fixam/fixam-site/internal/testimonials"
	"github.com/fixam/fixam-site/pkg/httputil"
	"github.com/fixam/fixam-site/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	LeadsHandler        *leads.Handler
	FeedbackHandler     *feedback.Handler
	TestimonialsHandler *testimonials.Handler
	NewsHandler         *news.Handler
	HandoffHandler      *handoff.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per-IP budget for form posts. Zero disables limiting.
	FormRateLimitRPS   float64
	FormRateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.OK(w, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		// Form submissions
		api.Group(func(forms chi.Router) {
			forms.Use(httpmiddleware.RateLimit(cfg.FormRateLimitRPS, cfg.FormRateLimitBurst))
			if cfg.LeadsHandler != nil {
				forms.Post("/leads", cfg.LeadsHandler.Submit)
			}
			if cfg.FeedbackHandler != nil {
				forms.Post("/feedback", cfg.FeedbackHandler.Submit)
			}
		})

		if cfg.TestimonialsHandler != nil {
			api.Get("/feedbacks", cfg.TestimonialsHandler.List)
		}
		if cfg.NewsHandler != nil {
			api.Get("/news", cfg.NewsHandler.List)
		}
		if cfg.HandoffHandler != nil {
			api.Post("/botpress/handoff", cfg.HandoffHandler.Handle)
		}
	})

	return r
}
