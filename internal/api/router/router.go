package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/puntaluxe/growth-engine/internal/admin"
	"github.com/puntaluxe/growth-engine/internal/agencies"
	httpmiddleware "github.com/puntaluxe/growth-engine/internal/http/middleware"
	"github.com/puntaluxe/growth-engine/internal/listings"
	"github.com/puntaluxe/growth-engine/internal/sniper"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	SniperHandler    *sniper.Handler
	FeedSocket       *sniper.FeedSocket
	ListingsHandler  *listings.Handler
	AgenciesHandler  *agencies.Handler
	AdminDashboard   *admin.DashboardHandler
	MetricsHandler   http.Handler
	PartnerJWTSecret string

	CORSAllowedOrigins []string

	// Requests/sec allowed on the public registration endpoint.
	RegistrationRate  float64
	RegistrationBurst int
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
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ListingsHandler != nil {
			public.Get("/listings", cfg.ListingsHandler.List)
			public.Get("/listings/{id}", cfg.ListingsHandler.Get)
		}
		// Self-service agency registration
		if cfg.AgenciesHandler != nil {
			rate, burst := cfg.RegistrationRate, cfg.RegistrationBurst
			if rate <= 0 {
				rate = 1
			}
			if burst <= 0 {
				burst = 5
			}
			public.With(httpmiddleware.RateLimit(rate, burst)).
				Post("/partners/agencies", cfg.AgenciesHandler.Register)
		}
	})

	// Partner routes (protected by JWT)
	if cfg.PartnerJWTSecret != "" {
		r.Route("/partners", func(partners chi.Router) {
			partners.Use(httpmiddleware.PartnerJWT(cfg.PartnerJWTSecret))
			partners.Route("/sniper", func(sn chi.Router) {
				if cfg.SniperHandler != nil {
					sn.Route("/prospects", func(p chi.Router) {
						p.Get("/", cfg.SniperHandler.List)
						p.Post("/{id}/approve", cfg.SniperHandler.Approve)
						p.Post("/{id}/video-audit", cfg.SniperHandler.FlagForVideoAudit)
						p.Post("/{id}/reject", cfg.SniperHandler.Reject)
					})
				}
				if cfg.FeedSocket != nil {
					sn.Get("/feed", cfg.FeedSocket.Handle)
				}
			})
			if cfg.AgenciesHandler != nil {
				partners.Get("/agencies/{id}", cfg.AgenciesHandler.Get)
			}
		})

		r.Route("/admin", func(adm chi.Router) {
			adm.Use(httpmiddleware.PartnerJWT(cfg.PartnerJWTSecret))
			if cfg.AdminDashboard != nil {
				adm.Get("/dashboard", cfg.AdminDashboard.GetDashboard)
			}
			if cfg.ListingsHandler != nil {
				adm.Put("/listings/{id}", cfg.ListingsHandler.Upsert)
				adm.Post("/listings", cfg.ListingsHandler.Upsert)
				adm.Delete("/listings/{id}", cfg.ListingsHandler.Delete)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
