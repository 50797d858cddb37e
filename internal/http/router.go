package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires the router. Nil handlers leave their routes unmounted; Admin
// routes also need AdminKeyHash.
type RouterConfig struct {
	Webhook      *WebhookHandler
	Rooms        *RoomHandler
	Audit        *AuditHandler
	AdminKeyHash string
	// AdminLimiter throttles admin calls per client address; nil disables it.
	AdminLimiter *RateLimiter
	Metrics      HTTPObserver
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics))
	}
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.Webhook != nil {
		r.Post("/webhook", cfg.Webhook.Receive)
	}

	if cfg.AdminKeyHash != "" && (cfg.Rooms != nil || cfg.Audit != nil) {
		r.Route("/admin", func(r chi.Router) {
			if cfg.AdminLimiter != nil {
				r.Use(RateLimit(cfg.AdminLimiter, cfg.Logger))
			}
			r.Use(RequireAdminKey(cfg.AdminKeyHash, cfg.Logger))

			if cfg.Rooms != nil {
				r.Get("/rooms", cfg.Rooms.List)
				r.Post("/rooms", cfg.Rooms.Create)
				r.Get("/rooms/{id}", cfg.Rooms.Get)
				r.Put("/rooms/{id}", cfg.Rooms.Update)
			}
			if cfg.Audit != nil {
				r.Get("/audit", cfg.Audit.List)
			}
		})
	}

	return r
}
