package http

import (
	"net/http"

	"github.com/go-attendance-push/internal/config"
	"github.com/go-attendance-push/internal/transport/http/handler"
	appmiddleware "github.com/go-attendance-push/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds the liveness router: /health, /ping and /metrics.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(deps.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 10 requests/second, burst of 20 per client; probes poll far slower.
	rl := appmiddleware.NewRateLimiter(rate.Limit(10), 20)
	r.Use(rl.Limit)

	healthH := handler.NewHealthHandler(deps.Now)

	r.Get("/health", healthH.Health)
	r.Get("/ping", healthH.Ping)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
