// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trendpulse/internal/config"
	"trendpulse/internal/logging"
	"trendpulse/internal/server/handlers"
)

// Dependencies are the services the routes are built on. History, Events
// and Gatherer are optional.
type Dependencies struct {
	Runner   handlers.Runner
	History  handlers.History
	Events   handlers.Subscriber
	Gatherer prometheus.Gatherer
	Hashtag  string
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	trendHandler := handlers.NewTrendHandler(deps.Runner, deps.History, deps.Hashtag, log)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Route("/trends", func(r chi.Router) {
				r.With(middleware.Timeout(60*time.Second)).Group(func(r chi.Router) {
					r.Get("/", trendHandler.GetTrends)
					r.Get("/top", trendHandler.GetTop)
					r.Get("/series", trendHandler.GetSeries)
					r.Get("/message", trendHandler.GetMessage)
					r.Get("/history", trendHandler.GetHistory)
				})
				// a run spans every keyword's retries
				r.Post("/run", trendHandler.Run)
			})
		})
	})

	if deps.Events != nil {
		router.Get("/ws/trends", handlers.TrendFeedHandler(deps.Events, deps.Runner, handlers.DefaultWebSocketConfig(), log))
	}

	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
