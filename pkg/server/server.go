// Package server exposes the recommendation assistant and the published
// course listing over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coursewise/coursewise/pkg/auth"
	"github.com/coursewise/coursewise/pkg/config"
	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/models"
	"github.com/coursewise/coursewise/pkg/recommend"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Assistant is the recommendation service surface used by the handlers.
type Assistant interface {
	Recommend(ctx context.Context, prompt string, catalog []models.CatalogEntry) (models.RecommendationResult, error)
	Chat(ctx context.Context, message string) (string, error)
	Usage() models.AssistantUsage
}

// Catalog is the read side of the course store.
type Catalog interface {
	recommend.CatalogProvider
	List(ctx context.Context, f models.CourseFilter) ([]models.Course, error)
}

// Server is the coursewise HTTP API.
type Server struct {
	cfg       *config.Config
	assistant Assistant
	catalog   Catalog
	verifier  *auth.Verifier
	breaker   func() string
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithBreakerState makes /healthz report the model provider's circuit
// breaker state as returned by fn.
func WithBreakerState(fn func() string) Option {
	return func(s *Server) { s.breaker = fn }
}

// New creates a Server wired with all dependencies.
func New(cfg *config.Config, a Assistant, c Catalog, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		assistant: a,
		catalog:   c,
		verifier:  auth.NewVerifier(cfg.Auth.JWTSecret),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestContext)
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/courses", s.handleListCourses)

	r.Route("/api/gpt", func(r chi.Router) {
		r.Use(auth.Middleware(s.verifier))
		r.Use(rateLimit(s.cfg.RateLimit))
		r.Post("/recommendations", s.handleRecommendations)
		r.Post("/chat", s.handleChat)
		r.Get("/usage", s.handleUsage)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server and shuts it down gracefully when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("listen", s.cfg.Listen).
			Bool("auth", s.verifier != nil).
			Msg("coursewise API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info().Msg("shutting down")
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
