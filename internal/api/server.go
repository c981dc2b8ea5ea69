// Package api provides the HTTP API server and handlers for the recipe service.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/recipeapp/recipe-server/internal/http/response"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/metrics"
	"github.com/recipeapp/recipe-server/internal/ratelimit"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options holds HTTP-level settings that are not owned by a service.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	media           *images.Storage
	db              Pinger
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
	opts            Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, media *images.Storage, db Pinger, limiter *ratelimit.KeyedRateLimiter, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = MaxUploadSize
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		services:        services,
		media:           media,
		db:              db,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: limiter,
		opts:            opts,
	}

	s.setupMiddleware()
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
// chi requires every Use before the first route.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(metrics.Middleware)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.authRateLimiter, s.logger))
	s.router.Use(s.authMiddleware)

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method, s.logger)
	})
}

// setupAPI mounts huma on the router.
func (s *Server) setupAPI() {
	config := huma.DefaultConfig("Recipe API", "1.0.0")
	config.Info.Description = "Recipes with nested tags and ingredients, scoped to the authenticated user."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// Response bodies are plain objects; no $schema links.
	config.CreateHooks = nil

	s.api = humachi.New(s.router, config)
	RegisterErrorHandler(s.logger)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerRecipeRoutes()
	s.registerAttributeRoutes(s.services.Tags, "/recipe/tags", "Tags")
	s.registerAttributeRoutes(s.services.Ingredients, "/recipe/ingredients", "Ingredients")

	// Multipart upload and file serving use chi directly.
	s.router.Post("/recipe/recipes/{id}/upload-image/", s.handleUploadImage)
	s.router.Get("/media/*", s.handleServeMedia)
	s.router.Handle("/metrics", metrics.Handler())
}
