// Package api provides the HTTP API server and handlers for Wishcraft.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wishcraft/wishcraft-server/internal/sse"
	"github.com/wishcraft/wishcraft-server/internal/wishview"
)

// Config holds the HTTP-facing settings of the server.
type Config struct {
	// PublicURL is the base of shareable wish links.
	PublicURL string
	// MaxPhotoBytes bounds a single uploaded photo.
	MaxPhotoBytes int64
	// RequestsPerMinute and Burst limit API requests per client IP.
	RequestsPerMinute int
	Burst             int
	// AllowedOrigins lists the CORS origins of the JSON API. Empty allows any.
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	storage    *StorageServices
	sseManager *sse.Manager
	sseHandler *sse.Handler
	loader     *wishview.Loader
	limiter    *RateLimiter
	router     *chi.Mux
	api        huma.API
	cfg        Config
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, storage *StorageServices, sseManager *sse.Manager, cfg Config, logger *slog.Logger) *Server {
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = MaxUploadSize
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 30
	}

	s := &Server{
		services:   services,
		storage:    storage,
		sseManager: sseManager,
		router:     chi.NewRouter(),
		cfg:        cfg,
		logger:     logger,
		limiter:    NewRateLimiter(cfg.RequestsPerMinute, time.Minute, cfg.Burst),
	}
	if services != nil && services.Wishes != nil {
		s.loader = wishview.NewLoader(services.Wishes, logger)
	}
	if sseManager != nil && services != nil && services.Sessions != nil {
		s.sseHandler = sse.NewHandler(sseManager, services.Sessions.Exists, logger)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Wishcraft API", "1.0.0")
	humaConfig.Info.Description = "Create and share celebration wishes."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, "/api/", s.logger))
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) > 0 {
		return s.cfg.AllowedOrigins
	}
	return []string{"*"}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerWizardRoutes()
	s.registerWishRoutes()

	// Routes huma cannot describe: multipart uploads, event streams and binary bodies.
	s.router.Post("/api/v1/wizard/{id}/photos", s.handleUploadPhotos)
	if s.sseHandler != nil {
		s.router.Get("/api/v1/wizard/{id}/events", s.sseHandler.ServeHTTP)
	}
	s.router.Get("/photos/{name}", s.handleServePhoto)
	s.router.Get("/wishes/{slug}/qr.png", s.handleWishQRCode)

	// HTML pages.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/", s.handleHomePage)
		r.Get("/create", s.handleCreatePage)
		r.Get("/wishes/{slug}", s.handleWishPage)
		r.Post("/wishes/{slug}/copy", s.handleCopyLink)
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				level := slog.LevelDebug
				switch {
				case status >= 500:
					level = slog.LevelError
				case status >= 400:
					level = slog.LevelWarn
				}
				logger.Log(r.Context(), level, "HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
