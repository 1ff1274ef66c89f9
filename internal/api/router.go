// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical/text-extractor/internal/app"
	"github.com/spherical/text-extractor/internal/observability"
)

// RouterConfig holds HTTP surface settings.
type RouterConfig struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
	AllowedOrigins []string
}

// DefaultRouterConfig returns default configuration values.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RequestTimeout: 5 * time.Minute,
		MaxUploadBytes: 64 << 20,
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates the API router with all routes configured.
func NewRouter(a *app.App, cfg RouterConfig) http.Handler {
	logger := a.Logger.WithComponent("api")
	h := &Handler{
		app:      a,
		sessions: NewSessionStore(),
		logger:   logger,
		maxBytes: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors(cfg.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/modes", h.Modes)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Put("/mode", h.SetMode)
				r.Post("/document", h.UploadDocument)
				r.Post("/extract", h.Extract)
			})
		})

		r.Post("/research", h.Research)
		r.Post("/assist", h.Assist)
	})

	return r
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}

// cors sets CORS headers for allowed origins and answers preflight requests.
func cors(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			for _, o := range allowedOrigins {
				if origin != "" && (o == "*" || o == origin) {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
					w.Header().Set("Access-Control-Max-Age", "86400")
					break
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
