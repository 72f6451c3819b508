// Package app wires configuration, adapters and usecases into a runnable
// HTTP application.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/careercoach-ai/career-coach-backend/internal/adapter/httpserver"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	// Security & instrumentation middleware
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(cfg.HTTPWriteTimeout))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		// AI-backed endpoints share a per-IP rate limit; every one of them
		// fans out to a paid upstream call.
		api.Group(func(ai chi.Router) {
			ai.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
			ai.Post("/gemini", srv.GeminiHandler())
			ai.Post("/analyze-cv", srv.AnalyzeCVHandler())
			ai.Post("/generate-cv", srv.GenerateCVHandler())
			ai.Post("/generate-cv-docx", srv.GenerateCVDocxHandler())
			ai.Post("/generate-questions", srv.GenerateQuestionsHandler())
			ai.Post("/upload-cv", srv.UploadCVHandler())
			ai.Post("/process-voice", srv.ProcessVoiceHandler())
			ai.Post("/text-to-speech", srv.TextToSpeechHandler())
		})
		// Job matching is local computation, no rate limit needed.
		api.Post("/recommend-jobs", srv.RecommendJobsHandler())
	})

	// Health and metrics
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	// Bundled frontend, when configured
	if cfg.StaticDir != "" {
		fs := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fs)
	}

	return httpserver.SecurityHeaders(r)
}
