// Command server starts the CareerCoach HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/gemini"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/docwriter"
	httpserver "github.com/careercoach-ai/career-coach-backend/internal/adapter/httpserver"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/jobsource"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/media/speech"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/media/vision"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/app"
	"github.com/careercoach-ai/career-coach-backend/internal/config"
	"github.com/careercoach-ai/career-coach-backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI and matching instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Job dataset: remote first, local fallback. An empty dataset degrades
	// /api/recommend-jobs (and readiness) but must not block startup.
	jobs := jobsource.New(cfg.JobDataURL, cfg.JobDataPath, cfg.JobDataTimeout).Load(ctx)
	slog.Info("job dataset loaded", slog.Int("postings", len(jobs)))

	// AI text generation
	gen, err := gemini.New(ctx, cfg.GeminiKey(), cfg.GeminiModel, cfg.GeminiTimeout)
	if err != nil {
		slog.Error("gemini client init failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Google Cloud media adapters (REST, API-key auth)
	ocr := vision.New(cfg.VisionBaseURL, cfg.GoogleCloudAPIKey, cfg.MediaTimeout)
	stt := speech.NewRecognizer(cfg.SpeechBaseURL, cfg.GoogleCloudAPIKey, cfg.MediaTimeout)
	tts := speech.NewSynthesizer(cfg.TTSBaseURL, cfg.GoogleCloudAPIKey, cfg.MediaTimeout)

	// Usecases
	coachSvc := usecase.NewCoachService(gen)
	cvSvc := usecase.NewCVService(gen, docwriter.New())
	questionSvc := usecase.NewQuestionService(gen)
	matchSvc := usecase.NewMatchService(jobs)
	mediaSvc := usecase.NewMediaService(ocr, stt, tts, cfg.MediaWorkers)

	srv := httpserver.NewServer(cfg, coachSvc, cvSvc, questionSvc, matchSvc, mediaSvc)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
