// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Gemini text generation. GOOGLE_API_KEY takes priority; GEMINI_API_KEY
	// is accepted as an alternative for parity with older deployments.
	GeminiAPIKey    string        `env:"GOOGLE_API_KEY"`
	GeminiAPIKeyAlt string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-lite"`
	GeminiTimeout   time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`

	// Google Cloud media APIs (Vision OCR, Speech-to-Text, Text-to-Speech)
	// are called over REST with an API key.
	GoogleCloudAPIKey string        `env:"GOOGLE_CLOUD_API_KEY"`
	VisionBaseURL     string        `env:"VISION_BASE_URL" envDefault:"https://vision.googleapis.com"`
	SpeechBaseURL     string        `env:"SPEECH_BASE_URL" envDefault:"https://speech.googleapis.com"`
	TTSBaseURL        string        `env:"TTS_BASE_URL" envDefault:"https://texttospeech.googleapis.com"`
	MediaTimeout      time.Duration `env:"MEDIA_TIMEOUT" envDefault:"30s"`
	// MediaWorkers bounds concurrent CPU-bound media preprocessing.
	MediaWorkers int `env:"MEDIA_WORKERS" envDefault:"4"`

	// Job dataset: remote URL first, local file fallback.
	JobDataURL     string        `env:"JSON_DATA_URL"`
	JobDataPath    string        `env:"JOB_DATA_PATH" envDefault:"job_data.json"`
	JobDataTimeout time.Duration `env:"JOB_DATA_TIMEOUT" envDefault:"20s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"career-coach-backend"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// StaticDir serves the bundled frontend when non-empty.
	StaticDir string `env:"STATIC_DIR" envDefault:""`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// GeminiKey resolves the Gemini API key, preferring GOOGLE_API_KEY.
func (c Config) GeminiKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.GeminiAPIKeyAlt
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
