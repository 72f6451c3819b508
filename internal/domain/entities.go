package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotConfigured      = errors.New("service not configured")
	ErrUpstream           = errors.New("upstream failure")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrDatasetUnavailable = errors.New("job dataset unavailable")
	ErrInternal           = errors.New("internal error")
)

// JobPosting is one entry of the static job dataset. The dataset is loaded
// once at process start and shared read-only across requests.
type JobPosting struct {
	Name        string `json:"job_name"`
	Description string `json:"job_description"`
	Requirement string `json:"job_requirement"`
	Company     string `json:"company_name"`
	URL         string `json:"job_url"`
}

// CandidateProfile is the job-matching input.
type CandidateProfile struct {
	Skills          []string
	Role            string
	ExperienceYears float64
}

// MatchResult is a per-request, per-job scoring outcome. Posting fields are
// copied by value (truncated); results are never re-queried.
type MatchResult struct {
	JobName        string   `json:"job_name"`
	CompanyName    string   `json:"company_name"`
	JobURL         string   `json:"job_url"`
	JobDescription string   `json:"job_description"`
	JobRequirement string   `json:"job_requirement"`
	MatchScore     int      `json:"matchScore"`
	RequiredSkills []string `json:"requiredSkills"`
	MissingSkills  []string `json:"missingSkills"`
}

// Evaluation is the coach feedback payload. SuggestedAnswer is never empty;
// the extractor substitutes a placeholder when the model omits it.
type Evaluation struct {
	Feedback        string `json:"feedback"`
	SuggestedAnswer string `json:"suggested_answer"`
}

// GeneralAnswer is the free-form reply payload for non-answer inputs.
type GeneralAnswer struct {
	Response string `json:"response"`
}

// CVProfile is the input for CV generation.
type CVProfile struct {
	Role         string
	Skills       []string
	Experience   string
	Education    string
	Achievements []string
}

// TextGenerator (port)
// Generate sends a prompt to the configured LLM and returns the raw
// completion text. Configured reports whether credentials are present;
// callers must surface ErrNotConfigured instead of calling Generate when not.
type TextGenerator interface {
	Generate(ctx Context, prompt string) (string, error)
	Configured() bool
}

// OCRClient (port)
type OCRClient interface {
	Recognize(ctx Context, content []byte, mimeType string) (string, error)
}

// Transcriber (port)
type Transcriber interface {
	Transcribe(ctx Context, audio []byte, language string) (string, error)
}

// Synthesizer (port)
// Synthesize returns encoded audio bytes and the container format (e.g. "mp3").
type Synthesizer interface {
	Synthesize(ctx Context, text, language string) ([]byte, string, error)
}

// DocWriter (port)
// WriteCV renders plain CV text into a binary document stream.
type DocWriter interface {
	WriteCV(text string) ([]byte, error)
}

// Context is an alias to context.Context; adapters and usecases pass the
// request context through unchanged.
type Context = context.Context
