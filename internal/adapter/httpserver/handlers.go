package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/extract"
	"github.com/careercoach-ai/career-coach-backend/internal/config"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
	"github.com/careercoach-ai/career-coach-backend/internal/usecase"
	"github.com/careercoach-ai/career-coach-backend/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg       config.Config
	Coach     usecase.CoachService
	CV        usecase.CVService
	Questions usecase.QuestionService
	Matcher   usecase.MatchService
	Media     *usecase.MediaService
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, coach usecase.CoachService, cv usecase.CVService, questions usecase.QuestionService, matcher usecase.MatchService, media *usecase.MediaService) *Server {
	return &Server{Cfg: cfg, Coach: coach, CV: cv, Questions: questions, Matcher: matcher, Media: media}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

const jsonBodyLimit = 1 << 20 // 1MB for JSON endpoints

// decodeJSON caps the body, decodes into v and validates struct tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, jsonBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(v); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		return &validationError{fields: verrs}
	}
	return nil
}

type validationError struct{ fields map[string]string }

func (e *validationError) Error() string { return "validation failed" }
func (e *validationError) Unwrap() error { return domain.ErrInvalidArgument }

// handleError resolves the envelope details for known error shapes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validationError
	if errors.As(err, &ve) {
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), ve.fields)
		return
	}
	var pe *extract.ParseError
	if errors.As(err, &pe) {
		writeError(w, r, err, map[string]string{"raw": pe.Raw})
		return
	}
	writeError(w, r, err, nil)
}

// coachPayload flattens an extraction result into the wire shape. The
// discriminator is always present so the frontend can switch on it.
func coachPayload(res extract.Result) map[string]any {
	switch res.Kind {
	case extract.KindGeneralAnswer:
		return map[string]any{"type": string(extract.KindGeneralAnswer), "response": res.General.Response}
	default:
		return map[string]any{
			"type":             string(extract.KindEvaluation),
			"feedback":         res.Evaluation.Feedback,
			"suggested_answer": res.Evaluation.SuggestedAnswer,
		}
	}
}

// GeminiHandler evaluates a free-form user answer through the coach flow.
func (s *Server) GeminiHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt" validate:"required,max=20000"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		res, err := s.Coach.Evaluate(r.Context(), req.Prompt)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if res.Reason != extract.FallbackNone {
			LoggerFrom(r).Warn("coach reply degraded", "reason", string(res.Reason))
		}
		writeJSON(w, http.StatusOK, coachPayload(res))
	}
}

// AnalyzeCVHandler returns a structured analysis of raw CV text.
func (s *Server) AnalyzeCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CVText       string `json:"cv_text" validate:"required"`
			Role         string `json:"role"`
			Organization string `json:"organization"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		analysis, err := s.CV.Analyze(r.Context(), textx.SanitizeText(req.CVText), req.Role, req.Organization)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

type cvRequest struct {
	Role         string   `json:"role" validate:"required,max=200"`
	Skills       []string `json:"skills"`
	Experience   string   `json:"experience"`
	Education    string   `json:"education"`
	Achievements []string `json:"achievements"`
}

func (req cvRequest) profile() domain.CVProfile {
	return domain.CVProfile{
		Role:         req.Role,
		Skills:       req.Skills,
		Experience:   req.Experience,
		Education:    req.Education,
		Achievements: req.Achievements,
	}
}

// GenerateCVHandler renders a markdown CV from a candidate profile.
func (s *Server) GenerateCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cvRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		md, err := s.CV.GenerateMarkdown(r.Context(), req.profile())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"cv_markdown": md})
	}
}

// GenerateCVDocxHandler streams a generated CV as a DOCX attachment.
func (s *Server) GenerateCVDocxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cvRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		doc, err := s.CV.GenerateDocx(r.Context(), req.profile())
		if err != nil {
			handleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", `attachment; filename=CV_Generated.docx`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}

// GenerateQuestionsHandler returns interview questions for a field/role.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Field  string   `json:"field" validate:"required,max=200"`
			Role   string   `json:"role"`
			Skills []string `json:"skills"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		questions, err := s.Questions.Generate(r.Context(), req.Field, req.Role, req.Skills)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	}
}

// RecommendJobsHandler scores the static job dataset against a profile.
func (s *Server) RecommendJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Skills          []string `json:"skills"`
			Role            string   `json:"role"`
			ExperienceYears float64  `json:"experience_years" validate:"gte=0"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		jobs, err := s.Matcher.Recommend(domain.CandidateProfile{
			Skills:          req.Skills,
			Role:            req.Role,
			ExperienceYears: req.ExperienceYears,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	}
}

// UploadCVHandler extracts text from an uploaded CV file via OCR.
func (s *Server) UploadCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			handleError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument))
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if isTooLarge(err) {
				writeTooLarge(w, s.Cfg.MaxUploadMB)
				return
			}
			handleError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()
		content, err := io.ReadAll(file)
		if err != nil {
			handleError(w, r, fmt.Errorf("%w: file read: %v", domain.ErrInvalidArgument, err))
			return
		}
		text, err := s.Media.ExtractCV(r.Context(), content, header.Header.Get("Content-Type"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"cv_text": text})
	}
}

// ProcessVoiceHandler transcribes an uploaded audio answer.
func (s *Server) ProcessVoiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			handleError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument))
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if isTooLarge(err) {
				writeTooLarge(w, s.Cfg.MaxUploadMB)
				return
			}
			handleError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
			return
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: audio file required", domain.ErrInvalidArgument), map[string]string{"field": "audio"})
			return
		}
		defer func() { _ = file.Close() }()
		audio, err := io.ReadAll(file)
		if err != nil {
			handleError(w, r, fmt.Errorf("%w: audio read: %v", domain.ErrInvalidArgument, err))
			return
		}
		language := r.FormValue("language")
		transcript, err := s.Media.Transcribe(r.Context(), audio, language)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"transcription": transcript})
	}
}

// TextToSpeechHandler synthesizes speech for the given text.
func (s *Server) TextToSpeechHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text     string `json:"text" validate:"required,max=5000"`
			Language string `json:"language"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		audio, format, err := s.Media.Speak(r.Context(), req.Text, req.Language)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"audio":  base64.StdEncoding.EncodeToString(audio),
			"format": format,
		})
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler probes the Gemini configuration and the job dataset.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		checks := make([]check, 0, 2)
		allOK := true
		if s.Coach.Configured() {
			checks = append(checks, check{Name: "gemini", OK: true})
		} else {
			allOK = false
			checks = append(checks, check{Name: "gemini", OK: false, Details: "api key not configured"})
		}
		if s.Matcher.DatasetSize() > 0 {
			checks = append(checks, check{Name: "job_dataset", OK: true})
		} else {
			allOK = false
			checks = append(checks, check{Name: "job_dataset", OK: false, Details: "dataset empty"})
		}
		status := http.StatusOK
		if !allOK {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "too large")
}

func writeTooLarge(w http.ResponseWriter, maxMB int64) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
		Code:    "INVALID_ARGUMENT",
		Message: "payload too large",
		Details: map[string]any{"max_mb": maxMB},
	}})
}
