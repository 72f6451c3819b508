package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/extract"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/prompt"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// CVService analyzes existing CVs and generates new ones.
type CVService struct {
	Gen    domain.TextGenerator
	Writer domain.DocWriter
}

// NewCVService constructs a CVService.
func NewCVService(gen domain.TextGenerator, writer domain.DocWriter) CVService {
	return CVService{Gen: gen, Writer: writer}
}

func (s CVService) requireConfigured() error {
	if !s.Gen.Configured() {
		return fmt.Errorf("%w: set GOOGLE_API_KEY (or GEMINI_API_KEY) on the server", domain.ErrNotConfigured)
	}
	return nil
}

// Analyze extracts a structured profile from CV text. Unlike coach replies
// there is no soft fallback: a reply that cannot be parsed is surfaced as a
// diagnostic error carrying a raw excerpt.
func (s CVService) Analyze(ctx domain.Context, cvText, role, organization string) (map[string]any, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	raw, err := s.Gen.Generate(ctx, prompt.CVAnalysis(cvText, role, organization))
	if err != nil {
		return nil, err
	}
	return extract.Object(raw)
}

var (
	markdownFencePrefix = regexp.MustCompile("^```(?:markdown)?\\s*")
	markdownFenceSuffix = regexp.MustCompile("```\\s*$")
)

// GenerateMarkdown produces a sample CV in markdown form.
func (s CVService) GenerateMarkdown(ctx domain.Context, p domain.CVProfile) (string, error) {
	if err := s.requireConfigured(); err != nil {
		return "", err
	}
	raw, err := s.Gen.Generate(ctx, prompt.CVMarkdown(p))
	if err != nil {
		return "", err
	}
	md := strings.TrimSpace(raw)
	md = markdownFencePrefix.ReplaceAllString(md, "")
	md = markdownFenceSuffix.ReplaceAllString(md, "")
	return strings.TrimSpace(md), nil
}

// GenerateDocx produces a sample CV as a DOCX byte stream.
func (s CVService) GenerateDocx(ctx domain.Context, p domain.CVProfile) ([]byte, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	raw, err := s.Gen.Generate(ctx, prompt.CVPlainText(p))
	if err != nil {
		return nil, err
	}
	doc, err := s.Writer.WriteCV(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: cv document assembly: %v", domain.ErrInternal, err)
	}
	return doc, nil
}
