package usecase

import (
	"fmt"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/extract"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/prompt"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// QuestionService generates tagged interview questions for a profile.
type QuestionService struct {
	Gen domain.TextGenerator
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(gen domain.TextGenerator) QuestionService {
	return QuestionService{Gen: gen}
}

// Generate returns the model's question list. List-shaped replies have no
// soft fallback: parse failures propagate with a raw excerpt for diagnostics.
func (s QuestionService) Generate(ctx domain.Context, field, role string, skills []string) ([]string, error) {
	if !s.Gen.Configured() {
		return nil, fmt.Errorf("%w: set GOOGLE_API_KEY (or GEMINI_API_KEY) on the server", domain.ErrNotConfigured)
	}
	raw, err := s.Gen.Generate(ctx, prompt.Questions(field, role, skills))
	if err != nil {
		return nil, err
	}
	return extract.StringArray(raw)
}
