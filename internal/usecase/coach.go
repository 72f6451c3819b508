// Package usecase contains application business logic services.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/extract"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/prompt"
	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// Canned reply used when the generation call itself fails. Distinct from the
// extractor's parse fallback so transport trouble reads differently to the
// user than a garbled reply.
const (
	busyFeedback  = "Tôi đang xử lý phản hồi của bạn. Vui lòng thử lại sau một lúc."
	busySuggested = "Hãy cân nhắc thêm các chi tiết cụ thể hơn vào câu trả lời của bạn."
)

// CoachService turns user interview answers into evaluated coach feedback.
type CoachService struct {
	Gen domain.TextGenerator
}

// NewCoachService constructs a CoachService.
func NewCoachService(gen domain.TextGenerator) CoachService {
	return CoachService{Gen: gen}
}

// Configured reports whether the underlying generator has credentials.
func (s CoachService) Configured() bool { return s.Gen.Configured() }

// Evaluate sends the user's input through the coach prompt and normalizes the
// reply. Only a missing upstream configuration is surfaced as an error; every
// other upstream failure degrades to a usable canned payload.
func (s CoachService) Evaluate(ctx domain.Context, userInput string) (extract.Result, error) {
	if !s.Gen.Configured() {
		return extract.Result{}, fmt.Errorf("%w: set GOOGLE_API_KEY (or GEMINI_API_KEY) on the server", domain.ErrNotConfigured)
	}
	raw, err := s.Gen.Generate(ctx, prompt.Coach(userInput))
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return extract.Result{}, err
		}
		observability.LoggerFromContext(ctx).Warn("coach generation failed, returning canned reply", slog.Any("error", err))
		return extract.Result{
			Kind:       extract.KindEvaluation,
			Evaluation: &domain.Evaluation{Feedback: busyFeedback, SuggestedAnswer: busySuggested},
			Reason:     extract.FallbackUpstream,
		}, nil
	}
	return extract.CoachReply(raw), nil
}
