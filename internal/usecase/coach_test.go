package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/ai/extract"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
	"github.com/careercoach-ai/career-coach-backend/internal/usecase"
)

// fakeGen is a canned TextGenerator for usecase tests.
type fakeGen struct {
	reply      string
	err        error
	configured bool
	lastPrompt string
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func (f *fakeGen) Configured() bool { return f.configured }

func TestCoachEvaluate_NotConfigured(t *testing.T) {
	t.Parallel()
	svc := usecase.NewCoachService(&fakeGen{configured: false})
	_, err := svc.Evaluate(context.Background(), "tell me about yourself")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestCoachEvaluate_CleanReply(t *testing.T) {
	t.Parallel()
	gen := &fakeGen{
		configured: true,
		reply:      `{"type":"evaluation","feedback":"good","suggested_answer":"quantify impact"}`,
	}
	svc := usecase.NewCoachService(gen)
	res, err := svc.Evaluate(context.Background(), "I led a team of five")
	require.NoError(t, err)
	assert.Equal(t, extract.KindEvaluation, res.Kind)
	assert.Equal(t, "quantify impact", res.Evaluation.SuggestedAnswer)
	assert.Contains(t, gen.lastPrompt, "I led a team of five")
}

func TestCoachEvaluate_GenerationFailureDegrades(t *testing.T) {
	t.Parallel()
	gen := &fakeGen{configured: true, err: errors.New("rate limited")}
	svc := usecase.NewCoachService(gen)
	res, err := svc.Evaluate(context.Background(), "answer")
	// Transport failure degrades to a canned but usable payload.
	require.NoError(t, err)
	assert.Equal(t, extract.KindEvaluation, res.Kind)
	assert.Equal(t, extract.FallbackUpstream, res.Reason)
	assert.NotEmpty(t, res.Evaluation.Feedback)
	assert.NotEmpty(t, res.Evaluation.SuggestedAnswer)
}

func TestCoachEvaluate_Configured(t *testing.T) {
	t.Parallel()
	assert.False(t, usecase.NewCoachService(&fakeGen{}).Configured())
	assert.True(t, usecase.NewCoachService(&fakeGen{configured: true}).Configured())
}
