package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercoach-ai/career-coach-backend/internal/domain"
	"github.com/careercoach-ai/career-coach-backend/internal/usecase"
)

type fakeWriter struct {
	out []byte
	err error
	got string
}

func (f *fakeWriter) WriteCV(text string) ([]byte, error) {
	f.got = text
	return f.out, f.err
}

func TestCVAnalyze_NotConfigured(t *testing.T) {
	t.Parallel()
	svc := usecase.NewCVService(&fakeGen{}, &fakeWriter{})
	_, err := svc.Analyze(context.Background(), "cv text", "", "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestCVAnalyze_ParsesObject(t *testing.T) {
	t.Parallel()
	gen := &fakeGen{configured: true, reply: "```json\n{\"score\": 7, \"strengths\": [\"clear\"]}\n```"}
	svc := usecase.NewCVService(gen, &fakeWriter{})
	out, err := svc.Analyze(context.Background(), "cv text", "Backend Engineer", "Acme")
	require.NoError(t, err)
	assert.Equal(t, float64(7), out["score"])
	assert.Contains(t, gen.lastPrompt, "Backend Engineer")
}

func TestCVAnalyze_ParseFailurePropagates(t *testing.T) {
	t.Parallel()
	gen := &fakeGen{configured: true, reply: "sorry, I cannot help with that"}
	svc := usecase.NewCVService(gen, &fakeWriter{})
	_, err := svc.Analyze(context.Background(), "cv text", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestCVGenerateMarkdown_StripsFences(t *testing.T) {
	t.Parallel()
	gen := &fakeGen{configured: true, reply: "```markdown\n# Nguyen Van A\n\n## Skills\n```"}
	svc := usecase.NewCVService(gen, &fakeWriter{})
	md, err := svc.GenerateMarkdown(context.Background(), domain.CVProfile{Role: "Developer"})
	require.NoError(t, err)
	assert.Equal(t, "# Nguyen Van A\n\n## Skills", md)
}

func TestCVGenerateDocx(t *testing.T) {
	t.Parallel()
	writer := &fakeWriter{out: []byte("PK\x03\x04docx-bytes")}
	gen := &fakeGen{configured: true, reply: "NGUYEN VAN A\nKỸ NĂNG:\n- Go"}
	svc := usecase.NewCVService(gen, writer)
	doc, err := svc.GenerateDocx(context.Background(), domain.CVProfile{Role: "Developer"})
	require.NoError(t, err)
	assert.Equal(t, writer.out, doc)
	assert.Equal(t, "NGUYEN VAN A\nKỸ NĂNG:\n- Go", writer.got)
}

func TestCVGenerateDocx_WriterFailure(t *testing.T) {
	t.Parallel()
	writer := &fakeWriter{err: errors.New("zip broke")}
	svc := usecase.NewCVService(&fakeGen{configured: true, reply: "text"}, writer)
	_, err := svc.GenerateDocx(context.Background(), domain.CVProfile{Role: "Developer"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternal)
}
