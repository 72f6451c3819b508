package httpserver_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/careercoach-ai/career-coach-backend/internal/adapter/httpserver"
	"github.com/careercoach-ai/career-coach-backend/internal/config"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
	"github.com/careercoach-ai/career-coach-backend/internal/usecase"
)

type fakeGen struct {
	reply      string
	err        error
	configured bool
}

func (f *fakeGen) Generate(context.Context, string) (string, error) { return f.reply, f.err }
func (f *fakeGen) Configured() bool                                 { return f.configured }

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Recognize(context.Context, []byte, string) (string, error) { return f.text, f.err }

type fakeSTT struct {
	transcript string
	err        error
}

func (f *fakeSTT) Transcribe(context.Context, []byte, string) (string, error) {
	return f.transcript, f.err
}

type fakeTTS struct {
	audio  []byte
	format string
	err    error
}

func (f *fakeTTS) Synthesize(context.Context, string, string) ([]byte, string, error) {
	return f.audio, f.format, f.err
}

type fakeWriter struct{ out []byte }

func (f *fakeWriter) WriteCV(string) ([]byte, error) { return f.out, nil }

type serverOpts struct {
	gen    *fakeGen
	ocr    *fakeOCR
	stt    *fakeSTT
	tts    *fakeTTS
	writer *fakeWriter
	jobs   []domain.JobPosting
}

func newTestServer(opts serverOpts) *httpserver.Server {
	if opts.gen == nil {
		opts.gen = &fakeGen{configured: true}
	}
	if opts.ocr == nil {
		opts.ocr = &fakeOCR{}
	}
	if opts.stt == nil {
		opts.stt = &fakeSTT{}
	}
	if opts.tts == nil {
		opts.tts = &fakeTTS{}
	}
	if opts.writer == nil {
		opts.writer = &fakeWriter{out: []byte("PK\x03\x04")}
	}
	cfg := config.Config{MaxUploadMB: 1}
	return httpserver.NewServer(
		cfg,
		usecase.NewCoachService(opts.gen),
		usecase.NewCVService(opts.gen, opts.writer),
		usecase.NewQuestionService(opts.gen),
		usecase.NewMatchService(opts.jobs),
		usecase.NewMediaService(opts.ocr, opts.stt, opts.tts, 2),
	)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGeminiHandler_Evaluation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{
		configured: true,
		reply:      `{"type":"evaluation","feedback":"good","suggested_answer":"better"}`,
	}})
	rec := postJSON(t, srv.GeminiHandler(), `{"prompt":"my answer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "evaluation", body["type"])
	assert.Equal(t, "good", body["feedback"])
	assert.Equal(t, "better", body["suggested_answer"])
}

func TestGeminiHandler_GeneralAnswer(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{
		configured: true,
		reply:      `{"type":"general_answer","response":"hi there"}`,
	}})
	rec := postJSON(t, srv.GeminiHandler(), `{"prompt":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "general_answer", body["type"])
	assert.Equal(t, "hi there", body["response"])
}

func TestGeminiHandler_MissingPrompt(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	rec := postJSON(t, srv.GeminiHandler(), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_ARGUMENT", errObj["code"])
}

func TestGeminiHandler_NotConfigured(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{configured: false}})
	rec := postJSON(t, srv.GeminiHandler(), `{"prompt":"my answer"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "NOT_CONFIGURED", errObj["code"])
}

func TestGeminiHandler_InvalidJSON(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	rec := postJSON(t, srv.GeminiHandler(), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeCVHandler_Success(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{
		configured: true,
		reply:      `{"extracted_role":"Kỹ sư phần mềm","skills":["go"]}`,
	}})
	rec := postJSON(t, srv.AnalyzeCVHandler(), `{"cv_text":"my cv","role":"dev"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Kỹ sư phần mềm", body["extracted_role"])
}

func TestAnalyzeCVHandler_ParseFailureCarriesRaw(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{configured: true, reply: "no json here"}})
	rec := postJSON(t, srv.AnalyzeCVHandler(), `{"cv_text":"my cv"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "UPSTREAM_ERROR", errObj["code"])
	details := errObj["details"].(map[string]any)
	assert.Equal(t, "no json here", details["raw"])
}

func TestGenerateCVHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{
		configured: true,
		reply:      "```markdown\n# CV\n```",
	}})
	rec := postJSON(t, srv.GenerateCVHandler(), `{"role":"Backend Developer","skills":["go"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "# CV", body["cv_markdown"])
}

func TestGenerateCVDocxHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{
		gen:    &fakeGen{configured: true, reply: "NAME\nSKILLS:\n- Go"},
		writer: &fakeWriter{out: []byte("PK\x03\x04docx")},
	})
	rec := postJSON(t, srv.GenerateCVDocxHandler(), `{"role":"Backend Developer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "CV_Generated.docx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestGenerateQuestionsHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{gen: &fakeGen{
		configured: true,
		reply:      `["[Background] Tell me about yourself", "[Technical] Explain indexes"]`,
	}})
	rec := postJSON(t, srv.GenerateQuestionsHandler(), `{"field":"software"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	qs := body["questions"].([]any)
	require.Len(t, qs, 2)
	assert.Equal(t, "[Background] Tell me about yourself", qs[0])
}

func TestRecommendJobsHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{jobs: []domain.JobPosting{
		{Name: "Python Developer", Description: "APIs in python", Requirement: "python", Company: "Acme", URL: "https://a.example"},
	}})
	rec := postJSON(t, srv.RecommendJobsHandler(), `{"skills":["python"],"role":"developer","experience_years":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 1)
	first := jobs[0].(map[string]any)
	assert.Equal(t, "Python Developer", first["job_name"])
	assert.Equal(t, float64(50), first["matchScore"])
	assert.Equal(t, "Acme", first["company_name"])
}

func TestRecommendJobsHandler_EmptyDataset(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	rec := postJSON(t, srv.RecommendJobsHandler(), `{"skills":["python"]}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "DATASET_UNAVAILABLE", errObj["code"])
}

func multipartBody(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadCVHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{ocr: &fakeOCR{text: "NGUYEN VAN A"}})
	body, ct := multipartBody(t, "file", "cv.pdf", []byte("%PDF-1.4 content"), nil)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.UploadCVHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "NGUYEN VAN A", out["cv_text"])
}

func TestUploadCVHandler_MissingFile(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.UploadCVHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadCVHandler_NotMultipart(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	rec := postJSON(t, srv.UploadCVHandler(), `{"file":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessVoiceHandler(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{stt: &fakeSTT{transcript: "xin chào"}})
	body, ct := multipartBody(t, "audio", "clip.webm", bytes.Repeat([]byte{0x1A}, 2048), map[string]string{"language": "vi"})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ProcessVoiceHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "xin chào", out["transcription"])
}

func TestProcessVoiceHandler_TooShort(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	body, ct := multipartBody(t, "audio", "clip.webm", []byte("tiny"), nil)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ProcessVoiceHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTextToSpeechHandler(t *testing.T) {
	t.Parallel()
	audio := []byte{0xFF, 0xF3, 0x01}
	srv := newTestServer(serverOpts{tts: &fakeTTS{audio: audio, format: "mp3"}})
	rec := postJSON(t, srv.TextToSpeechHandler(), `{"text":"xin chào","language":"vi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), out["audio"])
	assert.Equal(t, "mp3", out["format"])
}

func TestTextToSpeechHandler_EmptyText(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	rec := postJSON(t, srv.TextToSpeechHandler(), `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newTestServer(serverOpts{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.HealthzHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Parallel()
	ready := newTestServer(serverOpts{jobs: []domain.JobPosting{{Name: "x"}}})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	ready.ReadyzHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	notReady := newTestServer(serverOpts{gen: &fakeGen{configured: false}})
	rec = httptest.NewRecorder()
	notReady.ReadyzHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
