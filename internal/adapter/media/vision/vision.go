// Package vision provides Google Cloud Vision integration for OCR.
//
// It extracts text from uploaded CV files (PDF and common image formats)
// through the Vision REST API, selecting the document or image annotation
// path based on the detected MIME type.
package vision

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
	"github.com/careercoach-ai/career-coach-backend/pkg/textx"
)

// MIME sets accepted by the two Vision annotation paths. DOCX is submitted to
// the document path as PDF, which Vision accepts for text detection.
var (
	documentMIMEs = map[string]bool{
		"application/pdf": true,
		"image/tiff":      true,
		"image/gif":       true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}
	imageMIMEs = map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
	}
)

// SupportedTypes lists the accepted upload MIME types for error reporting.
const SupportedTypes = "PDF, PNG, JPG, GIF, TIFF, DOCX"

// Client is a minimal Google Vision HTTP client implementing domain.OCRClient.
// It posts to images:annotate or files:annotate with an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New constructs a Vision client with a default timeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type annotateError struct {
	Message string `json:"message"`
}

type textAnnotation struct {
	Text string `json:"text"`
}

type imageResponse struct {
	FullTextAnnotation *textAnnotation `json:"fullTextAnnotation"`
	Error              *annotateError  `json:"error"`
}

// Recognize OCRs content and returns the extracted text. The annotation path
// is chosen by MIME type; unsupported types are a reported failure, not an
// empty success.
func (c *Client) Recognize(ctx domain.Context, content []byte, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: vision api key missing", domain.ErrNotConfigured)
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case documentMIMEs[mimeType]:
		return c.annotateFile(ctx, content, mimeType)
	case imageMIMEs[mimeType]:
		return c.annotateImage(ctx, content)
	default:
		return "", fmt.Errorf("%w: %q (supported: %s)", domain.ErrUnsupportedMedia, mimeType, SupportedTypes)
	}
}

func (c *Client) annotateImage(ctx domain.Context, content []byte) (string, error) {
	body := map[string]any{
		"requests": []map[string]any{{
			"image":    map[string]any{"content": base64.StdEncoding.EncodeToString(content)},
			"features": []map[string]any{{"type": "DOCUMENT_TEXT_DETECTION"}},
		}},
	}
	var out struct {
		Responses []imageResponse `json:"responses"`
	}
	if err := c.post(ctx, "/v1/images:annotate", body, &out); err != nil {
		return "", err
	}
	if len(out.Responses) == 0 {
		return "", fmt.Errorf("%w: vision returned no responses", domain.ErrUpstream)
	}
	return annotationText(out.Responses[0])
}

func (c *Client) annotateFile(ctx domain.Context, content []byte, mimeType string) (string, error) {
	// Vision has no DOCX input config; PDF works for text detection.
	if strings.Contains(mimeType, "wordprocessingml") {
		mimeType = "application/pdf"
	}
	body := map[string]any{
		"requests": []map[string]any{{
			"inputConfig": map[string]any{
				"content":  base64.StdEncoding.EncodeToString(content),
				"mimeType": mimeType,
			},
			"features": []map[string]any{{"type": "DOCUMENT_TEXT_DETECTION"}},
		}},
	}
	var out struct {
		Responses []struct {
			Responses []imageResponse `json:"responses"`
		} `json:"responses"`
	}
	if err := c.post(ctx, "/v1/files:annotate", body, &out); err != nil {
		return "", err
	}
	if len(out.Responses) == 0 || len(out.Responses[0].Responses) == 0 {
		return "", fmt.Errorf("%w: vision returned no responses", domain.ErrUpstream)
	}
	// First page carries the full text annotation for single-request batches.
	return annotationText(out.Responses[0].Responses[0])
}

func annotationText(r imageResponse) (string, error) {
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("%w: vision: %s", domain.ErrUpstream, r.Error.Message)
	}
	if r.FullTextAnnotation == nil || r.FullTextAnnotation.Text == "" {
		return "", fmt.Errorf("%w: no text found in file", domain.ErrUpstream)
	}
	return textx.SanitizeText(r.FullTextAnnotation.Text), nil
}

func (c *Client) post(ctx domain.Context, path string, body any, out any) error {
	start := time.Now()
	defer observability.ObserveAICall("vision", "annotate", start)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: vision marshal: %v", domain.ErrInternal, err)
	}
	u := fmt.Sprintf("%s%s?key=%s", c.baseURL, path, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: vision request: %v", domain.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: vision: %v", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: vision status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: vision decode: %v", domain.ErrUpstream, err)
	}
	return nil
}
