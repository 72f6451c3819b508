// Package speech provides Google Cloud Speech-to-Text and Text-to-Speech
// integration over their REST APIs.
//
// Both adapters share language normalization: the frontend sends loose codes
// ("vi", "vietnamese", "en-us") which are mapped to the canonical Google
// Cloud language codes and per-language voice/model selections.
package speech

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
)

// NormalizeLanguage maps loose language identifiers to canonical codes.
// Unrecognized values default to en-US.
func NormalizeLanguage(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "vi", "vi-vn", "vietnamese":
		return "vi-VN"
	default:
		return "en-US"
	}
}

// Recognizer is a Speech-to-Text REST client implementing domain.Transcriber.
type Recognizer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRecognizer constructs a Speech-to-Text client.
func NewRecognizer(baseURL, apiKey string, timeout time.Duration) *Recognizer {
	return &Recognizer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe converts recorded audio to text. Audio arrives from the browser
// as WEBM/OPUS at 48kHz. Vietnamese uses the latest_long model, which handles
// tonal speech noticeably better than the default.
func (r *Recognizer) Transcribe(ctx domain.Context, audio []byte, language string) (string, error) {
	if r.apiKey == "" {
		return "", fmt.Errorf("%w: speech api key missing", domain.ErrNotConfigured)
	}
	langCode := NormalizeLanguage(language)
	model := "default"
	if langCode == "vi-VN" {
		model = "latest_long"
	}
	body := map[string]any{
		"config": map[string]any{
			"encoding":                   "WEBM_OPUS",
			"sampleRateHertz":            48000,
			"languageCode":               langCode,
			"enableAutomaticPunctuation": true,
			"useEnhanced":                true,
			"model":                      model,
		},
		"audio": map[string]any{"content": base64.StdEncoding.EncodeToString(audio)},
	}
	var out struct {
		Results []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"results"`
	}
	start := time.Now()
	err := postJSON(ctx, r.httpClient, fmt.Sprintf("%s/v1/speech:recognize?key=%s", r.baseURL, r.apiKey), "speech", body, &out)
	observability.ObserveAICall("speech", "recognize", start)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(out.Results))
	for _, res := range out.Results {
		if len(res.Alternatives) > 0 {
			parts = append(parts, res.Alternatives[0].Transcript)
		}
	}
	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		return "", fmt.Errorf("%w: no speech detected in audio", domain.ErrUpstream)
	}
	return transcript, nil
}

// Synthesizer is a Text-to-Speech REST client implementing domain.Synthesizer.
type Synthesizer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSynthesizer constructs a Text-to-Speech client.
func NewSynthesizer(baseURL, apiKey string, timeout time.Duration) *Synthesizer {
	return &Synthesizer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func voiceFor(langCode string) string {
	if langCode == "vi-VN" {
		return "vi-VN-Neural2-A"
	}
	return "en-US-Neural2-F"
}

// Synthesize renders text as MP3 audio using a per-language neural voice.
func (s *Synthesizer) Synthesize(ctx domain.Context, text, language string) ([]byte, string, error) {
	if s.apiKey == "" {
		return nil, "", fmt.Errorf("%w: tts api key missing", domain.ErrNotConfigured)
	}
	langCode := NormalizeLanguage(language)
	body := map[string]any{
		"input": map[string]any{"text": text},
		"voice": map[string]any{
			"languageCode": langCode,
			"name":         voiceFor(langCode),
			"ssmlGender":   "FEMALE",
		},
		"audioConfig": map[string]any{
			"audioEncoding": "MP3",
			"speakingRate":  0.85,
			"pitch":         -2.0,
			"volumeGainDb":  0.0,
		},
	}
	var out struct {
		AudioContent string `json:"audioContent"`
	}
	start := time.Now()
	err := postJSON(ctx, s.httpClient, fmt.Sprintf("%s/v1/text:synthesize?key=%s", s.baseURL, s.apiKey), "tts", body, &out)
	observability.ObserveAICall("tts", "synthesize", start)
	if err != nil {
		return nil, "", err
	}
	if out.AudioContent == "" {
		return nil, "", fmt.Errorf("%w: tts returned no audio", domain.ErrUpstream)
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, "", fmt.Errorf("%w: tts audio decode: %v", domain.ErrUpstream, err)
	}
	return audio, "mp3", nil
}

func postJSON(ctx domain.Context, cli *http.Client, url, name string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %s marshal: %v", domain.ErrInternal, name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %s request: %v", domain.ErrInternal, name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := cli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s status %d: %s", domain.ErrUpstream, name, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s decode: %v", domain.ErrUpstream, name, err)
	}
	return nil
}
