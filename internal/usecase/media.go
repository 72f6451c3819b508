package usecase

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

// minAudioBytes rejects clips too short to contain recognizable speech.
const minAudioBytes = 1000

// MediaService dispatches uploads to the OCR, speech recognition and speech
// synthesis collaborators. CPU-bound preprocessing (content sniffing) runs on
// a bounded worker pool so large uploads do not stall the serving path.
type MediaService struct {
	OCR  domain.OCRClient
	STT  domain.Transcriber
	TTS  domain.Synthesizer
	pool chan struct{}
}

// NewMediaService constructs a MediaService with the given worker bound.
func NewMediaService(ocr domain.OCRClient, stt domain.Transcriber, tts domain.Synthesizer, workers int) *MediaService {
	if workers < 1 {
		workers = 1
	}
	return &MediaService{OCR: ocr, STT: stt, TTS: tts, pool: make(chan struct{}, workers)}
}

// withWorker runs fn on the bounded pool, honoring context cancellation while
// waiting for a slot.
func (s *MediaService) withWorker(ctx domain.Context, fn func() error) error {
	select {
	case s.pool <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.pool }()
	return fn()
}

// ExtractCV OCRs an uploaded CV file. The MIME type is sniffed from content;
// the client-declared type is only a fallback when sniffing is inconclusive.
func (s *MediaService) ExtractCV(ctx domain.Context, content []byte, declaredType string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrInvalidArgument)
	}
	var mimeType string
	if err := s.withWorker(ctx, func() error {
		mimeType = detectMIME(content, declaredType)
		return nil
	}); err != nil {
		return "", err
	}
	return s.OCR.Recognize(ctx, content, mimeType)
}

// Transcribe converts an uploaded audio clip to text.
func (s *MediaService) Transcribe(ctx domain.Context, audio []byte, language string) (string, error) {
	if len(audio) < minAudioBytes {
		return "", fmt.Errorf("%w: audio file too short", domain.ErrInvalidArgument)
	}
	return s.STT.Transcribe(ctx, audio, language)
}

// Speak synthesizes speech for the given text.
func (s *MediaService) Speak(ctx domain.Context, text, language string) ([]byte, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("%w: text required", domain.ErrInvalidArgument)
	}
	return s.TTS.Synthesize(ctx, text, language)
}

// detectMIME sniffs content, keeping the declared type when detection lands
// on the generic binary type but the client said something more specific.
func detectMIME(content []byte, declared string) string {
	detected := mimetype.Detect(content).String()
	// Strip parameters such as charset for dispatch.
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}
	if detected == "application/octet-stream" && declared != "" {
		return declared
	}
	return detected
}
