// Package extract normalizes free-form LLM replies into the strict JSON
// payload shapes the API contract requires.
//
// Model output is unreliable rather than adversarial: replies arrive wrapped
// in markdown fences, prefixed with prose, or carrying trailing commas. The
// extractor applies an ordered fallback ladder and always yields a usable
// payload for coach replies; only array-shaped targets surface a diagnostic
// error to the caller.
package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/observability"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
	"github.com/careercoach-ai/career-coach-backend/pkg/textx"
)

// Kind tags the variant of an extracted coach payload.
type Kind string

// Payload kinds, matching the "type" discriminator emitted by the model.
const (
	KindEvaluation    Kind = "evaluation"
	KindGeneralAnswer Kind = "general_answer"
)

// Fallback names the ladder rung that produced a result.
type Fallback string

// Fallback reasons. FallbackNone means the reply parsed cleanly.
const (
	FallbackNone      Fallback = ""
	FallbackNoJSON    Fallback = "no_json_found"
	FallbackParse     Fallback = "parse_error"
	FallbackBadShape  Fallback = "bad_shape"
	FallbackEmptyText Fallback = "empty_suggested_answer"
	FallbackUpstream  Fallback = "upstream_error"
)

// rawExcerptLimit bounds how much raw reply text is carried into fallback
// payloads and diagnostic errors.
const rawExcerptLimit = 500

// Canned coach fallback returned when a reply cannot be parsed at all.
const (
	fallbackFeedback  = "Câu trả lời của bạn cho thấy nỗ lực tốt. Hãy tiếp tục luyện tập và cố gắng trở nên cụ thể hơn với các ví dụ."
	fallbackSuggested = "Cung cấp một câu trả lời có cấu trúc hơn với các ví dụ cụ thể từ kinh nghiệm của bạn."
)

// Result is the normalized outcome of extracting a coach reply. Exactly one of
// Evaluation or General is set, selected by Kind. Reason names the fallback
// rung taken, empty when the reply parsed cleanly.
type Result struct {
	Kind       Kind
	Evaluation *domain.Evaluation
	General    *domain.GeneralAnswer
	Reason     Fallback
}

// ParseError is returned by array-shaped extractions when the reply cannot be
// repaired into valid JSON. Raw carries a bounded excerpt for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ai reply parse failed: %v", e.Err)
}

// Unwrap maps parse failures onto the upstream error sentinel.
func (e *ParseError) Unwrap() error { return domain.ErrUpstream }

var (
	fenceRe         = regexp.MustCompile("```(?:json|markdown)?")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// stripFences removes markdown code fence markers anywhere in the reply.
func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// stripTrailingCommas removes commas immediately preceding a closing brace or
// bracket, a common model defect.
func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// balancedSlice returns the first balanced top-level open...close region of s.
// It tracks nesting depth and skips delimiters inside quoted strings
// (including escape sequences), so nested structures and brace characters in
// string values do not terminate the match early.
func balancedSlice(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Object extracts the first balanced JSON object from raw and parses it after
// cleanup. Used by object-shaped endpoints without a fallback payload (CV
// analysis); failures carry a bounded raw excerpt.
func Object(raw string) (map[string]any, error) {
	cleaned := stripFences(raw)
	candidate, ok := balancedSlice(cleaned, '{', '}')
	if !ok {
		observability.ExtractionsTotal.WithLabelValues("object", string(FallbackNoJSON)).Inc()
		return nil, &ParseError{Raw: textx.Excerpt(raw, rawExcerptLimit), Err: fmt.Errorf("no JSON object found")}
	}
	candidate = stripTrailingCommas(candidate)
	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		observability.ExtractionsTotal.WithLabelValues("object", string(FallbackParse)).Inc()
		return nil, &ParseError{Raw: textx.Excerpt(raw, rawExcerptLimit), Err: err}
	}
	observability.ExtractionsTotal.WithLabelValues("object", "parsed").Inc()
	return out, nil
}

// StringArray extracts the first balanced JSON array of strings from raw.
// Embedded literal newlines are collapsed to spaces before parsing since the
// target is a flat array of short strings. Used by question generation;
// failures are explicit so the caller can surface diagnostics.
func StringArray(raw string) ([]string, error) {
	cleaned := stripFences(raw)
	candidate, ok := balancedSlice(cleaned, '[', ']')
	if !ok {
		observability.ExtractionsTotal.WithLabelValues("array", string(FallbackNoJSON)).Inc()
		return nil, &ParseError{Raw: textx.Excerpt(raw, rawExcerptLimit), Err: fmt.Errorf("no JSON array found")}
	}
	candidate = stripTrailingCommas(candidate)
	candidate = strings.NewReplacer("\n", " ", "\r", " ").Replace(candidate)
	var items []string
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		observability.ExtractionsTotal.WithLabelValues("array", string(FallbackParse)).Inc()
		return nil, &ParseError{Raw: textx.Excerpt(raw, rawExcerptLimit), Err: err}
	}
	observability.ExtractionsTotal.WithLabelValues("array", "parsed").Inc()
	return items, nil
}

// CoachReply normalizes an interview-coach completion into a tagged payload.
// It never fails: every rung of the ladder ends in a usable variant.
//
//   - no balanced object: GeneralAnswer carrying a bounded raw excerpt
//   - object found but unparseable, or an unknown "type": canned Evaluation
//   - evaluation missing its suggested answer: placeholder substituted
func CoachReply(raw string) Result {
	cleaned := stripFences(raw)
	candidate, ok := balancedSlice(cleaned, '{', '}')
	if !ok {
		observability.ExtractionsTotal.WithLabelValues("coach", string(FallbackNoJSON)).Inc()
		resp := textx.Excerpt(cleaned, rawExcerptLimit)
		if resp == "" {
			resp = "Please provide a clearer input."
		}
		return Result{
			Kind:    KindGeneralAnswer,
			General: &domain.GeneralAnswer{Response: resp},
			Reason:  FallbackNoJSON,
		}
	}
	candidate = stripTrailingCommas(candidate)

	var payload struct {
		Type            string `json:"type"`
		Feedback        string `json:"feedback"`
		SuggestedAnswer string `json:"suggested_answer"`
		Response        string `json:"response"`
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		slog.Warn("coach reply parse failed, using canned fallback", slog.Any("error", err))
		observability.ExtractionsTotal.WithLabelValues("coach", string(FallbackParse)).Inc()
		return cannedEvaluation(FallbackParse)
	}

	switch Kind(payload.Type) {
	case KindEvaluation:
		ev := &domain.Evaluation{Feedback: payload.Feedback, SuggestedAnswer: payload.SuggestedAnswer}
		reason := FallbackNone
		if strings.TrimSpace(ev.SuggestedAnswer) == "" {
			// Contract: every evaluation carries a non-empty suggested answer.
			ev.SuggestedAnswer = fallbackSuggested
			reason = FallbackEmptyText
		}
		observability.ExtractionsTotal.WithLabelValues("coach", outcomeLabel(reason)).Inc()
		return Result{Kind: KindEvaluation, Evaluation: ev, Reason: reason}
	case KindGeneralAnswer:
		observability.ExtractionsTotal.WithLabelValues("coach", "parsed").Inc()
		return Result{Kind: KindGeneralAnswer, General: &domain.GeneralAnswer{Response: payload.Response}, Reason: FallbackNone}
	default:
		slog.Warn("coach reply carried unknown type discriminator", slog.String("type", payload.Type))
		observability.ExtractionsTotal.WithLabelValues("coach", string(FallbackBadShape)).Inc()
		return cannedEvaluation(FallbackBadShape)
	}
}

func cannedEvaluation(reason Fallback) Result {
	return Result{
		Kind: KindEvaluation,
		Evaluation: &domain.Evaluation{
			Feedback:        fallbackFeedback,
			SuggestedAnswer: fallbackSuggested,
		},
		Reason: reason,
	}
}

func outcomeLabel(r Fallback) string {
	if r == FallbackNone {
		return "parsed"
	}
	return string(r)
}
