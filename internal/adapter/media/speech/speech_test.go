package speech_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercoach-ai/career-coach-backend/internal/adapter/media/speech"
	"github.com/careercoach-ai/career-coach-backend/internal/domain"
)

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"vi", "vi-VN"},
		{"VI-VN", "vi-VN"},
		{"vietnamese", "vi-VN"},
		{"en", "en-US"},
		{"en-us", "en-US"},
		{"", "en-US"},
		{"klingon", "en-US"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, speech.NormalizeLanguage(tc.in), "input %q", tc.in)
	}
}

func TestTranscribe_NoAPIKey(t *testing.T) {
	t.Parallel()
	r := speech.NewRecognizer("http://unused", "", time.Second)
	_, err := r.Transcribe(context.Background(), []byte("audio"), "vi")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestTranscribe_VietnameseConfig(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech:recognize", r.URL.Path)
		var req struct {
			Config struct {
				Encoding        string `json:"encoding"`
				SampleRateHertz int    `json:"sampleRateHertz"`
				LanguageCode    string `json:"languageCode"`
				Model           string `json:"model"`
			} `json:"config"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "WEBM_OPUS", req.Config.Encoding)
		assert.Equal(t, 48000, req.Config.SampleRateHertz)
		assert.Equal(t, "vi-VN", req.Config.LanguageCode)
		assert.Equal(t, "latest_long", req.Config.Model)
		_, _ = w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"xin chào"}]},{"alternatives":[{"transcript":"tôi là A"}]}]}`))
	}))
	defer srv.Close()

	r := speech.NewRecognizer(srv.URL, "key", time.Second)
	out, err := r.Transcribe(context.Background(), []byte("webm-audio"), "vi")
	require.NoError(t, err)
	assert.Equal(t, "xin chào tôi là A", out)
}

func TestTranscribe_NoSpeechDetected(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	r := speech.NewRecognizer(srv.URL, "key", time.Second)
	_, err := r.Transcribe(context.Background(), []byte("silence"), "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "no speech detected")
}

func TestSynthesize_NoAPIKey(t *testing.T) {
	t.Parallel()
	s := speech.NewSynthesizer("http://unused", "", time.Second)
	_, _, err := s.Synthesize(context.Background(), "hello", "en")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSynthesize_VoiceSelection(t *testing.T) {
	t.Parallel()
	audio := []byte{0xFF, 0xF3, 0x01, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		var req struct {
			Voice struct {
				LanguageCode string `json:"languageCode"`
				Name         string `json:"name"`
				SSMLGender   string `json:"ssmlGender"`
			} `json:"voice"`
			AudioConfig struct {
				AudioEncoding string  `json:"audioEncoding"`
				SpeakingRate  float64 `json:"speakingRate"`
				Pitch         float64 `json:"pitch"`
			} `json:"audioConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vi-VN", req.Voice.LanguageCode)
		assert.Equal(t, "vi-VN-Neural2-A", req.Voice.Name)
		assert.Equal(t, "FEMALE", req.Voice.SSMLGender)
		assert.Equal(t, "MP3", req.AudioConfig.AudioEncoding)
		assert.InDelta(t, 0.85, req.AudioConfig.SpeakingRate, 0.001)
		assert.InDelta(t, -2.0, req.AudioConfig.Pitch, 0.001)
		resp, _ := json.Marshal(map[string]string{"audioContent": base64.StdEncoding.EncodeToString(audio)})
		_, _ = w.Write(resp)
	}))
	defer srv.Close()

	s := speech.NewSynthesizer(srv.URL, "key", time.Second)
	out, format, err := s.Synthesize(context.Background(), "xin chào", "vi")
	require.NoError(t, err)
	assert.Equal(t, audio, out)
	assert.Equal(t, "mp3", format)
}

func TestSynthesize_EnglishVoice(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Voice struct {
				Name string `json:"name"`
			} `json:"voice"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en-US-Neural2-F", req.Voice.Name)
		_, _ = w.Write([]byte(`{"audioContent":"` + base64.StdEncoding.EncodeToString([]byte("mp3")) + `"}`))
	}))
	defer srv.Close()

	s := speech.NewSynthesizer(srv.URL, "key", time.Second)
	_, _, err := s.Synthesize(context.Background(), "hello", "en")
	require.NoError(t, err)
}

func TestSynthesize_EmptyAudio(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := speech.NewSynthesizer(srv.URL, "key", time.Second)
	_, _, err := s.Synthesize(context.Background(), "hello", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
