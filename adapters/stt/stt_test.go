package stt

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/juru/domain/entities"
)

func testUtterance() entities.Utterance {
	return entities.Utterance{PCM: make([]byte, 32000), SampleRate: 16000, Channels: 1, BitDepth: 16}
}

func newWhisperServer(t *testing.T, handler func(w http.ResponseWriter, fields map[string]string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			t.Fatalf("Bad content type: %v", err)
		}

		fields := make(map[string]string)
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Bad multipart body: %v", err)
			}
			data, _ := io.ReadAll(part)
			if part.FormName() == "file" {
				fields["file"] = string(data[:4])
				continue
			}
			fields[part.FormName()] = string(data)
		}

		handler(w, fields)
	}))
}

func TestWhisperSpeechToText_Recognized(t *testing.T) {
	var got map[string]string
	srv := newWhisperServer(t, func(w http.ResponseWriter, fields map[string]string) {
		got = fields
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": " привет "})
	})
	defer srv.Close()

	stt := NewWhisperSpeechToText(WhisperConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, zaptest.NewLogger(t))
	result := stt.Transcribe(context.Background(), testUtterance(), "ru")

	if result.Status != entities.TranscriptionRecognized {
		t.Fatalf("Expected recognized, got %s (%s)", result.Status, result.Detail)
	}
	if result.Text != "привет" {
		t.Errorf("Expected trimmed text привет, got %q", result.Text)
	}
	if result.Language != "ru" {
		t.Errorf("Expected language ru, got %s", result.Language)
	}
	if got["language"] != "ru" {
		t.Errorf("Expected language hint ru, got %q", got["language"])
	}
	if got["model"] != "whisper-1" {
		t.Errorf("Expected model whisper-1, got %q", got["model"])
	}
	if got["file"] != "RIFF" {
		t.Errorf("Expected a WAV upload, got %q", got["file"])
	}
}

func TestWhisperSpeechToText_EmptyTextIsUnrecognized(t *testing.T) {
	srv := newWhisperServer(t, func(w http.ResponseWriter, _ map[string]string) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "   "}`))
	})
	defer srv.Close()

	stt := NewWhisperSpeechToText(WhisperConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, zaptest.NewLogger(t))
	if result := stt.Transcribe(context.Background(), testUtterance(), "ru"); result.Status != entities.TranscriptionUnrecognized {
		t.Errorf("Expected unrecognized, got %s", result.Status)
	}
}

func TestWhisperSpeechToText_ServiceError(t *testing.T) {
	srv := newWhisperServer(t, func(w http.ResponseWriter, _ map[string]string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	})
	defer srv.Close()

	stt := NewWhisperSpeechToText(WhisperConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, zaptest.NewLogger(t))
	result := stt.Transcribe(context.Background(), testUtterance(), "ru")

	if result.Status != entities.TranscriptionServiceError {
		t.Fatalf("Expected service error, got %s", result.Status)
	}
	if result.Detail == "" {
		t.Error("Expected a failure detail")
	}
}

func TestWhisperSpeechToText_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	stt := NewWhisperSpeechToText(WhisperConfig{APIKey: "sk-test", BaseURL: url + "/v1"}, zaptest.NewLogger(t))
	if result := stt.Transcribe(context.Background(), testUtterance(), "ru"); result.Status != entities.TranscriptionServiceError {
		t.Errorf("Expected service error for an unreachable engine, got %s", result.Status)
	}
}

func TestWhisperSpeechToText_EmptyUtterance(t *testing.T) {
	stt := NewWhisperSpeechToText(WhisperConfig{APIKey: "sk-test", BaseURL: "http://127.0.0.1:0/v1"}, zaptest.NewLogger(t))
	if result := stt.Transcribe(context.Background(), entities.Utterance{}, "ru"); result.Status != entities.TranscriptionUnrecognized {
		t.Errorf("Expected unrecognized for empty audio, got %s", result.Status)
	}
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"ru":    "ru",
		"pt-BR": "pt",
		"zh_TW": "zh",
		"EN":    "en",
	}
	for in, want := range tests {
		if got := baseLanguage(in); got != want {
			t.Errorf("baseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecognitionConfig(t *testing.T) {
	config, err := recognitionConfig(testUtterance(), "ru-RU")
	if err != nil {
		t.Fatalf("recognitionConfig failed: %v", err)
	}
	if config.Encoding != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("Expected LINEAR16, got %s", config.Encoding)
	}
	if config.SampleRateHertz != 16000 {
		t.Errorf("Expected 16000 Hz, got %d", config.SampleRateHertz)
	}
	if config.LanguageCode != "ru-RU" {
		t.Errorf("Expected ru-RU, got %s", config.LanguageCode)
	}

	u := testUtterance()
	u.BitDepth = 24
	if _, err := recognitionConfig(u, "ru"); err == nil {
		t.Error("Expected error for 24-bit audio")
	}
}

func TestTranscriptFrom(t *testing.T) {
	resp := &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "привет"}, {Transcript: "привед"}}},
			{Alternatives: nil},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " как дела "}}},
		},
	}

	if got := transcriptFrom(resp); got != "привет как дела" {
		t.Errorf("Unexpected transcript %q", got)
	}
	if got := transcriptFrom(&speechpb.RecognizeResponse{}); got != "" {
		t.Errorf("Expected empty transcript, got %q", got)
	}
}

func TestMockSpeechToText(t *testing.T) {
	stt := NewMockSpeechToText(zaptest.NewLogger(t),
		entities.Unrecognized(),
		entities.Recognized("привет", "ru"))

	ctx := context.Background()
	if r := stt.Transcribe(ctx, testUtterance(), "ru"); r.Status != entities.TranscriptionUnrecognized {
		t.Errorf("Expected scripted unrecognized, got %s", r.Status)
	}
	if r := stt.Transcribe(ctx, testUtterance(), "ru"); r.Text != "привет" {
		t.Errorf("Expected scripted привет, got %q", r.Text)
	}
	if r := stt.Transcribe(ctx, testUtterance(), "ru"); r.Status != entities.TranscriptionRecognized {
		t.Errorf("Expected canned recognition after the script, got %s", r.Status)
	}
	if r := stt.Transcribe(ctx, entities.Utterance{}, "ru"); r.Status != entities.TranscriptionUnrecognized {
		t.Errorf("Expected unrecognized for empty audio, got %s", r.Status)
	}
}
