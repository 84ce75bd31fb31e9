package entities

import (
	"errors"
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	at := time.Date(2024, time.December, 31, 23, 59, 5, 0, time.UTC)

	record, err := NewRecord(at, "ru", "en", Recognized("привет", "ru"), Translated("hello"))
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}

	if record.OriginalText != "привет" {
		t.Errorf("Expected original text привет, got %s", record.OriginalText)
	}
	if record.TranslatedText != "hello" {
		t.Errorf("Expected translated text hello, got %s", record.TranslatedText)
	}
	if !record.Timestamp.Equal(at) {
		t.Errorf("Expected timestamp %s, got %s", at, record.Timestamp)
	}
}

func TestNewRecord_RejectsPartialExchanges(t *testing.T) {
	at := time.Now()

	tests := []struct {
		name          string
		transcription TranscriptionResult
		translation   TranslationResult
	}{
		{"unrecognized", Unrecognized(), Translated("hello")},
		{"speech service error", TranscriptionFailed("timeout"), Translated("hello")},
		{"translation failed", Recognized("привет", "ru"), TranslationFailed("503")},
		{"zero values", TranscriptionResult{}, TranslationResult{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(at, "ru", "en", tt.transcription, tt.translation)
			if !errors.Is(err, ErrIncompleteExchange) {
				t.Errorf("Expected ErrIncompleteExchange, got %v", err)
			}
		})
	}
}

func TestRecordBlock(t *testing.T) {
	record := Record{
		Timestamp:      time.Date(2024, time.March, 5, 9, 7, 2, 0, time.UTC),
		SourceLanguage: "ru",
		OriginalText:   "привет",
		TargetLanguage: "en",
		TranslatedText: "hello",
	}

	expected := "\n===== 5/3/2024 9:7:2 =====\nru : привет\nen : hello\n==============================\n\n"
	if got := record.Block(); got != expected {
		t.Errorf("Unexpected block:\n%q\nwant:\n%q", got, expected)
	}
}

func TestUtteranceDuration(t *testing.T) {
	u := Utterance{PCM: make([]byte, 32000), SampleRate: 16000, Channels: 1, BitDepth: 16}
	if got := u.Duration(); got != time.Second {
		t.Errorf("Expected 1s, got %s", got)
	}

	if (Utterance{}).Duration() != 0 {
		t.Error("Expected zero duration for an empty utterance")
	}
	if !(Utterance{}).IsEmpty() {
		t.Error("Expected zero utterance to be empty")
	}
}
