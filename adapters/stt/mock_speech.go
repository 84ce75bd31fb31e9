package stt

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
)

// MockSpeechToText is a placeholder implementation for speech recognition.
// It replays a script of results in order; once the script runs out (or when
// none was given) it answers from the utterance length.
type MockSpeechToText struct {
	logger *zap.Logger

	mu     sync.Mutex
	script []entities.TranscriptionResult
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger, script ...entities.TranscriptionResult) repositories.SpeechToText {
	return &MockSpeechToText{
		logger: logger,
		script: script,
	}
}

// Transcribe implements repositories.SpeechToText
func (s *MockSpeechToText) Transcribe(ctx context.Context, utterance entities.Utterance, language string) entities.TranscriptionResult {
	s.logger.Info("Processing speech-to-text",
		zap.Int("audioSize", len(utterance.PCM)),
		zap.Int("sampleRate", utterance.SampleRate),
		zap.String("language", language))

	s.mu.Lock()
	if len(s.script) > 0 {
		result := s.script[0]
		s.script = s.script[1:]
		s.mu.Unlock()
		return result
	}
	s.mu.Unlock()

	// Mock transcription based on utterance length
	switch d := utterance.Duration(); {
	case d >= 3*time.Second:
		return entities.Recognized("This is a longer sentence for the translator.", language)
	case d >= time.Second:
		return entities.Recognized("Good morning, how are you?", language)
	case d > 0:
		return entities.Recognized("Hello", language)
	default:
		return entities.Unrecognized()
	}
}
