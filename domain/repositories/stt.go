package repositories

import (
	"context"

	"github.com/satriahrh/juru/domain/entities"
)

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts one utterance to text in the hinted language.
	// Failures are folded into the returned result, never returned as errors.
	Transcribe(ctx context.Context, utterance entities.Utterance, language string) entities.TranscriptionResult
}
