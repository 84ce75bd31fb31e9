package stt

import (
	"bytes"
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
	"github.com/satriahrh/juru/internal/audio"
)

const defaultWhisperModel = openai.Whisper1

// WhisperConfig holds configuration for the WhisperSpeechToText adapter
type WhisperConfig struct {
	APIKey  string // Required: OpenAI API key
	Model   string // Optional: transcription model (default: whisper-1)
	BaseURL string // Optional: OpenAI-compatible endpoint, e.g. a local whisper server
}

// WhisperSpeechToText implements SpeechToText with OpenAI's transcription API
type WhisperSpeechToText struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Ensure WhisperSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// NewWhisperSpeechToText creates a Whisper-backed transcriber
func NewWhisperSpeechToText(config WhisperConfig, logger *zap.Logger) *WhisperSpeechToText {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultWhisperModel
	}

	return &WhisperSpeechToText{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}
}

// Transcribe sends the utterance as a WAV upload
func (w *WhisperSpeechToText) Transcribe(ctx context.Context, utterance entities.Utterance, language string) entities.TranscriptionResult {
	if utterance.IsEmpty() {
		return entities.Unrecognized()
	}

	wavData, err := audio.EncodeWAV(utterance)
	if err != nil {
		w.logger.Warn("Utterance could not be encoded", zap.Error(err))
		return entities.Unrecognized()
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wavData),
		Language: baseLanguage(language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		w.logger.Error("Whisper transcription failed", zap.Error(err))
		return entities.TranscriptionFailed(err.Error())
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return entities.Unrecognized()
	}

	w.logger.Info("Transcription completed",
		zap.String("language", language),
		zap.Int("chars", len(text)))

	return entities.Recognized(text, language)
}
