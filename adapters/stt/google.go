package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client *speech.Client
	logger *zap.Logger
}

// Ensure GoogleSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates the Speech client once for the whole run.
// Without a credentials file the application default credentials are used.
func NewGoogleSpeechToText(ctx context.Context, credentialsFile string, logger *zap.Logger) (*GoogleSpeechToText, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleSpeechToText{client: client, logger: logger}, nil
}

// Transcribe recognizes a single utterance with the synchronous API
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, utterance entities.Utterance, language string) entities.TranscriptionResult {
	if utterance.IsEmpty() {
		return entities.Unrecognized()
	}

	config, err := recognitionConfig(utterance, language)
	if err != nil {
		g.logger.Warn("Utterance layout not supported", zap.Error(err))
		return entities.Unrecognized()
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: utterance.PCM},
		},
	})
	if err != nil {
		g.logger.Error("Google recognition failed", zap.Error(err))
		return entities.TranscriptionFailed(err.Error())
	}

	text := transcriptFrom(resp)
	if text == "" {
		return entities.Unrecognized()
	}

	g.logger.Info("Transcription completed",
		zap.String("language", language),
		zap.Int("chars", len(text)))

	return entities.Recognized(text, language)
}

// Close releases the gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// recognitionConfig describes raw PCM utterances to the Speech API
func recognitionConfig(u entities.Utterance, language string) (*speechpb.RecognitionConfig, error) {
	encoding, err := getAudioEncoding(u.BitDepth)
	if err != nil {
		return nil, err
	}

	return &speechpb.RecognitionConfig{
		Encoding:          encoding,
		SampleRateHertz:   int32(u.SampleRate),
		AudioChannelCount: int32(u.Channels),
		LanguageCode:      language,
	}, nil
}

// getAudioEncoding maps the sample width to a Google Speech API encoding
func getAudioEncoding(bitDepth int) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch bitDepth {
	case 16:
		return speechpb.RecognitionConfig_LINEAR16, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// transcriptFrom joins the best alternative of every result
func transcriptFrom(resp *speechpb.RecognizeResponse) string {
	var parts []string
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(alternatives[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
