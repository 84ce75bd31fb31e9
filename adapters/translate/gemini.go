package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig holds configuration for the GeminiTranslator
type GeminiConfig struct {
	APIKey  string // Required: Gemini API key
	Model   string // Optional: model name (default: gemini-2.0-flash)
	BaseURL string // Optional: API endpoint override
}

// ValidateGeminiConfig validates the Gemini configuration
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return errors.New("gemini API key is required")
	}
	return nil
}

// GeminiTranslator implements the Translator interface using Google's Gemini API
type GeminiTranslator struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// Ensure GeminiTranslator implements the Translator interface
var _ repositories.Translator = (*GeminiTranslator)(nil)

// NewGeminiTranslator creates a new Gemini translator
func NewGeminiTranslator(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiTranslator, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiTranslator{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

// Translate asks the model for a translation of a single utterance
func (g *GeminiTranslator) Translate(ctx context.Context, text, source, target string) entities.TranslationResult {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction(source, target), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		g.logger.Error("Gemini translation failed", zap.Error(err))
		return entities.TranslationFailed(err.Error())
	}

	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		g.logger.Warn("Gemini returned an empty translation")
		return entities.TranslationFailed("empty translation")
	}

	g.logger.Info("Translation completed",
		zap.String("source", source),
		zap.String("target", target),
		zap.String("model", g.model))

	return entities.Translated(translated)
}
