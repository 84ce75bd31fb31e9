package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig holds configuration for the OpenAITranslator
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAITranslator translates through the chat completions API
type OpenAITranslator struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// Ensure OpenAITranslator implements the Translator interface
var _ repositories.Translator = (*OpenAITranslator)(nil)

// NewOpenAITranslator creates a chat-completions translator
func NewOpenAITranslator(config OpenAIConfig, logger *zap.Logger) (*OpenAITranslator, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAITranslator{
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
		model:  model,
	}, nil
}

// Translate asks the chat model for a translation of a single utterance
func (o *OpenAITranslator) Translate(ctx context.Context, text, source, target string) entities.TranslationResult {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		o.logger.Error("OpenAI translation failed", zap.Error(err))
		return entities.TranslationFailed(err.Error())
	}

	if len(resp.Choices) == 0 {
		return entities.TranslationFailed("no choices in response")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return entities.TranslationFailed(fmt.Sprintf("empty translation (finish reason %s)", resp.Choices[0].FinishReason))
	}

	o.logger.Info("Translation completed",
		zap.String("source", source),
		zap.String("target", target),
		zap.String("model", o.model))

	return entities.Translated(translated)
}
