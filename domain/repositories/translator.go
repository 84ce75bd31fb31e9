package repositories

import (
	"context"

	"github.com/satriahrh/juru/domain/entities"
)

// Translator abstracts machine-translation services
type Translator interface {
	// Translate converts text from the source language to the target language
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) entities.TranslationResult
}
