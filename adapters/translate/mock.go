package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
)

// MockTranslator replays scripted results, then answers from a small phrase
// book. Unknown phrases come back tagged with the target language.
type MockTranslator struct {
	logger *zap.Logger

	mu     sync.Mutex
	script []entities.TranslationResult
}

type languagePair struct{ source, target string }

var phraseBook = map[languagePair]map[string]string{
	{"ru", "en"}: {
		"привет":                 "hello",
		"спасибо":                "thank you",
		"доброе утро, как дела?": "good morning, how are you?",
	},
	{"en", "ru"}: {
		"hello":                      "привет",
		"thank you":                  "спасибо",
		"good morning, how are you?": "доброе утро, как дела?",
	},
}

// NewMockTranslator creates a new mock translator
func NewMockTranslator(logger *zap.Logger, script ...entities.TranslationResult) repositories.Translator {
	return &MockTranslator{
		logger: logger,
		script: script,
	}
}

// baseLanguage reduces "ru-RU" to "ru"
func baseLanguage(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

// Translate implements repositories.Translator
func (m *MockTranslator) Translate(ctx context.Context, text, source, target string) entities.TranslationResult {
	m.logger.Info("Mock translation",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int("chars", len(text)))

	m.mu.Lock()
	if len(m.script) > 0 {
		result := m.script[0]
		m.script = m.script[1:]
		m.mu.Unlock()
		return result
	}
	m.mu.Unlock()

	pair := languagePair{baseLanguage(source), baseLanguage(target)}
	if translated, ok := phraseBook[pair][strings.ToLower(strings.TrimSpace(text))]; ok {
		return entities.Translated(translated)
	}
	return entities.Translated(fmt.Sprintf("[%s] %s", target, text))
}
