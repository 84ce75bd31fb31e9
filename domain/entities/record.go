package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrIncompleteExchange is returned when a record is requested from a
// transcription or translation that did not succeed.
var ErrIncompleteExchange = errors.New("record requires a recognized transcription and a successful translation")

// RecordSeparator closes every block in the conversation log.
const RecordSeparator = "=============================="

// Record is one persisted exchange. It is never modified after creation.
type Record struct {
	Timestamp      time.Time
	SourceLanguage string
	OriginalText   string
	TargetLanguage string
	TranslatedText string
}

// NewRecord pairs a recognized transcription with its translation.
func NewRecord(at time.Time, sourceLanguage, targetLanguage string, transcription TranscriptionResult, translation TranslationResult) (Record, error) {
	if transcription.Status != TranscriptionRecognized || translation.Status != TranslationTranslated {
		return Record{}, ErrIncompleteExchange
	}

	return Record{
		Timestamp:      at,
		SourceLanguage: sourceLanguage,
		OriginalText:   transcription.Text,
		TargetLanguage: targetLanguage,
		TranslatedText: translation.Text,
	}, nil
}

// Block renders the record as it appears in the conversation log.
func (r Record) Block() string {
	t := r.Timestamp
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "===== %d/%d/%d %d:%d:%d =====\n", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute(), t.Second())
	fmt.Fprintf(&b, "%s : %s\n", r.SourceLanguage, r.OriginalText)
	fmt.Fprintf(&b, "%s : %s\n", r.TargetLanguage, r.TranslatedText)
	b.WriteString(RecordSeparator)
	b.WriteString("\n\n")
	return b.String()
}
