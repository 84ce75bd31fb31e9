package domain

import "time"

// Exchange event types
const (
	EventExchangeTranslated = "exchange_translated"
	EventExchangeAbandoned  = "exchange_abandoned"
	EventStateChanged       = "state_changed"
)

// ExchangeEvent is published to live viewers for every cycle outcome
type ExchangeEvent struct {
	Type           string    `json:"type"`
	CycleID        string    `json:"cycle_id,omitempty"`
	State          string    `json:"state,omitempty"`
	SourceLanguage string    `json:"source_language,omitempty"`
	OriginalText   string    `json:"original_text,omitempty"`
	TargetLanguage string    `json:"target_language,omitempty"`
	TranslatedText string    `json:"translated_text,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
