package entities

// TranscriptionStatus tags the outcome of a speech-to-text call.
type TranscriptionStatus int

const (
	TranscriptionRecognized TranscriptionStatus = iota + 1
	TranscriptionUnrecognized
	TranscriptionServiceError
)

func (s TranscriptionStatus) String() string {
	switch s {
	case TranscriptionRecognized:
		return "recognized"
	case TranscriptionUnrecognized:
		return "unrecognized"
	case TranscriptionServiceError:
		return "service_error"
	default:
		return "unknown"
	}
}

// TranscriptionResult is the outcome of transcribing one utterance.
// Text and Language are set only for TranscriptionRecognized, Detail only
// for TranscriptionServiceError.
type TranscriptionResult struct {
	Status   TranscriptionStatus
	Text     string
	Language string
	Detail   string
}

// Recognized builds a successful transcription outcome.
func Recognized(text, language string) TranscriptionResult {
	return TranscriptionResult{Status: TranscriptionRecognized, Text: text, Language: language}
}

// Unrecognized builds the outcome for audio the engine could not decode.
func Unrecognized() TranscriptionResult {
	return TranscriptionResult{Status: TranscriptionUnrecognized}
}

// TranscriptionFailed builds the outcome for an unreachable or failing engine.
func TranscriptionFailed(detail string) TranscriptionResult {
	return TranscriptionResult{Status: TranscriptionServiceError, Detail: detail}
}

// TranslationStatus tags the outcome of a machine-translation call.
type TranslationStatus int

const (
	TranslationTranslated TranslationStatus = iota + 1
	TranslationServiceError
)

func (s TranslationStatus) String() string {
	switch s {
	case TranslationTranslated:
		return "translated"
	case TranslationServiceError:
		return "service_error"
	default:
		return "unknown"
	}
}

// TranslationResult is the outcome of translating one recognized text.
type TranslationResult struct {
	Status TranslationStatus
	Text   string
	Detail string
}

// Translated builds a successful translation outcome.
func Translated(text string) TranslationResult {
	return TranslationResult{Status: TranslationTranslated, Text: text}
}

// TranslationFailed builds the outcome for a transport or service failure.
func TranslationFailed(detail string) TranslationResult {
	return TranslationResult{Status: TranslationServiceError, Detail: detail}
}
