package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain"
	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
	"github.com/satriahrh/juru/internal/metrics"
)

// State is the position of the translation loop within a cycle
type State int32

const (
	StateIdle State = iota
	StateListening
	StateTranscribing
	StateTranslating
	StatePersisting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateTranscribing:
		return "transcribing"
	case StateTranslating:
		return "translating"
	case StatePersisting:
		return "persisting"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Console is the operator-facing output of the loop
type Console interface {
	Listening()
	Exchange(source, original, target, translated string)
	NotUnderstood()
	SpeechUnavailable(detail string)
	Failure(detail string)
}

// Broadcaster publishes exchange events to live viewers
type Broadcaster interface {
	Broadcast(event domain.ExchangeEvent)
}

// TranslationConfig is the immutable per-run configuration of the loop
type TranslationConfig struct {
	SourceLanguage     string
	TargetLanguage     string
	SpeechTimeout      time.Duration
	TranslationTimeout time.Duration
}

// Status is a point-in-time view of the loop
type Status struct {
	State          string     `json:"state"`
	SourceLanguage string     `json:"source_language"`
	TargetLanguage string     `json:"target_language"`
	Cycles         int64      `json:"cycles"`
	Translated     int64      `json:"translated"`
	Abandoned      int64      `json:"abandoned"`
	LastExchangeAt *time.Time `json:"last_exchange_at,omitempty"`
}

// TranslationService runs the capture, transcribe, translate and log cycle
type TranslationService struct {
	source      repositories.AudioSource
	speech      repositories.SpeechToText
	translator  repositories.Translator
	writer      repositories.RecordWriter
	console     Console
	config      TranslationConfig
	logger      *zap.Logger
	metrics     *metrics.Metrics
	broadcaster Broadcaster
	now         func() time.Time

	state      atomic.Int32
	cycles     atomic.Int64
	translated atomic.Int64
	abandoned  atomic.Int64

	mu             sync.Mutex
	lastExchangeAt time.Time
}

// Option configures a TranslationService
type Option func(*TranslationService)

// WithMetrics records cycle outcomes and engine latencies
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TranslationService) { s.metrics = m }
}

// WithBroadcaster publishes every cycle outcome
func WithBroadcaster(b Broadcaster) Option {
	return func(s *TranslationService) { s.broadcaster = b }
}

// WithClock overrides the record timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *TranslationService) { s.now = now }
}

// NewTranslationService creates a new translation service
func NewTranslationService(
	source repositories.AudioSource,
	stt repositories.SpeechToText,
	translator repositories.Translator,
	writer repositories.RecordWriter,
	console Console,
	config TranslationConfig,
	logger *zap.Logger,
	opts ...Option,
) *TranslationService {
	s := &TranslationService{
		source:     source,
		speech:     stt,
		translator: translator,
		writer:     writer,
		console:    console,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current loop state
func (s *TranslationService) State() State {
	return State(s.state.Load())
}

// Status returns the loop state and counters
func (s *TranslationService) Status() Status {
	status := Status{
		State:          s.State().String(),
		SourceLanguage: s.config.SourceLanguage,
		TargetLanguage: s.config.TargetLanguage,
		Cycles:         s.cycles.Load(),
		Translated:     s.translated.Load(),
		Abandoned:      s.abandoned.Load(),
	}

	s.mu.Lock()
	if !s.lastExchangeAt.IsZero() {
		at := s.lastExchangeAt
		status.LastExchangeAt = &at
	}
	s.mu.Unlock()

	return status
}

// Run loops until ctx is cancelled, the source runs dry or the capture
// device fails. Only a device failure is returned as an error; cancellation
// is checked between cycles so an in-flight exchange always completes.
func (s *TranslationService) Run(ctx context.Context) error {
	s.logger.Info("Translation loop started",
		zap.String("source", s.config.SourceLanguage),
		zap.String("target", s.config.TargetLanguage))

	for {
		if ctx.Err() != nil {
			s.stop("cancelled")
			return nil
		}

		err := s.runCycle(ctx)
		if err == nil {
			continue
		}

		switch {
		case ctx.Err() != nil:
			// The recorder is interrupted by the same signal that cancels ctx.
			s.logger.Debug("Capture ended by cancellation", zap.Error(err))
			s.stop("cancelled")
			return nil
		case errors.Is(err, repositories.ErrSourceExhausted):
			s.stop("source exhausted")
			return nil
		default:
			s.logger.Error("Capture device failed", zap.Error(err))
			s.stop("capture failed")
			return err
		}
	}
}

func (s *TranslationService) stop(reason string) {
	s.setState(StateStopped, "")
	s.logger.Info("Translation loop stopped", zap.String("reason", reason))
}

// runCycle performs one exchange. The returned error is always a capture
// error; every other failure abandons the cycle and returns nil.
func (s *TranslationService) runCycle(ctx context.Context) (err error) {
	cycleID := uuid.NewString()
	logger := s.logger.With(zap.String("cycleID", cycleID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from cycle fault",
				zap.Any("panic", r),
				zap.Stack("stack"))
			detail := fmt.Sprint(r)
			s.console.Failure(detail)
			s.abandon(cycleID, metrics.OutcomeFault, detail)
			err = nil
		}
	}()

	s.setState(StateListening, cycleID)
	s.console.Listening()

	utterance, err := s.source.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	s.cycles.Add(1)
	s.metrics.RecordUtterance(utterance.Duration())
	logger.Debug("Utterance captured",
		zap.Int("bytes", len(utterance.PCM)),
		zap.Duration("duration", utterance.Duration()))

	s.setState(StateTranscribing, cycleID)
	transcription := s.transcribe(ctx, utterance)

	switch transcription.Status {
	case entities.TranscriptionRecognized:
		logger.Info("Utterance recognized", zap.Int("chars", len(transcription.Text)))
	case entities.TranscriptionUnrecognized:
		logger.Info("Utterance not understood")
		s.console.NotUnderstood()
		s.abandon(cycleID, metrics.OutcomeUnrecognized, "not understood")
		return nil
	case entities.TranscriptionServiceError:
		logger.Warn("Speech service unavailable", zap.String("detail", transcription.Detail))
		s.console.SpeechUnavailable(transcription.Detail)
		s.abandon(cycleID, metrics.OutcomeSpeechFailed, transcription.Detail)
		return nil
	default:
		panic(fmt.Sprintf("unexpected transcription status %s", transcription.Status))
	}

	s.setState(StateTranslating, cycleID)
	translation := s.translate(ctx, transcription.Text)

	switch translation.Status {
	case entities.TranslationTranslated:
		logger.Info("Utterance translated", zap.Int("chars", len(translation.Text)))
	case entities.TranslationServiceError:
		logger.Warn("Translation failed", zap.String("detail", translation.Detail))
		s.console.Failure(translation.Detail)
		s.abandon(cycleID, metrics.OutcomeTranslationFailed, translation.Detail)
		return nil
	default:
		panic(fmt.Sprintf("unexpected translation status %s", translation.Status))
	}

	s.setState(StatePersisting, cycleID)
	s.persist(logger, cycleID, transcription, translation)
	s.setState(StateIdle, cycleID)
	return nil
}

func (s *TranslationService) transcribe(ctx context.Context, utterance entities.Utterance) entities.TranscriptionResult {
	callCtx, cancel := detached(ctx, s.config.SpeechTimeout)
	defer cancel()

	start := time.Now()
	result := s.speech.Transcribe(callCtx, utterance, s.config.SourceLanguage)
	s.metrics.RecordTranscription(time.Since(start))

	if result.Status == entities.TranscriptionRecognized && strings.TrimSpace(result.Text) == "" {
		return entities.Unrecognized()
	}
	return result
}

func (s *TranslationService) translate(ctx context.Context, text string) entities.TranslationResult {
	callCtx, cancel := detached(ctx, s.config.TranslationTimeout)
	defer cancel()

	start := time.Now()
	result := s.translator.Translate(callCtx, text, s.config.SourceLanguage, s.config.TargetLanguage)
	s.metrics.RecordTranslation(time.Since(start))
	return result
}

func (s *TranslationService) persist(logger *zap.Logger, cycleID string, transcription entities.TranscriptionResult, translation entities.TranslationResult) {
	record, err := entities.NewRecord(s.now(), s.config.SourceLanguage, s.config.TargetLanguage, transcription, translation)
	if err != nil {
		panic(err)
	}

	s.console.Exchange(record.SourceLanguage, record.OriginalText, record.TargetLanguage, record.TranslatedText)

	if err := s.writer.Submit(record); err != nil {
		logger.Error("Failed to submit record", zap.Error(err))
		s.console.Failure(err.Error())
	}

	s.translated.Add(1)
	s.mu.Lock()
	s.lastExchangeAt = record.Timestamp
	s.mu.Unlock()

	s.metrics.RecordCycle(metrics.OutcomeTranslated)
	s.broadcast(domain.ExchangeEvent{
		Type:           domain.EventExchangeTranslated,
		CycleID:        cycleID,
		SourceLanguage: record.SourceLanguage,
		OriginalText:   record.OriginalText,
		TargetLanguage: record.TargetLanguage,
		TranslatedText: record.TranslatedText,
		Timestamp:      record.Timestamp,
	})
}

func (s *TranslationService) abandon(cycleID, outcome, reason string) {
	s.abandoned.Add(1)
	s.metrics.RecordCycle(outcome)
	s.broadcast(domain.ExchangeEvent{
		Type:      domain.EventExchangeAbandoned,
		CycleID:   cycleID,
		Reason:    reason,
		Timestamp: s.now(),
	})
	s.setState(StateIdle, cycleID)
}

func (s *TranslationService) setState(state State, cycleID string) {
	if State(s.state.Swap(int32(state))) == state {
		return
	}
	s.broadcast(domain.ExchangeEvent{
		Type:      domain.EventStateChanged,
		CycleID:   cycleID,
		State:     state.String(),
		Timestamp: s.now(),
	})
}

func (s *TranslationService) broadcast(event domain.ExchangeEvent) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(event)
	}
}

// detached derives a context that keeps ctx's values but not its
// cancellation, bounded by timeout when one is set.
func detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, timeout)
}
