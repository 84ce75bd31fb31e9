package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cycle outcomes
const (
	OutcomeTranslated        = "translated"
	OutcomeUnrecognized      = "unrecognized"
	OutcomeSpeechFailed      = "speech_service_error"
	OutcomeTranslationFailed = "translation_service_error"
	OutcomeFault             = "fault"
)

// Metrics contains all Prometheus metrics for the translator. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Cycle metrics
	Cycles *prometheus.CounterVec

	// Engine metrics
	TranscriptionDuration prometheus.Histogram
	TranslationDuration   prometheus.Histogram
	UtteranceDuration     prometheus.Histogram

	// History metrics
	RecordsWritten prometheus.Counter
	WriteFailures  prometheus.Counter
	PendingWrites  prometheus.Gauge
}

// NewMetrics creates all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "juru_cycles_total",
			Help: "Total number of listening cycles by outcome",
		}, []string{"outcome"}),

		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "juru_transcription_duration_seconds",
			Help:    "Time spent waiting for the speech-to-text engine",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}),
		TranslationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "juru_translation_duration_seconds",
			Help:    "Time spent waiting for the translation engine",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}),
		UtteranceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "juru_utterance_duration_seconds",
			Help:    "Length of captured utterances",
			Buckets: []float64{0.5, 1.0, 2.0, 5.0, 10.0, 20.0, 30.0, 60.0},
		}),

		RecordsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "juru_records_written_total",
			Help: "Total number of records appended to the conversation log",
		}),
		WriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "juru_record_write_failures_total",
			Help: "Total number of failed conversation log appends",
		}),
		PendingWrites: factory.NewGauge(prometheus.GaugeOpts{
			Name: "juru_pending_writes",
			Help: "Current number of records waiting to be appended",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCycle counts a finished cycle
func (m *Metrics) RecordCycle(outcome string) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(outcome).Inc()
}

// RecordTranscription observes a speech-to-text call
func (m *Metrics) RecordTranscription(d time.Duration) {
	if m == nil {
		return
	}
	m.TranscriptionDuration.Observe(d.Seconds())
}

// RecordTranslation observes a translation call
func (m *Metrics) RecordTranslation(d time.Duration) {
	if m == nil {
		return
	}
	m.TranslationDuration.Observe(d.Seconds())
}

// RecordUtterance observes the length of a captured utterance
func (m *Metrics) RecordUtterance(d time.Duration) {
	if m == nil {
		return
	}
	m.UtteranceDuration.Observe(d.Seconds())
}

// RecordWrite counts an append attempt
func (m *Metrics) RecordWrite(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.WriteFailures.Inc()
		return
	}
	m.RecordsWritten.Inc()
}

// SetPendingWrites reports the writer's queue depth
func (m *Metrics) SetPendingWrites(n int) {
	if m == nil {
		return
	}
	m.PendingWrites.Set(float64(n))
}
