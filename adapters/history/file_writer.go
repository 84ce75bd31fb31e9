package history

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
	"github.com/satriahrh/juru/internal/metrics"
	"github.com/satriahrh/juru/internal/queue"
)

// FileWriter appends records to a UTF-8 text log. A single goroutine owns the
// destination and drains an unbounded FIFO, so blocks are written whole and in
// submission order.
type FileWriter struct {
	path    string
	logger  *zap.Logger
	metrics *metrics.Metrics
	onError func(entities.Record, error)

	pending *queue.Queue[entities.Record]
	notify  chan struct{}
	stop    chan struct{}
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// Ensure FileWriter implements the RecordWriter interface
var _ repositories.RecordWriter = (*FileWriter)(nil)

// Option configures a FileWriter
type Option func(*FileWriter)

// WithMetrics reports append results and queue depth
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *FileWriter) { w.metrics = m }
}

// WithErrorHandler is called from the writer goroutine after a failed append
func WithErrorHandler(fn func(entities.Record, error)) Option {
	return func(w *FileWriter) { w.onError = fn }
}

// NewFileWriter starts the writer goroutine for the log at path
func NewFileWriter(path string, logger *zap.Logger, opts ...Option) *FileWriter {
	w := &FileWriter{
		path:    path,
		logger:  logger,
		pending: queue.New[entities.Record](),
		notify:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	return w
}

// Submit queues the record and returns immediately
func (w *FileWriter) Submit(record entities.Record) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return repositories.ErrWriterClosed
	}
	w.pending.Enqueue(record)
	w.mu.Unlock()

	w.metrics.SetPendingWrites(w.pending.Len())

	select {
	case w.notify <- struct{}{}:
	default:
	}
	return nil
}

// Close stops accepting records and waits until every queued record has been
// appended or ctx expires.
func (w *FileWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.stop)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("record writer drain interrupted with %d pending: %w", w.pending.Len(), ctx.Err())
	}
}

// Pending returns the number of records not yet appended
func (w *FileWriter) Pending() int {
	return w.pending.Len()
}

func (w *FileWriter) run() {
	defer close(w.done)

	for {
		select {
		case <-w.notify:
			w.drain()
		case <-w.stop:
			w.drain()
			w.logger.Info("Record writer drained", zap.String("path", w.path))
			return
		}
	}
}

func (w *FileWriter) drain() {
	for {
		record, ok := w.pending.Dequeue()
		if !ok {
			return
		}

		err := w.appendRecord(record)
		w.metrics.RecordWrite(err)
		w.metrics.SetPendingWrites(w.pending.Len())

		if err != nil {
			w.logger.Error("Failed to append record",
				zap.String("path", w.path),
				zap.Time("timestamp", record.Timestamp),
				zap.Error(err))
			if w.onError != nil {
				w.onError(record, err)
			}
			continue
		}

		w.logger.Debug("Record appended",
			zap.String("path", w.path),
			zap.Time("timestamp", record.Timestamp))
	}
}

// appendRecord opens the log in append mode for every block so that a
// rotated or deleted file is recreated rather than written through a stale
// descriptor.
func (w *FileWriter) appendRecord(record entities.Record) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open conversation log: %w", err)
	}

	if _, err := f.WriteString(record.Block()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write conversation log: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close conversation log: %w", err)
	}
	return nil
}
