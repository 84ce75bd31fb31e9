package repositories

import (
	"context"
	"errors"

	"github.com/satriahrh/juru/domain/entities"
)

// ErrWriterClosed is returned by Submit once the writer has been closed.
var ErrWriterClosed = errors.New("record writer closed")

// RecordWriter persists exchange records without blocking the caller
type RecordWriter interface {
	// Submit hands the record over for asynchronous append.
	Submit(record entities.Record) error
	// Close stops accepting records and waits for pending appends.
	Close(ctx context.Context) error
}
