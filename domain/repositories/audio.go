package repositories

import (
	"context"
	"errors"

	"github.com/satriahrh/juru/domain/entities"
)

var (
	// ErrDeviceUnavailable means the capture device could not be opened or read.
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	// ErrSourceExhausted means a finite audio source has no more utterances.
	ErrSourceExhausted = errors.New("audio source exhausted")
)

// AudioSource acquires utterances from a capture device
type AudioSource interface {
	// Open verifies the device is usable. Called once at startup.
	Open() error
	// Capture blocks until the device closes one utterance.
	Capture(ctx context.Context) (entities.Utterance, error)
}
