package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
	"github.com/satriahrh/juru/internal/audio"
)

// ReplaySource plays the WAV files of a directory in name order, one file per
// utterance, and then reports ErrSourceExhausted.
type ReplaySource struct {
	dir    string
	logger *zap.Logger

	mu    sync.Mutex
	files []string
	next  int
}

// Ensure ReplaySource implements the AudioSource interface
var _ repositories.AudioSource = (*ReplaySource)(nil)

// NewReplaySource creates a directory-backed audio source
func NewReplaySource(dir string, logger *zap.Logger) *ReplaySource {
	return &ReplaySource{dir: dir, logger: logger}
}

// Open lists the recordings to replay
func (s *ReplaySource) Open() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrDeviceUnavailable, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return fmt.Errorf("%w: no .wav recordings in %s", repositories.ErrDeviceUnavailable, s.dir)
	}

	s.mu.Lock()
	s.files = files
	s.next = 0
	s.mu.Unlock()

	s.logger.Info("Replay source ready", zap.String("dir", s.dir), zap.Int("recordings", len(files)))
	return nil
}

// Capture returns the next recording
func (s *ReplaySource) Capture(ctx context.Context) (entities.Utterance, error) {
	s.mu.Lock()
	if s.next >= len(s.files) {
		s.mu.Unlock()
		return entities.Utterance{}, repositories.ErrSourceExhausted
	}
	path := s.files[s.next]
	s.next++
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Utterance{}, fmt.Errorf("%w: %v", repositories.ErrDeviceUnavailable, err)
	}

	u, err := audio.DecodeWAV(data)
	if err != nil {
		return entities.Utterance{}, fmt.Errorf("%w: %s: %v", repositories.ErrDeviceUnavailable, filepath.Base(path), err)
	}
	u.CapturedAt = time.Now()

	s.logger.Debug("Replaying recording", zap.String("file", path), zap.Any("wav", audio.Info(u)))
	return u, nil
}
