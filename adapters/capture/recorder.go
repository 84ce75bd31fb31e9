package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/juru/domain/entities"
	"github.com/satriahrh/juru/domain/repositories"
	"github.com/satriahrh/juru/internal/audio"
)

// RecorderSource captures utterances by running an external recorder that
// writes one WAV utterance to stdout and exits when the speaker falls silent.
// The default is SoX's rec with its silence effect.
type RecorderSource struct {
	command string
	args    []string
	logger  *zap.Logger
}

// Ensure RecorderSource implements the AudioSource interface
var _ repositories.AudioSource = (*RecorderSource)(nil)

// NewRecorderSource creates a recorder-backed audio source
func NewRecorderSource(command string, args []string, logger *zap.Logger) *RecorderSource {
	return &RecorderSource{
		command: command,
		args:    args,
		logger:  logger,
	}
}

// Open checks that the recorder can be started
func (r *RecorderSource) Open() error {
	path, err := exec.LookPath(r.command)
	if err != nil {
		return fmt.Errorf("%w: recorder %q not found: %v", repositories.ErrDeviceUnavailable, r.command, err)
	}

	r.logger.Info("Capture device ready",
		zap.String("recorder", path),
		zap.Strings("args", r.args))
	return nil
}

// Capture runs the recorder once. The process is not tied to ctx: an
// utterance in progress is allowed to finish. An interrupt from the terminal
// reaches the recorder directly through the foreground process group.
func (r *RecorderSource) Capture(ctx context.Context) (entities.Utterance, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(r.command, r.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		return entities.Utterance{}, fmt.Errorf("%w: %s: %v: %s",
			repositories.ErrDeviceUnavailable, r.command, err, strings.TrimSpace(stderr.String()))
	}

	u, err := audio.DecodeWAV(stdout.Bytes())
	if err != nil {
		return entities.Utterance{}, fmt.Errorf("%w: unreadable recorder output: %v", repositories.ErrDeviceUnavailable, err)
	}
	u.CapturedAt = time.Now()

	r.logger.Debug("Utterance captured",
		zap.Duration("duration", u.Duration()),
		zap.Duration("wall", time.Since(started)),
		zap.Int("sampleRate", u.SampleRate))

	return u, nil
}
