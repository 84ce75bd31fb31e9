package entities

import "time"

// Utterance is the raw audio captured for a single listening cycle.
type Utterance struct {
	PCM        []byte    // little-endian signed PCM samples
	SampleRate int       // samples per second
	Channels   int       // interleaved channel count
	BitDepth   int       // bits per sample
	CapturedAt time.Time // when the capture device closed the utterance
}

// Duration returns the playback length of the utterance.
func (u Utterance) Duration() time.Duration {
	frame := u.Channels * u.BitDepth / 8
	if frame <= 0 || u.SampleRate <= 0 {
		return 0
	}
	frames := len(u.PCM) / frame
	return time.Duration(frames) * time.Second / time.Duration(u.SampleRate)
}

// IsEmpty reports whether the utterance carries no samples.
func (u Utterance) IsEmpty() bool {
	return len(u.PCM) == 0
}
