package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/satriahrh/juru/domain/entities"
)

func sineUtterance(sampleRate int, duration time.Duration) entities.Utterance {
	numSamples := int(float64(sampleRate) * duration.Seconds())
	pcm := make([]byte, numSamples*2)
	for i := 0; i < numSamples; i++ {
		t := float64(i) / float64(sampleRate)
		sample := int16(16383.0 * math.Sin(2*math.Pi*440*t))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(sample))
	}
	return entities.Utterance{PCM: pcm, SampleRate: sampleRate, Channels: 1, BitDepth: 16}
}

func TestEncodeDecodeWAV(t *testing.T) {
	u := sineUtterance(16000, 100*time.Millisecond)

	wavData, err := EncodeWAV(u)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	expectedSize := wavHeaderSize + len(u.PCM)
	if len(wavData) != expectedSize {
		t.Errorf("Expected WAV size %d, got %d", expectedSize, len(wavData))
	}

	decoded, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if decoded.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", decoded.SampleRate)
	}
	if decoded.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", decoded.Channels)
	}
	if !bytes.Equal(decoded.PCM, u.PCM) {
		t.Error("Decoded PCM does not match the encoded samples")
	}
	if got := decoded.Duration(); got != 100*time.Millisecond {
		t.Errorf("Expected duration 100ms, got %s", got)
	}
}

func TestDecodeWAV_StreamedHeader(t *testing.T) {
	u := sineUtterance(8000, 50*time.Millisecond)
	wavData, err := EncodeWAV(u)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// A recorder writing to a pipe leaves placeholder sizes behind.
	binary.LittleEndian.PutUint32(wavData[4:8], unknownSizeMax)
	binary.LittleEndian.PutUint32(wavData[40:44], unknownSizeMax)

	decoded, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if len(decoded.PCM) != len(u.PCM) {
		t.Errorf("Expected %d PCM bytes, got %d", len(u.PCM), len(decoded.PCM))
	}
}

func TestDecodeWAV_SkipsUnknownChunks(t *testing.T) {
	u := sineUtterance(8000, 10*time.Millisecond)
	wavData, err := EncodeWAV(u)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// Insert a LIST chunk between fmt and data.
	list := []byte{'L', 'I', 'S', 'T', 3, 0, 0, 0, 'a', 'b', 'c', 0}
	withList := append([]byte{}, wavData[:36]...)
	withList = append(withList, list...)
	withList = append(withList, wavData[36:]...)

	decoded, err := DecodeWAV(withList)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if !bytes.Equal(decoded.PCM, u.PCM) {
		t.Error("Decoded PCM does not match after skipping LIST chunk")
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte("RIFF")},
		{"not riff", append([]byte("RIFX\x00\x00\x00\x00WAVE"), make([]byte, 32)...)},
		{"not wave", append([]byte("RIFF\x00\x00\x00\x00AVI "), make([]byte, 32)...)},
		{"no chunks", []byte("RIFF\x04\x00\x00\x00WAVE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeWAV(tt.data); err == nil {
				t.Error("Expected error for invalid WAV data")
			}
		})
	}
}

func TestEncodeWAV_Empty(t *testing.T) {
	if _, err := EncodeWAV(entities.Utterance{SampleRate: 16000, Channels: 1, BitDepth: 16}); err == nil {
		t.Error("Expected error when encoding an empty utterance")
	}
}
