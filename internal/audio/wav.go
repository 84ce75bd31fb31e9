package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/satriahrh/juru/domain/entities"
)

// WAVHeader represents the canonical 44-byte header of a PCM WAV file
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

const (
	wavHeaderSize = 44
	pcmFormat     = 1

	// Recorders writing to a pipe cannot seek back to patch sizes and leave
	// one of these placeholders in the header.
	unknownSizeZero = 0
	unknownSizeMax  = 0xFFFFFFFF
)

// EncodeWAV wraps the utterance's PCM samples in a WAV container
func EncodeWAV(u entities.Utterance) ([]byte, error) {
	if u.IsEmpty() {
		return nil, fmt.Errorf("cannot encode empty utterance")
	}

	if u.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", u.SampleRate)
	}

	if u.Channels <= 0 || u.BitDepth <= 0 || u.BitDepth%8 != 0 {
		return nil, fmt.Errorf("invalid sample layout: %d channels, %d bits", u.Channels, u.BitDepth)
	}

	dataSize := uint32(len(u.PCM))
	blockAlign := uint16(u.Channels * u.BitDepth / 8)

	header := WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   pcmFormat,
		NumChannels:   uint16(u.Channels),
		SampleRate:    uint32(u.SampleRate),
		ByteRate:      uint32(u.SampleRate) * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: uint16(u.BitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(u.PCM)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	buf.Write(u.PCM)

	return buf.Bytes(), nil
}

// DecodeWAV extracts the PCM payload and layout of a WAV file. Chunks other
// than "fmt " and "data" are skipped, and a data chunk with a placeholder size
// runs to the end of the input.
func DecodeWAV(data []byte) (entities.Utterance, error) {
	if len(data) < 12 {
		return entities.Utterance{}, fmt.Errorf("WAV data too short: need at least 12 bytes, got %d", len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return entities.Utterance{}, fmt.Errorf("invalid WAV file: missing RIFF header")
	}

	if string(data[8:12]) != "WAVE" {
		return entities.Utterance{}, fmt.Errorf("invalid WAV file: missing WAVE format")
	}

	var (
		u       entities.Utterance
		haveFmt bool
		offset  = 12
	)

	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return entities.Utterance{}, fmt.Errorf("invalid WAV file: truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != pcmFormat {
				return entities.Utterance{}, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", format)
			}
			u.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			u.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			u.BitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return entities.Utterance{}, fmt.Errorf("invalid WAV file: data chunk before fmt chunk")
			}
			end := body + int(size)
			if size == unknownSizeZero || size == unknownSizeMax || end > len(data) {
				end = len(data)
			}
			u.PCM = data[body:end]
			if err := validateLayout(u); err != nil {
				return entities.Utterance{}, err
			}
			return u, nil
		}

		next := body + int(size)
		if size%2 == 1 {
			next++
		}
		if size == unknownSizeMax || next <= offset {
			break
		}
		offset = next
	}

	if !haveFmt {
		return entities.Utterance{}, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	return entities.Utterance{}, fmt.Errorf("invalid WAV file: missing data chunk")
}

func validateLayout(u entities.Utterance) error {
	if u.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", u.SampleRate)
	}
	if u.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", u.Channels)
	}
	if u.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", u.BitDepth)
	}
	return nil
}

// WAVInfo summarizes a decoded utterance for logging
type WAVInfo struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bits_per_sample"`
	Duration   time.Duration `json:"duration"`
	DataSize   int           `json:"data_size_bytes"`
}

// Info describes the utterance's layout
func Info(u entities.Utterance) WAVInfo {
	return WAVInfo{
		SampleRate: u.SampleRate,
		Channels:   u.Channels,
		BitDepth:   u.BitDepth,
		Duration:   u.Duration(),
		DataSize:   len(u.PCM),
	}
}
