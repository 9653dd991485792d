package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the WAV container header in bytes.
const HeaderSize = 44

// Format describes the PCM audio format of a payload.
type Format struct {
	SampleRate    int `yaml:"sample_rate" json:"sample_rate"`
	Channels      int `yaml:"channels" json:"channels"`
	BitsPerSample int `yaml:"bits_per_sample" json:"bits_per_sample"`
}

// DefaultFormat is the telephony capture format: 8 kHz, mono, 16-bit PCM.
var DefaultFormat = Format{
	SampleRate:    8000,
	Channels:      1,
	BitsPerSample: 16,
}

// ByteRate returns bytes of audio per second for the format.
func (f Format) ByteRate() int {
	return f.SampleRate * f.Channels * f.BitsPerSample / 8
}

// BlockAlign returns the size in bytes of one sample frame.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// Validate checks that the format fields are usable.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", f.Channels)
	}
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 && f.BitsPerSample != 32 {
		return fmt.Errorf("bits per sample must be 8, 16 or 32, got %d", f.BitsPerSample)
	}
	return nil
}

// InvalidLengthError indicates a negative payload length was passed to the
// header builder.
type InvalidLengthError struct {
	Length int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid payload length: %d", e.Length)
}

// wavHeader is the 44-byte RIFF/WAVE header layout, written little-endian.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // Payload length + 36
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Payload length
}

// Header builds the 44-byte WAV header for a raw PCM payload of the given
// length. The payload bytes themselves are never inspected.
func Header(payloadLength int, format Format) ([]byte, error) {
	if payloadLength < 0 {
		return nil, &InvalidLengthError{Length: payloadLength}
	}

	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio format: %w", err)
	}

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(payloadLength) + 36,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   uint16(format.Channels),
		SampleRate:    uint32(format.SampleRate),
		ByteRate:      uint32(format.ByteRate()),
		BlockAlign:    uint16(format.BlockAlign()),
		BitsPerSample: uint16(format.BitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(payloadLength),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	return buf.Bytes(), nil
}

// ContainerInfo describes a synthesized container for diagnostics.
type ContainerInfo struct {
	SampleRate    int     `json:"sample_rate"`
	Channels      int     `json:"channels"`
	BitsPerSample int     `json:"bits_per_sample"`
	ByteRate      int     `json:"byte_rate"`
	BlockAlign    int     `json:"block_align"`
	HeaderSize    int     `json:"header_size"`
	PayloadSize   int     `json:"payload_size_bytes"`
	TotalSize     int     `json:"total_size_bytes"`
	Duration      float64 `json:"duration_seconds"`
}

// Info returns diagnostic information for a container that would be built
// from a payload of the given length. No side effects.
func Info(payloadLength int, format Format) ContainerInfo {
	duration := 0.0
	if byteRate := format.ByteRate(); byteRate > 0 {
		duration = float64(payloadLength) / float64(byteRate)
	}

	return ContainerInfo{
		SampleRate:    format.SampleRate,
		Channels:      format.Channels,
		BitsPerSample: format.BitsPerSample,
		ByteRate:      format.ByteRate(),
		BlockAlign:    format.BlockAlign(),
		HeaderSize:    HeaderSize,
		PayloadSize:   payloadLength,
		TotalSize:     payloadLength + HeaderSize,
		Duration:      duration,
	}
}

// ValidateContainer validates the WAV container structure without decoding
// the audio data.
func ValidateContainer(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("container too short: need at least %d bytes, got %d", HeaderSize, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return fmt.Errorf("invalid container: missing RIFF header")
	}

	if string(data[8:12]) != "WAVE" {
		return fmt.Errorf("invalid container: missing WAVE format")
	}

	if string(data[12:16]) != "fmt " {
		return fmt.Errorf("invalid container: missing fmt chunk")
	}

	if string(data[36:40]) != "data" {
		return fmt.Errorf("invalid container: missing data chunk")
	}

	declaredPayload := binary.LittleEndian.Uint32(data[40:44])
	actualPayload := len(data) - HeaderSize
	if int(declaredPayload) != actualPayload {
		return fmt.Errorf("container payload length mismatch: header says %d bytes, got %d", declaredPayload, actualPayload)
	}

	declaredChunk := binary.LittleEndian.Uint32(data[4:8])
	if declaredChunk != declaredPayload+36 {
		return fmt.Errorf("container RIFF size mismatch: expected %d, got %d", declaredPayload+36, declaredChunk)
	}

	return nil
}

// ReadContainerInfo extracts diagnostic information from container bytes.
func ReadContainerInfo(data []byte) (*ContainerInfo, error) {
	if err := ValidateContainer(data); err != nil {
		return nil, err
	}

	format := Format{
		SampleRate:    int(binary.LittleEndian.Uint32(data[24:28])),
		Channels:      int(binary.LittleEndian.Uint16(data[22:24])),
		BitsPerSample: int(binary.LittleEndian.Uint16(data[34:36])),
	}

	info := Info(len(data)-HeaderSize, format)
	return &info, nil
}
