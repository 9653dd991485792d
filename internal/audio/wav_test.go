package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestHeaderLayout(t *testing.T) {
	payloadLength := 800

	header, err := Header(payloadLength, DefaultFormat)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}

	if len(header) != HeaderSize {
		t.Fatalf("Expected %d header bytes, got %d", HeaderSize, len(header))
	}

	if string(header[0:4]) != "RIFF" {
		t.Errorf("Expected RIFF at offset 0, got %q", header[0:4])
	}

	chunkSize := binary.LittleEndian.Uint32(header[4:8])
	if chunkSize != uint32(payloadLength+36) {
		t.Errorf("Expected chunk size %d, got %d", payloadLength+36, chunkSize)
	}

	if string(header[8:12]) != "WAVE" {
		t.Errorf("Expected WAVE at offset 8, got %q", header[8:12])
	}

	if string(header[12:16]) != "fmt " {
		t.Errorf("Expected 'fmt ' at offset 12, got %q", header[12:16])
	}

	if got := binary.LittleEndian.Uint32(header[16:20]); got != 16 {
		t.Errorf("Expected fmt chunk size 16, got %d", got)
	}

	if got := binary.LittleEndian.Uint16(header[20:22]); got != 1 {
		t.Errorf("Expected PCM format tag 1, got %d", got)
	}

	if got := binary.LittleEndian.Uint16(header[22:24]); got != 1 {
		t.Errorf("Expected 1 channel, got %d", got)
	}

	if got := binary.LittleEndian.Uint32(header[24:28]); got != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", got)
	}

	if got := binary.LittleEndian.Uint32(header[28:32]); got != 16000 {
		t.Errorf("Expected byte rate 16000, got %d", got)
	}

	if got := binary.LittleEndian.Uint16(header[32:34]); got != 2 {
		t.Errorf("Expected block align 2, got %d", got)
	}

	if got := binary.LittleEndian.Uint16(header[34:36]); got != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", got)
	}

	if string(header[36:40]) != "data" {
		t.Errorf("Expected 'data' at offset 36, got %q", header[36:40])
	}

	dataSize := binary.LittleEndian.Uint32(header[40:44])
	if dataSize != uint32(payloadLength) {
		t.Errorf("Expected data size %d, got %d", payloadLength, dataSize)
	}
}

func TestHeaderZeroLength(t *testing.T) {
	header, err := Header(0, DefaultFormat)
	if err != nil {
		t.Fatalf("Header failed for zero-length payload: %v", err)
	}

	if len(header) != HeaderSize {
		t.Errorf("Expected %d header bytes, got %d", HeaderSize, len(header))
	}

	if got := binary.LittleEndian.Uint32(header[4:8]); got != 36 {
		t.Errorf("Expected chunk size 36, got %d", got)
	}
}

func TestHeaderNegativeLength(t *testing.T) {
	_, err := Header(-1, DefaultFormat)
	if err == nil {
		t.Fatal("Expected error for negative payload length")
	}

	if _, ok := err.(*InvalidLengthError); !ok {
		t.Errorf("Expected *InvalidLengthError, got %T", err)
	}
}

func TestHeaderInvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"zero sample rate", Format{SampleRate: 0, Channels: 1, BitsPerSample: 16}},
		{"zero channels", Format{SampleRate: 8000, Channels: 0, BitsPerSample: 16}},
		{"odd bit depth", Format{SampleRate: 8000, Channels: 1, BitsPerSample: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Header(100, tt.format); err == nil {
				t.Error("Expected error for invalid format")
			}
		})
	}
}

func TestFormatDerivedFields(t *testing.T) {
	stereo := Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}

	if got := stereo.ByteRate(); got != 176400 {
		t.Errorf("Expected byte rate 176400, got %d", got)
	}

	if got := stereo.BlockAlign(); got != 4 {
		t.Errorf("Expected block align 4, got %d", got)
	}
}

func TestInfo(t *testing.T) {
	info := Info(800, DefaultFormat)

	if info.HeaderSize != 44 {
		t.Errorf("Expected header size 44, got %d", info.HeaderSize)
	}

	if info.TotalSize != 844 {
		t.Errorf("Expected total size 844, got %d", info.TotalSize)
	}

	// 800 bytes at 16000 bytes/second
	if math.Abs(info.Duration-0.05) > 0.0001 {
		t.Errorf("Expected duration 0.05s, got %f", info.Duration)
	}
}

func TestValidateContainer(t *testing.T) {
	payload := bytes.Repeat([]byte{0x7f}, 800)

	header, err := Header(len(payload), DefaultFormat)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}

	container := append(header, payload...)
	if err := ValidateContainer(container); err != nil {
		t.Errorf("Valid container rejected: %v", err)
	}

	if len(container) != 844 {
		t.Errorf("Expected 844 container bytes, got %d", len(container))
	}
}

func TestValidateContainerErrors(t *testing.T) {
	header, _ := Header(4, DefaultFormat)
	valid := append(header, []byte{1, 2, 3, 4}...)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"too short", func(c []byte) []byte { return c[:20] }},
		{"bad riff", func(c []byte) []byte { c[0] = 'X'; return c }},
		{"bad wave", func(c []byte) []byte { c[8] = 'X'; return c }},
		{"bad data chunk", func(c []byte) []byte { c[36] = 'X'; return c }},
		{"truncated payload", func(c []byte) []byte { return c[:len(c)-2] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container := tt.mutate(append([]byte(nil), valid...))
			if err := ValidateContainer(container); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestReadContainerInfo(t *testing.T) {
	payload := make([]byte, 1600)

	header, err := Header(len(payload), DefaultFormat)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}

	info, err := ReadContainerInfo(append(header, payload...))
	if err != nil {
		t.Fatalf("ReadContainerInfo failed: %v", err)
	}

	if info.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", info.SampleRate)
	}

	if info.PayloadSize != 1600 {
		t.Errorf("Expected payload size 1600, got %d", info.PayloadSize)
	}

	// 1600 bytes is 0.1s of 8kHz mono 16-bit audio
	if math.Abs(info.Duration-0.1) > 0.0001 {
		t.Errorf("Expected duration 0.1s, got %f", info.Duration)
	}
}
