package reconstruct

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/huyahoo/answerphone-detection/internal/audio"
	"github.com/huyahoo/answerphone-detection/internal/ledger"
)

// MaxPayloadSize bounds the size of a payload artifact read from disk.
const MaxPayloadSize = 50 * 1024 * 1024 // 50 MiB

// Payload read errors.
var (
	ErrPayloadNotFound = errors.New("payload artifact not found")
	ErrEmptyPayload    = errors.New("payload artifact is empty")
)

// PayloadTooLargeError indicates a payload artifact exceeded the size bound.
type PayloadTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
}

// Result holds the outcome of a single reconstruction.
type Result struct {
	ID            string              `json:"id"`
	Container     []byte              `json:"-"`
	OutputPath    string              `json:"output_path"`
	LedgerStats   *ledger.Stats       `json:"ledger_stats,omitempty"`
	ContainerInfo audio.ContainerInfo `json:"container_info"`
	Duration      time.Duration       `json:"-"`
}

// Reconstructor turns payload and ledger artifacts into WAV containers.
type Reconstructor struct {
	logger         *slog.Logger
	maxPayloadSize int64
}

// NewReconstructor creates a reconstructor with the default payload bound.
func NewReconstructor(logger *slog.Logger) *Reconstructor {
	return &Reconstructor{
		logger:         logger,
		maxPayloadSize: MaxPayloadSize,
	}
}

// ReadPayload reads a raw payload artifact with size bounds enforced.
func (r *Reconstructor) ReadPayload(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPayloadNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat payload %s: %w", path, err)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, path)
	}

	if info.Size() > r.maxPayloadSize {
		return nil, &PayloadTooLargeError{Size: info.Size(), Limit: r.maxPayloadSize}
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
	}

	return payload, nil
}

// Reconstruct builds a WAV container from ledger text and payload bytes and
// persists it to outputPath, creating intermediate directories as needed.
//
// A byte-count mismatch between ledger and payload is logged as a warning
// and never fails the reconstruction; the payload's actual length is ground
// truth for the container header.
func (r *Reconstructor) Reconstruct(id, ledgerText string, payload []byte, format audio.Format, outputPath string) (*Result, error) {
	startTime := time.Now()

	parsed, err := ledger.Parse(ledgerText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timing ledger: %w", err)
	}

	stats := parsed.Stats()
	if stats != nil && stats.TotalBytes != uint64(len(payload)) {
		r.logger.Warn("Ledger byte count does not match payload, using payload length",
			slog.String("id", id),
			slog.Uint64("ledger_bytes", stats.TotalBytes),
			slog.Int("payload_bytes", len(payload)),
		)
	}

	header, err := audio.Header(len(payload), format)
	if err != nil {
		return nil, fmt.Errorf("failed to build container header: %w", err)
	}

	container := make([]byte, 0, len(header)+len(payload))
	container = append(container, header...)
	container = append(container, payload...)

	if err := audio.ValidateContainer(container); err != nil {
		return nil, fmt.Errorf("synthesized container failed validation: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, container, 0644); err != nil {
		return nil, fmt.Errorf("failed to write container %s: %w", outputPath, err)
	}

	result := &Result{
		ID:            id,
		Container:     container,
		OutputPath:    outputPath,
		LedgerStats:   stats,
		ContainerInfo: audio.Info(len(payload), format),
		Duration:      time.Since(startTime),
	}

	r.logger.Info("Container reconstructed",
		slog.String("id", id),
		slog.String("output_path", outputPath),
		slog.Int("payload_bytes", len(payload)),
		slog.Int("container_bytes", len(container)),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// ReconstructFromFiles reads both artifacts from disk and reconstructs the
// container. Used by the CLI and the batch pipeline.
func (r *Reconstructor) ReconstructFromFiles(id, ledgerPath, payloadPath string, format audio.Format, outputPath string) (*Result, error) {
	ledgerText, err := os.ReadFile(ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", ledgerPath, err)
	}

	payload, err := r.ReadPayload(payloadPath)
	if err != nil {
		return nil, err
	}

	return r.Reconstruct(id, string(ledgerText), payload, format, outputPath)
}
