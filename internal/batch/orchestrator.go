package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huyahoo/answerphone-detection/internal/audio"
	"github.com/huyahoo/answerphone-detection/internal/detection"
	"github.com/huyahoo/answerphone-detection/internal/ledger"
	"github.com/huyahoo/answerphone-detection/internal/metrics"
	"github.com/huyahoo/answerphone-detection/internal/reconstruct"
	"github.com/huyahoo/answerphone-detection/internal/transcription"
)

// Artifact file extensions for one capture item.
const (
	PayloadExt = ".pcm"
	LedgerExt  = ".ledger"
)

// Pipeline stages. An item moves pending -> reconstructing -> transcribing
// -> classifying -> completed, or to failed from any active stage.
const (
	StagePending        = "pending"
	StageReconstructing = "reconstructing"
	StageTranscribing   = "transcribing"
	StageClassifying    = "classifying"
	StageCompleted      = "completed"
	StageFailed         = "failed"
)

// ErrNoItemsFound indicates discovery found no reconstructable items.
var ErrNoItemsFound = errors.New("no reconstructable items found")

// ItemResult is the terminal record for one batch item. It is immutable
// once the item completes or fails.
type ItemResult struct {
	ID          string        `json:"id"`
	Success     bool          `json:"success"`
	FailedStage string        `json:"failed_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration_ms"`

	LedgerStats   *ledger.Stats         `json:"ledger_stats,omitempty"`
	ContainerInfo *audio.ContainerInfo  `json:"container_info,omitempty"`
	ContainerPath string                `json:"container_path,omitempty"`
	ReportPath    string                `json:"report_path,omitempty"`
	Transcription *transcription.Result `json:"transcription,omitempty"`
	Transcript    string                `json:"transcript,omitempty"`
	Confidence    float64               `json:"confidence,omitempty"`
	Detected      bool                  `json:"detected"`
}

// Summary aggregates the outcome of one batch run. Built once per run and
// read-only thereafter.
type Summary struct {
	FolderID       string        `json:"folder_id"`
	Items          []ItemResult  `json:"items"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	DetectionCount int           `json:"detection_count"`
	SuccessRate    float64       `json:"success_rate"`
	DetectionRate  float64       `json:"detection_rate"`
	Duration       time.Duration `json:"-"`
	DurationMs     int64         `json:"duration_ms"`
}

// Config contains orchestrator settings.
type Config struct {
	Format           audio.Format
	Recognition      transcription.RecognitionConfig
	Workers          int // Bounded worker pool size; 1 means sequential
	WriteTextReports bool
}

// Orchestrator drives the per-item pipeline and aggregates batch results.
// The gateway is a long-lived collaborator injected at construction and
// shared read-only across items.
type Orchestrator struct {
	logger        *slog.Logger
	reconstructor *reconstruct.Reconstructor
	gateway       transcription.Gateway
	classifier    *detection.Classifier
	metrics       *metrics.Metrics
	config        Config
}

// NewOrchestrator creates a batch orchestrator.
func NewOrchestrator(logger *slog.Logger, gateway transcription.Gateway, classifier *detection.Classifier, appMetrics *metrics.Metrics, config Config) (*Orchestrator, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway cannot be nil")
	}

	if classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}

	if config.Workers <= 0 {
		config.Workers = 1
	}

	if err := config.Format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio format: %w", err)
	}

	return &Orchestrator{
		logger:        logger,
		reconstructor: reconstruct.NewReconstructor(logger),
		gateway:       gateway,
		classifier:    classifier,
		metrics:       appMetrics,
		config:        config,
	}, nil
}

// Discover returns the sorted, deduplicated ids of reconstructable items in
// folder. An id qualifies only when both the payload and the ledger
// artifact exist; orphan payloads are logged and skipped.
func (o *Orchestrator) Discover(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PayloadExt) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), PayloadExt)
		if seen[id] {
			continue
		}
		seen[id] = true

		ledgerPath := filepath.Join(folder, id+LedgerExt)
		if _, err := os.Stat(ledgerPath); err != nil {
			o.logger.Warn("Payload has no matching ledger, skipping",
				slog.String("id", id),
				slog.String("ledger_path", ledgerPath),
			)
			continue
		}

		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoItemsFound, folder)
	}

	sort.Strings(ids)
	return ids, nil
}

// ReconstructItem runs only the reconstruction stage for one item.
func (o *Orchestrator) ReconstructItem(folder, outputDir, id string) (*reconstruct.Result, error) {
	return o.reconstructor.ReconstructFromFiles(
		id,
		filepath.Join(folder, id+LedgerExt),
		filepath.Join(folder, id+PayloadExt),
		o.config.Format,
		filepath.Join(outputDir, id+".wav"),
	)
}

// TranscribeItem reconstructs one item and returns its transcription.
func (o *Orchestrator) TranscribeItem(ctx context.Context, folder, outputDir, id string) (*transcription.Result, error) {
	recResult, err := o.ReconstructItem(folder, outputDir, id)
	if err != nil {
		return nil, err
	}

	alternatives, err := o.gateway.Recognize(ctx, recResult.Container, o.config.Recognition)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}

	return &transcription.Result{Alternatives: alternatives}, nil
}

// Classify runs the keyword classifier over a transcript.
func (o *Orchestrator) Classify(transcript string) bool {
	return o.classifier.Classify(transcript)
}

// RunItem executes the full pipeline for one item. Failures at any stage
// are captured in the result, never propagated; wall-clock duration is
// recorded regardless of outcome.
func (o *Orchestrator) RunItem(ctx context.Context, folder, outputDir, id string) ItemResult {
	startTime := time.Now()

	result := ItemResult{ID: id}
	stage := StageReconstructing

	fail := func(err error) ItemResult {
		result.Success = false
		result.FailedStage = stage
		result.Error = err.Error()
		result.Duration = time.Since(startTime)
		result.DurationMs = result.Duration.Milliseconds()

		o.logger.Error("Item pipeline failed",
			slog.String("id", id),
			slog.String("stage", stage),
			slog.String("error", err.Error()),
			slog.Duration("duration", result.Duration),
		)

		if o.metrics != nil {
			o.metrics.RecordItemFailed(stage, result.Duration.Seconds())
		}

		return result
	}

	// Stage 1: reconstruct
	recResult, err := o.ReconstructItem(folder, outputDir, id)
	if err != nil {
		return fail(err)
	}

	result.LedgerStats = recResult.LedgerStats
	info := recResult.ContainerInfo
	result.ContainerInfo = &info
	result.ContainerPath = recResult.OutputPath

	if o.metrics != nil {
		o.metrics.RecordReconstruction(len(recResult.Container))
	}

	// Stage 2: transcribe
	stage = StageTranscribing
	transcribeStart := time.Now()

	alternatives, err := o.gateway.Recognize(ctx, recResult.Container, o.config.Recognition)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordTranscriptionFailure(time.Since(transcribeStart).Seconds())
		}
		return fail(fmt.Errorf("item %s: %w", id, err))
	}

	if o.metrics != nil {
		o.metrics.RecordTranscriptionSuccess(time.Since(transcribeStart).Seconds())
	}

	transcriptionResult := &transcription.Result{Alternatives: alternatives}
	result.Transcription = transcriptionResult

	best := transcriptionResult.Best()
	result.Transcript = best.Text
	result.Confidence = best.Confidence

	if o.config.WriteTextReports {
		reportPath := filepath.Join(outputDir, id+".txt")
		meta := transcription.ReportMeta{
			SourcePath:     recResult.OutputPath,
			ProcessingTime: time.Since(startTime),
			Success:        true,
		}
		if err := transcription.WriteReport(reportPath, transcriptionResult, meta); err != nil {
			// Report writing is best-effort; the transcription itself succeeded
			o.logger.Warn("Failed to write transcript report",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		} else {
			result.ReportPath = reportPath
		}
	}

	// Stage 3: classify
	stage = StageClassifying
	result.Detected = o.classifier.Classify(result.Transcript)

	result.Success = true
	result.Duration = time.Since(startTime)
	result.DurationMs = result.Duration.Milliseconds()

	if o.metrics != nil {
		o.metrics.RecordItemCompleted(result.Detected, result.Duration.Seconds())
	}

	o.logger.Info("Item pipeline completed",
		slog.String("id", id),
		slog.Bool("detected", result.Detected),
		slog.Float64("confidence", result.Confidence),
		slog.Duration("duration", result.Duration),
	)

	return result
}

// RunBatch discovers items in folder and runs the pipeline for each on a
// bounded worker pool. Items are independent; results are ordered by
// discovery order regardless of completion order. The output directory is
// an explicit argument, never shared mutable configuration.
func (o *Orchestrator) RunBatch(ctx context.Context, folder, outputDir string) (*Summary, error) {
	startTime := time.Now()

	ids, err := o.Discover(folder)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Batch started",
		slog.String("folder", folder),
		slog.String("output_dir", outputDir),
		slog.Int("items", len(ids)),
		slog.Int("workers", o.config.Workers),
	)

	results := make([]ItemResult, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.config.Workers)

	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			results[i] = o.RunItem(groupCtx, folder, outputDir, id)
			return nil
		})
	}

	// Workers never return errors; item failures live in their results.
	_ = group.Wait()

	summary := &Summary{
		FolderID: filepath.Base(folder),
		Items:    results,
	}

	for _, r := range results {
		if r.Success {
			summary.SuccessCount++
			if r.Detected {
				summary.DetectionCount++
			}
		} else {
			summary.FailureCount++
		}
	}

	total := summary.SuccessCount + summary.FailureCount
	if total > 0 {
		summary.SuccessRate = float64(summary.SuccessCount) / float64(total)
	}
	if summary.SuccessCount > 0 {
		summary.DetectionRate = float64(summary.DetectionCount) / float64(summary.SuccessCount)
	}

	summary.Duration = time.Since(startTime)
	summary.DurationMs = summary.Duration.Milliseconds()

	if o.metrics != nil {
		o.metrics.RecordBatch(len(ids), summary.Duration.Seconds())
	}

	o.logger.Info("Batch completed",
		slog.String("folder", folder),
		slog.Int("successes", summary.SuccessCount),
		slog.Int("failures", summary.FailureCount),
		slog.Int("detections", summary.DetectionCount),
		slog.Float64("success_rate", summary.SuccessRate),
		slog.Float64("detection_rate", summary.DetectionRate),
		slog.Duration("duration", summary.Duration),
	)

	return summary, nil
}
