package transcription

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportMeta describes the source recording for a transcript report.
type ReportMeta struct {
	SourcePath     string
	ProcessingTime time.Duration
	Success        bool
}

// FormatReport renders a transcription result as a UTF-8 text report with a
// fixed section order: file metadata, combined transcript, best transcript,
// enumerated alternatives, then summary statistics.
func FormatReport(result *Result, meta ReportMeta) string {
	var sb strings.Builder

	sb.WriteString("=== Transcription Report ===\n")
	sb.WriteString(fmt.Sprintf("Source: %s\n", meta.SourcePath))
	sb.WriteString(fmt.Sprintf("Processing time: %.3fs\n", meta.ProcessingTime.Seconds()))
	sb.WriteString(fmt.Sprintf("Success: %t\n", meta.Success))
	sb.WriteString("\n")

	sb.WriteString("--- Combined Transcript ---\n")
	sb.WriteString(result.Combined())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Combined confidence: %.1f%%\n", result.CombinedConfidence()*100))
	sb.WriteString("\n")

	best := result.Best()
	sb.WriteString("--- Best Transcript ---\n")
	sb.WriteString(best.Text)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", best.Confidence*100))
	sb.WriteString("\n")

	sb.WriteString("--- All Alternatives ---\n")
	for i, alt := range result.Alternatives {
		sb.WriteString(fmt.Sprintf("%d. %s (confidence: %.1f%%, words: %d)\n",
			i+1, alt.Text, alt.Confidence*100, alt.WordCount))
	}
	sb.WriteString("\n")

	sb.WriteString("--- Statistics ---\n")
	sb.WriteString(fmt.Sprintf("Total transcripts: %d\n", len(result.Alternatives)))
	sb.WriteString(fmt.Sprintf("Total words: %d\n", result.TotalWords()))
	sb.WriteString(fmt.Sprintf("Average confidence: %.1f%%\n", result.CombinedConfidence()*100))
	sb.WriteString(fmt.Sprintf("Empty: %t\n", result.IsEmpty()))

	return sb.String()
}

// WriteReport writes a transcript report to path, creating intermediate
// directories as needed.
func WriteReport(path string, result *Result, meta ReportMeta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(FormatReport(result, meta)), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	return nil
}
