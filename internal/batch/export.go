package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// csvColumns is the fixed column order of the batch CSV export.
var csvColumns = []string{
	"id", "transcript", "confidence", "detectionFlag",
	"containerPath", "transcriptPath", "processingTime", "successFlag", "error",
}

// csvQuote renders one field with mandatory quoting; embedded double quotes
// are escaped by doubling.
func csvQuote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func csvRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = csvQuote(f)
	}
	return strings.Join(quoted, ",")
}

// FormatCSV renders the summary as CSV text: a header row followed by one
// row per item. Failed items populate only id, duration, success flag and
// error.
func FormatCSV(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString(csvRow(csvColumns))
	sb.WriteString("\n")

	for _, item := range summary.Items {
		row := make([]string, len(csvColumns))
		row[0] = item.ID
		row[6] = fmt.Sprintf("%.3f", item.Duration.Seconds())
		row[7] = fmt.Sprintf("%t", item.Success)

		if item.Success {
			row[1] = item.Transcript
			row[2] = fmt.Sprintf("%.3f", item.Confidence)
			row[3] = fmt.Sprintf("%t", item.Detected)
			row[4] = item.ContainerPath
			row[5] = item.ReportPath
		} else {
			row[8] = item.Error
		}

		sb.WriteString(csvRow(row))
		sb.WriteString("\n")
	}

	return sb.String()
}

// ExportCSV writes the summary as CSV into dir and returns the file path.
// An export failure never invalidates the in-memory summary.
func ExportCSV(summary *Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("batch_%s.csv", summary.FolderID))
	if err := os.WriteFile(path, []byte(FormatCSV(summary)), 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV export: %w", err)
	}

	return path, nil
}

// ExportJSON writes the full summary as indented JSON into dir and returns
// the file path.
func ExportJSON(summary *Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("batch_%s.json", summary.FolderID))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON export: %w", err)
	}

	return path, nil
}
