package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry represents a single timing ledger record: one captured audio chunk
// with its arrival timestamp and byte size.
type Entry struct {
	TimestampMs   uint64 // Arrival time in milliseconds
	SizeBytes     uint32 // Chunk size in bytes
	SequenceIndex uint32 // Position in the ledger (appearance order)
}

// Ledger is an ordered sequence of timing entries. Order is appearance
// order in the source text and is semantically meaningful; timestamps are
// deliberately not required to be monotonic.
type Ledger struct {
	Entries []Entry
}

// Stats contains summary statistics derived from a ledger. All fields are
// pure functions of the entries.
type Stats struct {
	EntryCount      int     `json:"entry_count"`
	TotalBytes      uint64  `json:"total_bytes"`
	MinTimestamp    uint64  `json:"min_timestamp_ms"`
	MaxTimestamp    uint64  `json:"max_timestamp_ms"`
	DurationMs      uint64  `json:"duration_ms"`
	DurationSeconds float64 `json:"duration_seconds"`
	AverageSize     float64 `json:"average_size_bytes"`
}

// MalformedEntryError describes a ledger segment that could not be parsed.
type MalformedEntryError struct {
	Index   int    // Zero-based segment index in the ledger text
	RawText string // The offending segment, after trimming
	Reason  string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed ledger entry %d (%q): %s", e.Index, e.RawText, e.Reason)
}

// Parse parses ledger text into an ordered Ledger.
//
// The format is comma-separated entries of the form "timestampMs/sizeBytes",
// both non-negative base-10 integers, with arbitrary surrounding whitespace.
// Empty segments are discarded. At least one valid entry is required.
func Parse(content string) (*Ledger, error) {
	segments := strings.Split(content, ",")

	entries := make([]Entry, 0, len(segments))
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		fields := strings.Split(segment, "/")
		if len(fields) != 2 {
			return nil, &MalformedEntryError{
				Index:   i,
				RawText: segment,
				Reason:  fmt.Sprintf("expected timestamp/size, got %d fields", len(fields)),
			}
		}

		timestamp, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, &MalformedEntryError{
				Index:   i,
				RawText: segment,
				Reason:  fmt.Sprintf("invalid timestamp %q", fields[0]),
			}
		}

		size, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
		if err != nil {
			return nil, &MalformedEntryError{
				Index:   i,
				RawText: segment,
				Reason:  fmt.Sprintf("invalid size %q", fields[1]),
			}
		}

		if size == 0 {
			return nil, &MalformedEntryError{
				Index:   i,
				RawText: segment,
				Reason:  "size must be greater than zero",
			}
		}

		entries = append(entries, Entry{
			TimestampMs:   timestamp,
			SizeBytes:     uint32(size),
			SequenceIndex: uint32(len(entries)),
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("ledger contains no entries")
	}

	return &Ledger{Entries: entries}, nil
}

// Render serializes a ledger back to its text form. Parse(Render(l)) yields
// entries identical to l.
func (l *Ledger) Render() string {
	parts := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		parts[i] = fmt.Sprintf("%d/%d", e.TimestampMs, e.SizeBytes)
	}
	return strings.Join(parts, ",")
}

// Stats computes summary statistics for the ledger. Returns nil for a
// ledger with no entries; callers treat absence as missing data, not as an
// error.
func (l *Ledger) Stats() *Stats {
	if l == nil || len(l.Entries) == 0 {
		return nil
	}

	stats := &Stats{
		EntryCount:   len(l.Entries),
		MinTimestamp: l.Entries[0].TimestampMs,
		MaxTimestamp: l.Entries[0].TimestampMs,
	}

	for _, e := range l.Entries {
		stats.TotalBytes += uint64(e.SizeBytes)
		if e.TimestampMs < stats.MinTimestamp {
			stats.MinTimestamp = e.TimestampMs
		}
		if e.TimestampMs > stats.MaxTimestamp {
			stats.MaxTimestamp = e.TimestampMs
		}
	}

	stats.DurationMs = stats.MaxTimestamp - stats.MinTimestamp
	stats.DurationSeconds = float64(stats.DurationMs) / 1000.0
	stats.AverageSize = float64(stats.TotalBytes) / float64(stats.EntryCount)

	return stats
}
