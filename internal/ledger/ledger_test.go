package ledger

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expected    []Entry
		expectError bool
		errorMsg    string
	}{
		{
			name:    "three entries",
			content: "0/320,40/320,80/160",
			expected: []Entry{
				{TimestampMs: 0, SizeBytes: 320, SequenceIndex: 0},
				{TimestampMs: 40, SizeBytes: 320, SequenceIndex: 1},
				{TimestampMs: 80, SizeBytes: 160, SequenceIndex: 2},
			},
		},
		{
			name:    "surrounding whitespace",
			content: "  0/320 ,\n 40/320  ",
			expected: []Entry{
				{TimestampMs: 0, SizeBytes: 320, SequenceIndex: 0},
				{TimestampMs: 40, SizeBytes: 320, SequenceIndex: 1},
			},
		},
		{
			name:    "trailing comma ignored",
			content: "100/64,",
			expected: []Entry{
				{TimestampMs: 100, SizeBytes: 64, SequenceIndex: 0},
			},
		},
		{
			name:    "out of order timestamps preserved",
			content: "80/160,0/320",
			expected: []Entry{
				{TimestampMs: 80, SizeBytes: 160, SequenceIndex: 0},
				{TimestampMs: 0, SizeBytes: 320, SequenceIndex: 1},
			},
		},
		{
			name:        "empty content",
			content:     "",
			expectError: true,
			errorMsg:    "no entries",
		},
		{
			name:        "only commas",
			content:     ",,,",
			expectError: true,
			errorMsg:    "no entries",
		},
		{
			name:        "missing size field",
			content:     "0/320,40",
			expectError: true,
			errorMsg:    "expected timestamp/size",
		},
		{
			name:        "too many fields",
			content:     "0/320/7",
			expectError: true,
			errorMsg:    "expected timestamp/size",
		},
		{
			name:        "non-numeric timestamp",
			content:     "abc/320",
			expectError: true,
			errorMsg:    "invalid timestamp",
		},
		{
			name:        "negative timestamp",
			content:     "-40/320",
			expectError: true,
			errorMsg:    "invalid timestamp",
		},
		{
			name:        "non-numeric size",
			content:     "0/xyz",
			expectError: true,
			errorMsg:    "invalid size",
		},
		{
			name:        "zero size",
			content:     "0/0",
			expectError: true,
			errorMsg:    "size must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.content)

			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}

			if len(result.Entries) != len(tt.expected) {
				t.Fatalf("Expected %d entries, got %d", len(tt.expected), len(result.Entries))
			}

			for i, want := range tt.expected {
				if result.Entries[i] != want {
					t.Errorf("Entry %d: expected %+v, got %+v", i, want, result.Entries[i])
				}
			}
		})
	}
}

func TestParseMalformedEntryError(t *testing.T) {
	_, err := Parse("0/320,bad")

	var malformed *MalformedEntryError
	switch e := err.(type) {
	case *MalformedEntryError:
		malformed = e
	default:
		t.Fatalf("Expected *MalformedEntryError, got %T: %v", err, err)
	}

	if malformed.Index != 1 {
		t.Errorf("Expected segment index 1, got %d", malformed.Index)
	}

	if malformed.RawText != "bad" {
		t.Errorf("Expected raw text 'bad', got %q", malformed.RawText)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	original := "0/320,40/320,80/160"

	parsed, err := Parse(original)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rendered := parsed.Render()
	if rendered != original {
		t.Errorf("Expected rendered text %q, got %q", original, rendered)
	}

	reparsed, err := Parse(rendered)
	if err != nil {
		t.Fatalf("Reparse failed: %v", err)
	}

	if len(reparsed.Entries) != len(parsed.Entries) {
		t.Fatalf("Expected %d entries after round trip, got %d", len(parsed.Entries), len(reparsed.Entries))
	}

	for i := range parsed.Entries {
		if reparsed.Entries[i] != parsed.Entries[i] {
			t.Errorf("Entry %d changed after round trip: %+v vs %+v", i, parsed.Entries[i], reparsed.Entries[i])
		}
	}
}

func TestStats(t *testing.T) {
	parsed, err := Parse("0/320,40/320,80/160")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	stats := parsed.Stats()
	if stats == nil {
		t.Fatal("Expected stats, got nil")
	}

	if stats.EntryCount != 3 {
		t.Errorf("Expected entry count 3, got %d", stats.EntryCount)
	}

	if stats.TotalBytes != 800 {
		t.Errorf("Expected total bytes 800, got %d", stats.TotalBytes)
	}

	if stats.DurationMs != 80 {
		t.Errorf("Expected duration 80ms, got %d", stats.DurationMs)
	}

	if stats.DurationSeconds != 0.08 {
		t.Errorf("Expected duration 0.08s, got %f", stats.DurationSeconds)
	}

	expectedAvg := 800.0 / 3.0
	if stats.AverageSize != expectedAvg {
		t.Errorf("Expected average size %f, got %f", expectedAvg, stats.AverageSize)
	}
}

func TestStatsOutOfOrderTimestamps(t *testing.T) {
	parsed, err := Parse("80/160,0/320,40/320")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	stats := parsed.Stats()
	if stats.MinTimestamp != 0 {
		t.Errorf("Expected min timestamp 0, got %d", stats.MinTimestamp)
	}
	if stats.MaxTimestamp != 80 {
		t.Errorf("Expected max timestamp 80, got %d", stats.MaxTimestamp)
	}
	if stats.DurationMs != 80 {
		t.Errorf("Expected duration 80ms, got %d", stats.DurationMs)
	}
}

func TestStatsNilForEmptyLedger(t *testing.T) {
	empty := &Ledger{}
	if stats := empty.Stats(); stats != nil {
		t.Errorf("Expected nil stats for empty ledger, got %+v", stats)
	}

	var nilLedger *Ledger
	if stats := nilLedger.Stats(); stats != nil {
		t.Errorf("Expected nil stats for nil ledger, got %+v", stats)
	}
}
