package transcription

import (
	"testing"
)

func TestResultBest(t *testing.T) {
	tests := []struct {
		name         string
		alternatives []Alternative
		expectedText string
	}{
		{
			name: "highest confidence wins",
			alternatives: []Alternative{
				NewAlternative("hello there", 0.6),
				NewAlternative("hello dear", 0.9),
				NewAlternative("yellow deer", 0.3),
			},
			expectedText: "hello dear",
		},
		{
			name: "tie keeps first",
			alternatives: []Alternative{
				NewAlternative("first", 0.8),
				NewAlternative("second", 0.8),
			},
			expectedText: "first",
		},
		{
			name:         "empty result",
			alternatives: nil,
			expectedText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{Alternatives: tt.alternatives}

			if got := result.Best().Text; got != tt.expectedText {
				t.Errorf("Expected best transcript %q, got %q", tt.expectedText, got)
			}
		})
	}
}

func TestResultCombined(t *testing.T) {
	result := &Result{Alternatives: []Alternative{
		NewAlternative("  hello ", 0.9),
		NewAlternative("world", 0.7),
		NewAlternative("ignored", 0),
	}}

	if got := result.Combined(); got != "helloworld" {
		t.Errorf("Expected combined transcript 'helloworld', got %q", got)
	}
}

func TestResultCombinedConfidence(t *testing.T) {
	tests := []struct {
		name         string
		alternatives []Alternative
		expected     float64
	}{
		{
			name: "mean over positive confidence",
			alternatives: []Alternative{
				NewAlternative("a", 0.8),
				NewAlternative("b", 0.6),
				NewAlternative("c", 0),
			},
			expected: 0.7,
		},
		{
			name:         "empty result",
			alternatives: nil,
			expected:     0,
		},
		{
			name: "all zero confidence",
			alternatives: []Alternative{
				NewAlternative("a", 0),
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{Alternatives: tt.alternatives}

			got := result.CombinedConfidence()
			if got < tt.expected-1e-9 || got > tt.expected+1e-9 {
				t.Errorf("Expected combined confidence %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestResultTotalWords(t *testing.T) {
	result := &Result{Alternatives: []Alternative{
		NewAlternative("one two three", 0.9),
		NewAlternative("four five", 0.5),
	}}

	if got := result.TotalWords(); got != 5 {
		t.Errorf("Expected 5 total words, got %d", got)
	}
}

func TestResultIsEmpty(t *testing.T) {
	empty := &Result{}
	if !empty.IsEmpty() {
		t.Error("Expected empty result to report IsEmpty")
	}

	var nilResult *Result
	if !nilResult.IsEmpty() {
		t.Error("Expected nil result to report IsEmpty")
	}

	nonEmpty := &Result{Alternatives: []Alternative{NewAlternative("text", 0.5)}}
	if nonEmpty.IsEmpty() {
		t.Error("Expected non-empty result to not report IsEmpty")
	}
}

func TestNewAlternativeWordCount(t *testing.T) {
	alt := NewAlternative("  please  leave a message  ", 0.5)
	if alt.WordCount != 4 {
		t.Errorf("Expected word count 4, got %d", alt.WordCount)
	}
}
