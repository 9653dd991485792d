package transcription

import (
	"strings"
)

// Alternative is one candidate transcription returned by the recognition
// gateway for a given audio segment.
type Alternative struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // In [0, 1]
	WordCount  int     `json:"word_count"`
}

// NewAlternative builds an alternative with its word count derived from the
// text.
func NewAlternative(text string, confidence float64) Alternative {
	return Alternative{
		Text:       text,
		Confidence: confidence,
		WordCount:  len(strings.Fields(text)),
	}
}

// Result is an ordered sequence of transcript alternatives. All summary
// views are computed on demand; the alternatives themselves are never
// mutated.
type Result struct {
	Alternatives []Alternative `json:"alternatives"`
}

// IsEmpty reports whether the gateway returned no alternatives.
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.Alternatives) == 0
}

// Best returns the alternative with the highest confidence. Ties keep the
// first occurrence. Returns a zero alternative for an empty result.
func (r *Result) Best() Alternative {
	if r.IsEmpty() {
		return Alternative{}
	}

	best := r.Alternatives[0]
	for _, alt := range r.Alternatives[1:] {
		if alt.Confidence > best.Confidence {
			best = alt
		}
	}
	return best
}

// Combined concatenates, in order, the trimmed text of every alternative
// with positive confidence, joined without a separator.
func (r *Result) Combined() string {
	if r.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	for _, alt := range r.Alternatives {
		if alt.Confidence > 0 {
			sb.WriteString(strings.TrimSpace(alt.Text))
		}
	}
	return sb.String()
}

// CombinedConfidence is the arithmetic mean of confidence over alternatives
// with positive confidence, or 0 if there are none.
func (r *Result) CombinedConfidence() float64 {
	if r.IsEmpty() {
		return 0
	}

	sum := 0.0
	count := 0
	for _, alt := range r.Alternatives {
		if alt.Confidence > 0 {
			sum += alt.Confidence
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// TotalWords is the sum of word counts over all alternatives.
func (r *Result) TotalWords() int {
	if r.IsEmpty() {
		return 0
	}

	total := 0
	for _, alt := range r.Alternatives {
		total += alt.WordCount
	}
	return total
}
