package transcription

import (
	"context"
	"fmt"
)

// PhraseHint biases recognition toward a phrase with the given boost.
type PhraseHint struct {
	Phrase string  `yaml:"phrase" json:"phrase"`
	Boost  float64 `yaml:"boost" json:"boost"`
}

// RecognitionConfig describes one recognition request.
type RecognitionConfig struct {
	Encoding             string       `yaml:"encoding" json:"encoding"`
	SampleRate           int          `yaml:"sample_rate" json:"sample_rate"`
	ChannelCount         int          `yaml:"channel_count" json:"channel_count"`
	PrimaryLanguage      string       `yaml:"primary_language" json:"primary_language"`
	FallbackLanguages    []string     `yaml:"fallback_languages" json:"fallback_languages"`
	AutomaticPunctuation bool         `yaml:"automatic_punctuation" json:"automatic_punctuation"`
	PhraseHints          []PhraseHint `yaml:"phrase_hints" json:"phrase_hints"`
}

// Gateway turns container bytes into ranked transcript alternatives. The
// core never retries a gateway call; implementations own their retry
// policy.
type Gateway interface {
	Recognize(ctx context.Context, container []byte, cfg RecognitionConfig) ([]Alternative, error)
}

// ProviderError wraps a transport, auth, or quota failure from a gateway
// implementation. Callers surface it as-is with item context attached.
type ProviderError struct {
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("transcription provider error: %v", e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
