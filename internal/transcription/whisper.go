package transcription

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// whisperConfidence is assigned to Whisper transcripts; the API does not
// report a confidence score.
const whisperConfidence = 0.9

// WhisperGateway recognizes speech through the OpenAI audio transcription
// API. Whisper returns a single transcript, surfaced as one alternative.
type WhisperGateway struct {
	client *openai.Client
	model  string
}

// NewWhisperGateway creates a gateway backed by the OpenAI API.
func NewWhisperGateway(apiKey, baseURL, model string) (*WhisperGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	if model == "" {
		model = openai.Whisper1
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &WhisperGateway{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Recognize sends the container bytes to the transcription API.
func (w *WhisperGateway) Recognize(ctx context.Context, container []byte, cfg RecognitionConfig) ([]Alternative, error) {
	req := openai.AudioRequest{
		Model:    w.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(container),
		Language: cfg.PrimaryLanguage,
	}

	if len(cfg.PhraseHints) > 0 {
		phrases := make([]string, len(cfg.PhraseHints))
		for i, hint := range cfg.PhraseHints {
			phrases[i] = hint.Phrase
		}
		req.Prompt = strings.Join(phrases, ", ")
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, &ProviderError{Cause: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, nil
	}

	return []Alternative{NewAlternative(text, whisperConfidence)}, nil
}
