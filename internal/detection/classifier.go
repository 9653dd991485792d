package detection

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultKeywords is the built-in answering-machine phrase set, English and
// Spanish. Used when no keywords file is configured.
var defaultKeywords = []string{
	// English
	"voicemail",
	"voice mail",
	"answering machine",
	"leave a message",
	"leave your message",
	"leave me a message",
	"after the tone",
	"after the beep",
	"at the tone",
	"not available",
	"unavailable",
	"cannot take your call",
	"can't take your call",
	"unable to take your call",
	"can't come to the phone",
	"please record your message",
	"mailbox",

	// Spanish
	"buzón de voz",
	"correo de voz",
	"contestador",
	"deje su mensaje",
	"deje un mensaje",
	"después del tono",
	"después de la señal",
	"no está disponible",
	"no puede atender",
	"no podemos atender su llamada",
	"grabe su mensaje",
}

// keywordsFile is the YAML layout of an external keywords file.
type keywordsFile struct {
	Keywords []string `yaml:"keywords"`
}

// Classifier detects answering-machine greetings in transcripts.
type Classifier struct {
	keywords []string // Stored lowercased
}

// NewClassifier creates a classifier over the built-in keyword set.
func NewClassifier() *Classifier {
	return newClassifier(defaultKeywords)
}

// NewClassifierFromFile creates a classifier from a YAML keywords file.
// The file must contain at least one keyword.
func NewClassifierFromFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file %s: %w", path, err)
	}

	var file keywordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file %s: %w", path, err)
	}

	keywords := make([]string, 0, len(file.Keywords))
	for _, kw := range file.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if len(keywords) == 0 {
		return nil, fmt.Errorf("keywords file %s contains no keywords", path)
	}

	return newClassifier(keywords), nil
}

func newClassifier(keywords []string) *Classifier {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Classifier{keywords: lowered}
}

// KeywordCount returns the number of keywords in the active set.
func (c *Classifier) KeywordCount() int {
	return len(c.keywords)
}

// Classify reports whether the transcript looks like an automated
// answering-machine greeting. Empty transcripts are never detections.
// Matching is case-insensitive substring membership; the first match wins.
func (c *Classifier) Classify(transcript string) bool {
	if transcript == "" {
		return false
	}

	lowered := strings.ToLower(transcript)
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}

	return false
}
