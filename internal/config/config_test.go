package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate:    8000,
			Channels:      1,
			BitsPerSample: 16,
		},
		Transcription: TranscriptionConfig{
			Provider:        "http",
			Endpoint:        "https://api.example.com/recognize",
			APIKey:          "test-key",
			Timeout:         30,
			MaxRetries:      3,
			MaxConcurrent:   10,
			PrimaryLanguage: "en-US",
		},
		Batch: BatchConfig{
			Workers:   4,
			OutputDir: "./out",
			ExportDir: "./exports",
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Address: "127.0.0.1",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid configuration",
			mutate: func(*Config) {},
		},
		{
			name:        "invalid sample rate",
			mutate:      func(c *Config) { c.Audio.SampleRate = 0 },
			expectError: true,
			errorMsg:    "sample_rate",
		},
		{
			name:        "invalid bit depth",
			mutate:      func(c *Config) { c.Audio.BitsPerSample = 12 },
			expectError: true,
			errorMsg:    "bits_per_sample",
		},
		{
			name:        "unknown provider",
			mutate:      func(c *Config) { c.Transcription.Provider = "carrier-pigeon" },
			expectError: true,
			errorMsg:    "provider",
		},
		{
			name:        "http provider requires endpoint",
			mutate:      func(c *Config) { c.Transcription.Endpoint = "" },
			expectError: true,
			errorMsg:    "endpoint",
		},
		{
			name: "whisper provider allows empty endpoint",
			mutate: func(c *Config) {
				c.Transcription.Provider = "whisper"
				c.Transcription.Endpoint = ""
			},
		},
		{
			name:        "missing api key",
			mutate:      func(c *Config) { c.Transcription.APIKey = "" },
			expectError: true,
			errorMsg:    "api_key",
		},
		{
			name:        "missing primary language",
			mutate:      func(c *Config) { c.Transcription.PrimaryLanguage = "" },
			expectError: true,
			errorMsg:    "primary_language",
		},
		{
			name:        "zero workers",
			mutate:      func(c *Config) { c.Batch.Workers = 0 },
			expectError: true,
			errorMsg:    "workers",
		},
		{
			name:        "empty output dir",
			mutate:      func(c *Config) { c.Batch.OutputDir = "" },
			expectError: true,
			errorMsg:    "output_dir",
		},
		{
			name:        "invalid http port",
			mutate:      func(c *Config) { c.HTTP.Port = 70000 },
			expectError: true,
			errorMsg:    "port",
		},
		{
			name: "disabled http skips validation",
			mutate: func(c *Config) {
				c.HTTP.Enabled = false
				c.HTTP.Port = 0
				c.HTTP.Address = ""
			},
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
audio:
  sample_rate: 8000
  channels: 1
  bits_per_sample: 16

transcription:
  provider: http
  endpoint: https://api.example.com/recognize
  api_key: secret
  timeout: 20
  max_retries: 2
  max_concurrent: 5
  primary_language: en-US
  fallback_languages: [es-ES]
  automatic_punctuation: true

detection:
  keywords_file: ./keywords.yaml

batch:
  workers: 8
  output_dir: ./out
  export_dir: ./exports
  write_reports: true

http:
  enabled: false

logging:
  level: debug
  format: text
  output: stderr
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Transcription.Provider != "http" {
		t.Errorf("Expected provider 'http', got %q", cfg.Transcription.Provider)
	}

	if cfg.Transcription.GetTimeoutDuration() != 20*time.Second {
		t.Errorf("Expected 20s timeout, got %v", cfg.Transcription.GetTimeoutDuration())
	}

	if len(cfg.Transcription.FallbackLanguages) != 1 || cfg.Transcription.FallbackLanguages[0] != "es-ES" {
		t.Errorf("Unexpected fallback languages: %v", cfg.Transcription.FallbackLanguages)
	}

	if cfg.Batch.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Batch.Workers)
	}

	if !cfg.Batch.WriteReports {
		t.Error("Expected write_reports to be true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(path, []byte("audio: [not a mapping"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
