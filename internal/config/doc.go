// Package config provides configuration loading and validation for the
// answerphone-detection toolkit. It handles YAML-based configuration with
// per-section struct validation.
package config
