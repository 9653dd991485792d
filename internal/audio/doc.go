// Package audio synthesizes WAV containers for recovered telephony payloads.
// It builds the fixed 44-byte RIFF/WAVE header for a raw PCM payload and
// provides container validation and diagnostics for the reconstruction path.
package audio
