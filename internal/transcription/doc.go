// Package transcription defines the speech-recognition gateway contract and
// its implementations. It provides ranked transcript alternatives with
// derived best/combined views, an HTTP multipart gateway with retry logic
// and rate limiting, and an OpenAI Whisper-backed gateway.
package transcription
