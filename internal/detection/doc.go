// Package detection classifies transcripts as live conversation or an
// automated answering-machine greeting. Classification is deterministic
// case-insensitive keyword matching over a versioned keyword list that can
// be replaced without touching the classifier.
package detection
