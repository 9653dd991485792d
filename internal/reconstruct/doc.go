// Package reconstruct recovers playable WAV containers from two-artifact
// captures: a raw PCM payload file plus a companion timing ledger. The
// ledger is cross-checked against the payload but the payload's actual byte
// length is always authoritative.
package reconstruct
