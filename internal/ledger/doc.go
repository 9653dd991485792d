// Package ledger parses and renders the timing ledger side-channel format
// that accompanies raw audio payload captures. A ledger describes how the
// payload was chunked over time as comma-separated timestamp/size entries.
package ledger
