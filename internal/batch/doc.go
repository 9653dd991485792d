// Package batch orchestrates the recovery pipeline over a folder of
// two-artifact captures: reconstruct, transcribe, classify. Item failures
// are isolated and recorded per item; only discovery of an empty folder is
// batch-fatal. Results aggregate into a summary exportable as CSV or JSON.
package batch
