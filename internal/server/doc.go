// Package server implements the optional HTTP monitoring endpoints.
// It exposes health, statistics, batch history and Prometheus metrics
// for long-running deployments of the toolkit.
package server
