// Package ports defines the interfaces between the leaderboard core and
// its infrastructure collaborators.
package ports

import (
	"context"
	"time"
)

// LLMClient defines the interface for interacting with Large Language
// Model providers. Implementations handle provider-specific details like
// authentication, request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider and returns
	// the generated text. The options map carries provider-agnostic
	// settings; common keys include:
	//   - "system": string (system prompt)
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "model": string (override the configured model)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// GetModel returns the model identifier used by this client, for
	// logging and diagnostics.
	GetModel() string
}

// CompletionMarker reports whether a unit of pipeline work has already
// produced its output artifact, and records completion when it does.
// The generation and rating pipelines treat an existing artifact as a
// completed-work marker and skip the unit on subsequent runs. This is
// safe only for single-process sequential or intra-process concurrent
// execution; no cross-process locking is attempted.
type CompletionMarker interface {
	// Completed reports whether the artifact named by key already exists.
	Completed(key string) bool
}

// MetricsCollector defines the interface for recording operational
// metrics. Implementations integrate with observability platforms such as
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric by value.
	RecordCounter(metric string, value float64, labels map[string]string)
}
