package domain

import (
	"errors"
	"fmt"
)

// Common domain errors returned by aggregation and parsing operations.
var (
	// ErrNoRecords indicates that aggregation was asked to run over an
	// empty record set.
	ErrNoRecords = errors.New("no score records to aggregate")

	// ErrInvalidConfiguration indicates that a registry document is
	// structurally invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Warning is a per-artifact, recoverable anomaly surfaced to the invoking
// collaborator. Warnings never abort a run; they are accumulated and
// reported alongside results.
type Warning struct {
	// Artifact names the input the warning refers to, when known.
	Artifact string

	// Message describes the anomaly.
	Message string
}

// String formats the warning for display.
func (w Warning) String() string {
	if w.Artifact == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Artifact, w.Message)
}

// Warningf builds a Warning for the given artifact with a formatted message.
func Warningf(artifact, format string, args ...any) Warning {
	return Warning{Artifact: artifact, Message: fmt.Sprintf(format, args...)}
}
