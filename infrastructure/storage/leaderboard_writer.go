package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/callboard-bench/callboard/internal/domain"
)

// LeaderboardWriter persists the ranked leaderboard as indented JSON so it
// can be diffed between runs and consumed by other tools.
type LeaderboardWriter struct {
	path string
}

// NewLeaderboardWriter creates a writer targeting the given file path.
func NewLeaderboardWriter(path string) *LeaderboardWriter {
	return &LeaderboardWriter{path: path}
}

// Write marshals the ranked results to the configured path, creating
// parent directories as needed. Results are written in the order given;
// ranking happens upstream.
func (w *LeaderboardWriter) Write(results []domain.ModelResult) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create leaderboard directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(w.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write leaderboard %s: %w", w.path, err)
	}
	return nil
}
