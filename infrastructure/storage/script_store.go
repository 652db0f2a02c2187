package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/callboard-bench/callboard/internal/domain"
)

// Script is one generated script artifact: its identifier (the artifact
// name without extension, "{prompt_id}_{model_id}") and its full text.
type Script struct {
	ID   string
	Text string
}

// ScriptStore reads and writes generated script artifacts as plain text
// files in a single flat directory.
type ScriptStore struct {
	dir string
}

// NewScriptStore creates a script store rooted at dir.
func NewScriptStore(dir string) *ScriptStore {
	return &ScriptStore{dir: dir}
}

// List returns every script in the directory, sorted by ID. Empty scripts
// are skipped with a warning since rating an empty script wastes rater
// calls and produces meaningless scores.
func (s *ScriptStore) List() ([]Script, []domain.Warning, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scripts directory %s: %w", s.dir, err)
	}

	var scripts []Script
	var warnings []domain.Warning

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, scriptExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			warnings = append(warnings, domain.Warningf(name, "could not read script: %v", err))
			continue
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			warnings = append(warnings, domain.Warningf(name, "script is empty; skipped"))
			continue
		}

		scripts = append(scripts, Script{
			ID:   strings.TrimSuffix(name, scriptExt),
			Text: text,
		})
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].ID < scripts[j].ID })

	return scripts, warnings, nil
}

// Save writes one generated script under "{script_id}.txt".
func (s *ScriptStore) Save(scriptID, text string) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create scripts directory %s: %w", s.dir, err)
	}
	name := scriptID + scriptExt
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write script %s: %w", name, err)
	}
	return nil
}

// Completed reports whether a script artifact already exists for the given
// key ("{prompt_id}_{model_id}").
func (s *ScriptStore) Completed(key string) bool {
	_, err := os.Stat(filepath.Join(s.dir, key+scriptExt))
	return err == nil
}
