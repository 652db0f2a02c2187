package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/callboard-bench/callboard/internal/domain"
)

// Prompt is one generation prompt: its identifier (the file name without
// extension) and its text.
type Prompt struct {
	ID   string
	Text string
}

// PromptStore reads plain-text prompt files from a directory. Generation
// prompts and rater prompt templates live in separate directories, each
// served by its own store instance, so templates never enter the
// generation matrix.
type PromptStore struct {
	dir string
}

// NewPromptStore creates a prompt store rooted at dir.
func NewPromptStore(dir string) *PromptStore {
	return &PromptStore{dir: dir}
}

// List returns every generation prompt in the directory, sorted by ID.
// Empty prompt files are skipped with a warning.
func (s *PromptStore) List() ([]Prompt, []domain.Warning, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read prompts directory %s: %w", s.dir, err)
	}

	var prompts []Prompt
	var warnings []domain.Warning

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, scriptExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			warnings = append(warnings, domain.Warningf(name, "could not read prompt: %v", err))
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			warnings = append(warnings, domain.Warningf(name, "prompt file is empty; skipped"))
			continue
		}

		prompts = append(prompts, Prompt{
			ID:   strings.TrimSuffix(name, scriptExt),
			Text: text,
		})
	}

	sort.Slice(prompts, func(i, j int) bool { return prompts[i].ID < prompts[j].ID })

	return prompts, warnings, nil
}

// LoadTemplate reads a single rater prompt template by file name.
func (s *PromptStore) LoadTemplate(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template %s: %w", name, err)
	}
	return string(data), nil
}
