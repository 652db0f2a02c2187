// Package storage provides the filesystem-backed artifact stores for the
// leaderboard engine: generated scripts, rating artifacts, prompt files,
// and the persisted leaderboard.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/callboard-bench/callboard/internal/domain"
)

const (
	ratingExt = ".json"
	scriptExt = ".txt"
)

// RatingStore reads and writes per-(script, rater) rating artifacts in a
// single flat directory. Artifact names follow
// "{prompt_id}_{model_id}_rater_{rater_id}.json".
type RatingStore struct {
	dir string
}

// NewRatingStore creates a rating store rooted at dir.
func NewRatingStore(dir string) *RatingStore {
	return &RatingStore{dir: dir}
}

// Load parses every rating artifact in the directory into score records.
// Artifacts with non-conforming names, unreadable content, or
// non-coercible scores are skipped with a warning; one bad artifact never
// aborts the run. Only an unreadable directory is an error.
func (s *RatingStore) Load() ([]domain.ScoreRecord, []domain.Warning, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ratings directory %s: %w", s.dir, err)
	}

	var records []domain.ScoreRecord
	var warnings []domain.Warning

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ratingExt) {
			continue
		}

		scriptID, raterID, ok := domain.ParseRatingName(strings.TrimSuffix(name, ratingExt))
		if !ok {
			warnings = append(warnings, domain.Warningf(name, "non-conforming artifact name; skipped"))
			continue
		}

		rawScore, warning := s.readScore(name)
		if warning != nil {
			warnings = append(warnings, *warning)
			continue
		}

		records = append(records, domain.ScoreRecord{
			ScriptID: scriptID,
			RaterID:  raterID,
			RawScore: rawScore,
		})
	}

	return records, warnings, nil
}

// readScore reads one artifact and extracts its score field. A missing
// score field defaults to 0; malformed JSON or a non-numeric score yields
// a warning and no record.
func (s *RatingStore) readScore(name string) (float64, *domain.Warning) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		w := domain.Warningf(name, "could not read artifact: %v", err)
		return 0, &w
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		w := domain.Warningf(name, "could not parse artifact: %v", err)
		return 0, &w
	}

	rawScore, present := doc["score"]
	if !present {
		return 0, nil
	}

	score, ok := coerceScore(rawScore)
	if !ok {
		w := domain.Warningf(name, "score field is not numeric: %s", string(rawScore))
		return 0, &w
	}
	return score, nil
}

// coerceScore converts a JSON score value to a float. Raters sometimes
// emit scores as quoted strings, so numeric strings are accepted too.
func coerceScore(raw json.RawMessage) (float64, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if number, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return number, true
		}
	}

	return 0, false
}

// Save writes one rater's raw response for a script. The response is
// persisted verbatim so the artifact reflects exactly what the rater
// returned.
func (s *RatingStore) Save(scriptID, raterID, response string) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create ratings directory %s: %w", s.dir, err)
	}
	name := scriptID + domain.RaterSeparator + raterID + ratingExt
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(response), 0o600); err != nil {
		return fmt.Errorf("failed to write rating %s: %w", name, err)
	}
	return nil
}

// Completed reports whether a rating artifact already exists for the given
// key ("{script_id}_rater_{rater_id}"), marking that unit of work done.
func (s *RatingStore) Completed(key string) bool {
	_, err := os.Stat(filepath.Join(s.dir, key+ratingExt))
	return err == nil
}
