package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callboard-bench/callboard/internal/domain"
)

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestRatingStoreLoad(t *testing.T) {
	dir := t.TempDir()

	writeArtifact(t, dir, "hamlet_gpt-4o_rater_dialogue.json", `{"score": 8.5, "notes": "sharp"}`)
	writeArtifact(t, dir, "hamlet_gpt-4o_rater_pacing.json", `{"score": "7"}`)
	writeArtifact(t, dir, "hamlet_claude-opus_rater_dialogue.json", `{"notes": "no score field"}`)
	writeArtifact(t, dir, "notes.md", "not a rating")

	store := NewRatingStore(dir)
	records, warnings, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.ElementsMatch(t, []domain.ScoreRecord{
		{ScriptID: "hamlet_gpt-4o", RaterID: "dialogue", RawScore: 8.5},
		{ScriptID: "hamlet_gpt-4o", RaterID: "pacing", RawScore: 7},
		{ScriptID: "hamlet_claude-opus", RaterID: "dialogue", RawScore: 0},
	}, records)
}

func TestRatingStoreLoad_SkipsBadArtifactsWithWarnings(t *testing.T) {
	dir := t.TempDir()

	writeArtifact(t, dir, "hamlet_gpt-4o_rater_dialogue.json", `{"score": 8}`)
	writeArtifact(t, dir, "no-separator.json", `{"score": 5}`)
	writeArtifact(t, dir, "a_rater_b_rater_c.json", `{"score": 5}`)
	writeArtifact(t, dir, "hamlet_gpt-4o_rater_pacing.json", `not json at all`)
	writeArtifact(t, dir, "hamlet_gpt-4o_rater_tone.json", `{"score": null}`)
	writeArtifact(t, dir, "hamlet_gpt-4o_rater_mood.json", `{"score": "high"}`)

	store := NewRatingStore(dir)
	records, warnings, err := store.Load()
	require.NoError(t, err)

	require.Len(t, records, 1, "only the well-formed artifact yields a record")
	assert.Equal(t, "dialogue", records[0].RaterID)
	assert.Len(t, warnings, 5)
}

func TestRatingStoreLoad_MissingDirectory(t *testing.T) {
	store := NewRatingStore(filepath.Join(t.TempDir(), "absent"))
	_, _, err := store.Load()
	require.Error(t, err)
}

func TestRatingStoreSaveAndCompleted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ratings")
	store := NewRatingStore(dir)

	key := "hamlet_gpt-4o" + domain.RaterSeparator + "dialogue"
	assert.False(t, store.Completed(key))

	require.NoError(t, store.Save("hamlet_gpt-4o", "dialogue", `{"score": 9}`))
	assert.True(t, store.Completed(key))

	records, warnings, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 1)
	assert.Equal(t, 9.0, records[0].RawScore)
}

func TestCoerceScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{name: "integer", raw: `7`, want: 7, ok: true},
		{name: "float", raw: `7.25`, want: 7.25, ok: true},
		{name: "numeric string", raw: `" 7.5 "`, want: 7.5, ok: true},
		{name: "non-numeric string", raw: `"excellent"`, ok: false},
		{name: "null", raw: `null`, ok: false},
		{name: "object", raw: `{"value": 7}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceScore([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
