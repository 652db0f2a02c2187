package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callboard-bench/callboard/internal/domain"
)

func TestScriptStoreListAndSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	store := NewScriptStore(dir)

	require.NoError(t, store.Save("hamlet_gpt-4o", "EXT. ELSINORE - NIGHT"))
	require.NoError(t, store.Save("aria_claude-opus", "INT. OPERA HOUSE - DAY"))

	scripts, warnings, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, scripts, 2)

	assert.Equal(t, "aria_claude-opus", scripts[0].ID, "listing is sorted by ID")
	assert.Equal(t, "hamlet_gpt-4o", scripts[1].ID)
	assert.Equal(t, "EXT. ELSINORE - NIGHT", scripts[1].Text)
}

func TestScriptStoreList_SkipsEmptyScripts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "hamlet_gpt-4o.txt", "EXT. ELSINORE - NIGHT")
	writeArtifact(t, dir, "aria_claude-opus.txt", "   \n")
	writeArtifact(t, dir, "README.md", "docs, not a script")

	scripts, warnings, err := NewScriptStore(dir).List()
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "hamlet_gpt-4o", scripts[0].ID)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "empty")
}

func TestScriptStoreCompleted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	store := NewScriptStore(dir)

	assert.False(t, store.Completed("hamlet_gpt-4o"))
	require.NoError(t, store.Save("hamlet_gpt-4o", "EXT. ELSINORE - NIGHT"))
	assert.True(t, store.Completed("hamlet_gpt-4o"))
}

func TestPromptStore(t *testing.T) {
	promptsDir := t.TempDir()
	writeArtifact(t, promptsDir, "hamlet.txt", "Write a tragedy about a prince.\n")
	writeArtifact(t, promptsDir, "empty.txt", "\n")

	templatesDir := t.TempDir()
	writeArtifact(t, templatesDir, "dialogue_rater.txt", "Rate the dialogue:\n\n{{script_text}}")

	prompts, warnings, err := NewPromptStore(promptsDir).List()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Len(t, prompts, 1)
	assert.Equal(t, "hamlet", prompts[0].ID)
	assert.Equal(t, "Write a tragedy about a prince.", prompts[0].Text)

	templates := NewPromptStore(templatesDir)
	template, err := templates.LoadTemplate("dialogue_rater.txt")
	require.NoError(t, err)
	assert.Contains(t, template, "{{script_text}}")

	_, err = templates.LoadTemplate("missing.txt")
	require.Error(t, err)
}

func TestPromptStoreList_TemplatesLiveInTheirOwnDirectory(t *testing.T) {
	promptsDir := t.TempDir()
	writeArtifact(t, promptsDir, "hamlet.txt", "Write a tragedy about a prince.")
	templatesDir := t.TempDir()
	writeArtifact(t, templatesDir, "dialogue_rater.txt", "Rate the dialogue:\n\n{{script_text}}")

	prompts, warnings, err := NewPromptStore(promptsDir).List()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, prompts, 1)
	assert.Equal(t, "hamlet", prompts[0].ID,
		"rater templates never appear among generation prompts")
}

func TestLeaderboardWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "leaderboard.json")

	results := []domain.ModelResult{
		{ModelVersion: "gpt-4o", Provider: "openai", TotalScore: 40, AverageScore: 20, ScriptCount: 2},
	}
	require.NoError(t, NewLeaderboardWriter(path).Write(results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []domain.ModelResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, results, decoded)
}
