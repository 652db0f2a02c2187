package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callboard-bench/callboard/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRaterRegistry(t *testing.T) {
	path := writeFile(t, t.TempDir(), "raters.json", `{
		"raters": [
			{"name": "dialogue", "weight": 2.0, "prompt_file": "dialogue_rater.txt", "model_version": "gpt-4o", "query_function": "query_openai"},
			{"name": "pacing", "prompt_file": "pacing_rater.txt", "model_version": "gemini-2.0-flash", "query_function": "query_gemini"}
		]
	}`)

	registry, err := LoadRaterRegistry(path)
	require.NoError(t, err)
	require.Len(t, registry.Raters, 2)

	weights := registry.Weights()
	assert.Equal(t, 2.0, weights.Weight("dialogue"))
	assert.Equal(t, 1.0, weights.Weight("pacing"), "omitted weight defaults to 1.0")
	assert.Equal(t, []string{"dialogue", "pacing"}, registry.Names())
}

func TestLoadRaterRegistry_Failures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		content string
	}{
		{
			name: "missing file",
			path: filepath.Join(dir, "absent.json"),
		},
		{
			name:    "malformed json",
			content: `{"raters": [`,
		},
		{
			name:    "empty registry",
			content: `{"raters": []}`,
		},
		{
			name: "unknown query function",
			content: `{"raters": [
				{"name": "dialogue", "prompt_file": "d.txt", "model_version": "gpt-4o", "query_function": "query_grok"}
			]}`,
		},
		{
			name: "duplicate rater name",
			content: `{"raters": [
				{"name": "dialogue", "prompt_file": "d.txt", "model_version": "gpt-4o", "query_function": "query_openai"},
				{"name": "dialogue", "prompt_file": "d2.txt", "model_version": "gpt-4o", "query_function": "query_openai"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = writeFile(t, t.TempDir(), "raters.json", tt.content)
			}
			_, err := LoadRaterRegistry(path)
			require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestLoadModelRegistry(t *testing.T) {
	path := writeFile(t, t.TempDir(), "models.json", `{
		"models": [
			{"model_version": "gpt-4o", "provider": "OpenAI", "query_function": "query_openai"},
			{"model_version": "claude-3-5-sonnet", "provider": "Anthropic", "query_function": "query_anthropic"}
		]
	}`)

	registry, err := LoadModelRegistry(path)
	require.NoError(t, err)

	providers := registry.Providers()
	assert.Equal(t, "OpenAI", providers.Provider("gpt-4o"))
	assert.Equal(t, "Anthropic", providers.Provider("claude-3-5-sonnet"))
	assert.Equal(t, "Unknown", providers.Provider("mystery-model"))
}

func TestLoadModelRegistry_DuplicateModel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "models.json", `{
		"models": [
			{"model_version": "gpt-4o", "provider": "OpenAI", "query_function": "query_openai"},
			{"model_version": "gpt-4o", "provider": "OpenAI", "query_function": "query_openai"}
		]
	}`)

	_, err := LoadModelRegistry(path)
	require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestProviderForQueryFunction(t *testing.T) {
	tests := []struct {
		fn      string
		want    string
		wantErr bool
	}{
		{fn: "query_openai", want: ProviderOpenAI},
		{fn: "query_anthropic", want: ProviderAnthropic},
		{fn: "query_gemini", want: ProviderGoogle},
		{fn: "query_grok", wantErr: true},
		{fn: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got, err := ProviderForQueryFunction(tt.fn)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadRunConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", `
prompts_dir: ./prompts
rater_prompts_dir: ./rater_prompts
scripts_dir: ./scripts
ratings_dir: ./ratings
leaderboard_path: ./out/leaderboard.json
rater_registry: ./raters.json
model_registry: ./models.json
concurrency: 8
requests_per_second: 2.5
`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./prompts", cfg.PromptsDir)
	assert.Equal(t, "./rater_prompts", cfg.RaterPromptsDir,
		"rater templates live apart from generation prompts")
	assert.Equal(t, 8, cfg.Concurrency)
	assert.InDelta(t, 2.5, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, DefaultMaxRetries, cfg.Retries(), "unset settings take defaults")
	assert.Equal(t, DefaultRequestTimeoutSeconds, cfg.RequestTimeoutSeconds)
	assert.Equal(t, DefaultGenerationSystemPrompt, cfg.GenerationSystemPrompt)
}

func TestLoadRunConfig_ExplicitZeroRetries(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", `
prompts_dir: ./prompts
rater_prompts_dir: ./rater_prompts
scripts_dir: ./scripts
ratings_dir: ./ratings
leaderboard_path: ./out/leaderboard.json
rater_registry: ./raters.json
model_registry: ./models.json
max_retries: 0
generation_system_prompt: "You write radio dramas."
`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Retries(), "an explicit zero disables retries instead of taking the default")
	assert.Equal(t, "You write radio dramas.", cfg.GenerationSystemPrompt)
}

func TestLoadRunConfig_MissingPaths(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", `
prompts_dir: ./prompts
`)

	_, err := LoadRunConfig(path)
	require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSuggestRater(t *testing.T) {
	known := []string{"dialogue", "pacing", "stage_presence"}

	tests := []struct {
		name    string
		unknown string
		want    string
		ok      bool
	}{
		{name: "close typo", unknown: "dialouge", want: "dialogue", ok: true},
		{name: "case folded match", unknown: "Pacing", want: "pacing", ok: true},
		{name: "too far", unknown: "cinematography", ok: false},
		{name: "short unknown", unknown: "x", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestRater(tt.unknown, known)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
