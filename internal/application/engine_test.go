package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callboard-bench/callboard/internal/domain"
)

// stubSource returns canned records and warnings.
type stubSource struct {
	records  []domain.ScoreRecord
	warnings []domain.Warning
	err      error
}

func (s *stubSource) Load() ([]domain.ScoreRecord, []domain.Warning, error) {
	return s.records, s.warnings, s.err
}

// captureSink records what the engine persisted.
type captureSink struct {
	written []domain.ModelResult
	err     error
}

func (s *captureSink) Write(results []domain.ModelResult) error {
	s.written = results
	return s.err
}

func testRegistries() (*RaterRegistry, *ModelRegistry) {
	weight := func(v float64) *float64 { return &v }
	raters := &RaterRegistry{Raters: []RaterConfig{
		{Name: "dialogue", Weight: weight(2.0), PromptFile: "d.txt", ModelVersion: "gpt-4o", QueryFunction: "query_openai"},
		{Name: "pacing", Weight: weight(1.0), PromptFile: "p.txt", ModelVersion: "gpt-4o", QueryFunction: "query_openai"},
	}}
	models := &ModelRegistry{Models: []ModelConfig{
		{ModelVersion: "gpt-4o", Provider: "OpenAI", QueryFunction: "query_openai"},
		{ModelVersion: "claude-3-5-sonnet", Provider: "Anthropic", QueryFunction: "query_anthropic"},
	}}
	return raters, models
}

func TestEngineBuildLeaderboard(t *testing.T) {
	raters, models := testRegistries()
	source := &stubSource{records: []domain.ScoreRecord{
		{ScriptID: "hamlet_gpt-4o", RaterID: "dialogue", RawScore: 8},
		{ScriptID: "hamlet_gpt-4o", RaterID: "pacing", RawScore: 6},
		{ScriptID: "hamlet_claude-3-5-sonnet", RaterID: "dialogue", RawScore: 9},
		{ScriptID: "hamlet_claude-3-5-sonnet", RaterID: "pacing", RawScore: 9},
	}}
	sink := &captureSink{}

	engine := NewEngine(source, sink, raters, models, nil)
	ranked, warnings, err := engine.BuildLeaderboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, ranked, 2)

	// claude: 9*2 + 9*1 = 27; gpt-4o: 8*2 + 6*1 = 22.
	assert.Equal(t, "claude-3-5-sonnet", ranked[0].ModelVersion)
	assert.Equal(t, "Anthropic", ranked[0].Provider)
	assert.InDelta(t, 27, ranked[0].AverageScore, 1e-9)
	assert.Equal(t, "gpt-4o", ranked[1].ModelVersion)
	assert.InDelta(t, 22, ranked[1].AverageScore, 1e-9)

	assert.Equal(t, ranked, sink.written, "persisted leaderboard matches returned ranking")
}

func TestEngineBuildLeaderboard_NoRecords(t *testing.T) {
	raters, models := testRegistries()
	engine := NewEngine(&stubSource{}, &captureSink{}, raters, models, nil)

	_, _, err := engine.BuildLeaderboard(context.Background())
	require.ErrorIs(t, err, domain.ErrNoRecords)
}

func TestEngineBuildLeaderboard_SourceError(t *testing.T) {
	raters, models := testRegistries()
	sourceErr := errors.New("disk on fire")
	engine := NewEngine(&stubSource{err: sourceErr}, &captureSink{}, raters, models, nil)

	_, _, err := engine.BuildLeaderboard(context.Background())
	require.ErrorIs(t, err, sourceErr)
}

func TestEngineBuildLeaderboard_SinkError(t *testing.T) {
	raters, models := testRegistries()
	source := &stubSource{records: []domain.ScoreRecord{
		{ScriptID: "hamlet_gpt-4o", RaterID: "dialogue", RawScore: 8},
	}}
	sinkErr := errors.New("read-only filesystem")
	engine := NewEngine(source, &captureSink{err: sinkErr}, raters, models, nil)

	_, _, err := engine.BuildLeaderboard(context.Background())
	require.ErrorIs(t, err, sinkErr)
}

func TestEngineBuildLeaderboard_UnknownRaterWarning(t *testing.T) {
	raters, models := testRegistries()
	source := &stubSource{records: []domain.ScoreRecord{
		{ScriptID: "hamlet_gpt-4o", RaterID: "dialouge", RawScore: 8},
	}}

	engine := NewEngine(source, nil, raters, models, nil)
	ranked, warnings, err := engine.BuildLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 8, ranked[0].TotalScore, 1e-9, "unknown rater still scores at weight 1.0")

	require.Len(t, warnings, 1)
	assert.Equal(t, "dialouge", warnings[0].Artifact)
	assert.True(t, strings.Contains(warnings[0].Message, `"dialogue"`),
		"warning suggests the nearest registry name: %s", warnings[0].Message)
}

func TestEngineBuildLeaderboard_PropagatesSourceWarnings(t *testing.T) {
	raters, models := testRegistries()
	source := &stubSource{
		records: []domain.ScoreRecord{
			{ScriptID: "hamlet_gpt-4o", RaterID: "dialogue", RawScore: 8},
		},
		warnings: []domain.Warning{{Artifact: "junk.json", Message: "could not parse artifact"}},
	}

	engine := NewEngine(source, nil, raters, models, nil)
	_, warnings, err := engine.BuildLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "junk.json", warnings[0].Artifact)
}
