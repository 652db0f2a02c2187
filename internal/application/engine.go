package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/callboard-bench/callboard/internal/domain"
	"github.com/callboard-bench/callboard/internal/ports"
)

// RecordSource loads score records along with per-artifact warnings for
// inputs that could not be parsed.
type RecordSource interface {
	Load() ([]domain.ScoreRecord, []domain.Warning, error)
}

// LeaderboardSink persists a ranked leaderboard.
type LeaderboardSink interface {
	Write(results []domain.ModelResult) error
}

// Engine orchestrates a leaderboard build: load rating records, aggregate
// them under the registry weights, rank, and persist. Configuration
// problems abort the run; individual bad artifacts surface as warnings.
type Engine struct {
	source  RecordSource
	sink    LeaderboardSink
	raters  *RaterRegistry
	models  *ModelRegistry
	metrics ports.MetricsCollector
}

// NewEngine assembles a leaderboard engine. The sink and metrics collector
// may be nil when persistence or monitoring is not wanted.
func NewEngine(
	source RecordSource,
	sink LeaderboardSink,
	raters *RaterRegistry,
	models *ModelRegistry,
	metrics ports.MetricsCollector,
) *Engine {
	return &Engine{
		source:  source,
		sink:    sink,
		raters:  raters,
		models:  models,
		metrics: metrics,
	}
}

// BuildLeaderboard produces the ranked leaderboard from the current rating
// artifacts. It returns ErrNoRecords when no usable rating exists, since a
// leaderboard over nothing would be misleading rather than empty.
func (e *Engine) BuildLeaderboard(ctx context.Context) ([]domain.ModelResult, []domain.Warning, error) {
	ctx, span := otel.Tracer("leaderboard-engine").Start(ctx, "leaderboard.build")
	defer span.End()
	start := time.Now()

	records, warnings, err := e.source.Load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, warnings, fmt.Errorf("loading rating records: %w", err)
	}
	if len(records) == 0 {
		span.SetStatus(codes.Error, domain.ErrNoRecords.Error())
		return nil, warnings, domain.ErrNoRecords
	}

	weights := e.raters.Weights()
	providers := e.models.Providers()

	results, aggWarnings := domain.AggregateScores(records, weights, providers)
	warnings = append(warnings, aggWarnings...)
	warnings = append(warnings, e.unknownRaterWarnings(records, weights)...)

	ranked := domain.RankResults(results)

	if e.sink != nil {
		if err := e.sink.Write(ranked); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, warnings, fmt.Errorf("persisting leaderboard: %w", err)
		}
	}

	span.SetAttributes(
		attribute.Int("leaderboard.records", len(records)),
		attribute.Int("leaderboard.models", len(ranked)),
		attribute.Int("leaderboard.warnings", len(warnings)),
	)
	if e.metrics != nil {
		e.metrics.RecordLatency("leaderboard_build", time.Since(start), nil)
		e.metrics.RecordCounter("leaderboard_models_ranked", float64(len(ranked)), nil)
	}

	return ranked, warnings, nil
}

// unknownRaterWarnings reports each distinct rater present in the records
// but absent from the registry. Such raters still score at the default
// weight; the warning, with a nearest-name suggestion when one is
// plausible, is how registry typos get noticed.
func (e *Engine) unknownRaterWarnings(records []domain.ScoreRecord, weights domain.RaterWeights) []domain.Warning {
	unknown := make(map[string]struct{})
	for _, rec := range records {
		if !weights.Known(rec.RaterID) {
			unknown[rec.RaterID] = struct{}{}
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	ids := make([]string, 0, len(unknown))
	for id := range unknown {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	names := e.raters.Names()
	warnings := make([]domain.Warning, 0, len(ids))
	for _, id := range ids {
		if suggestion, ok := SuggestRater(id, names); ok {
			warnings = append(warnings, domain.Warningf(id,
				"rater not in registry; scored at default weight 1.0 (did you mean %q?)", suggestion))
			continue
		}
		warnings = append(warnings, domain.Warningf(id,
			"rater not in registry; scored at default weight 1.0"))
	}
	return warnings
}
