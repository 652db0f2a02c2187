package domain

import (
	"fmt"
	"sort"
)

// pairKey identifies one (script, rater) rating for duplicate detection.
type pairKey struct {
	scriptID string
	raterID  string
}

// DedupeRecords enforces the one-record-per-(script, rater) invariant.
// When the same pair appears more than once (a re-rated script ingested
// twice), the most recent occurrence in input order wins and a warning is
// emitted for each superseded record. The returned slice preserves the
// first-encounter order of the surviving pairs.
func DedupeRecords(records []ScoreRecord) ([]ScoreRecord, []Warning) {
	var warnings []Warning

	index := make(map[pairKey]int, len(records))
	deduped := make([]ScoreRecord, 0, len(records))

	for _, rec := range records {
		key := pairKey{scriptID: rec.ScriptID, raterID: rec.RaterID}
		if at, seen := index[key]; seen {
			warnings = append(warnings, Warningf(
				fmt.Sprintf("%s%s%s", rec.ScriptID, RaterSeparator, rec.RaterID),
				"duplicate rating for (script=%s, rater=%s); keeping most recent score %.4g over %.4g",
				rec.ScriptID, rec.RaterID, rec.RawScore, deduped[at].RawScore,
			))
			deduped[at] = rec
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, rec)
	}

	return deduped, warnings
}

// AggregateScores combines score records into one ModelResult per distinct
// model. Records are grouped by model and then by script; each script's
// contribution is the weight-multiplied sum of its raters' raw scores, and
// a model's average is its total over its distinct script count.
//
// The per-rater breakdown applies the same weights and divides by the
// model's distinct script count, never the rater's own coverage count, so
// partial coverage lowers a rater's average rather than disappearing.
//
// Duplicate (script, rater) pairs are resolved via DedupeRecords before any
// arithmetic. Models with zero records never appear in the output. Results
// are returned ordered by model identifier ascending; ranking is the
// Ranker's concern.
func AggregateScores(records []ScoreRecord, weights RaterWeights, providers ModelProviders) ([]ModelResult, []Warning) {
	if len(records) == 0 {
		return nil, nil
	}

	records, warnings := DedupeRecords(records)

	byModel := make(map[string][]ScoreRecord)
	for _, rec := range records {
		modelID := ModelIDFromScriptID(rec.ScriptID)
		if modelID == "" {
			warnings = append(warnings, Warningf(rec.ScriptID,
				"script id has no model segment; record skipped"))
			continue
		}
		byModel[modelID] = append(byModel[modelID], rec)
	}

	results := make([]ModelResult, 0, len(byModel))
	for modelID, modelRecords := range byModel {
		results = append(results, aggregateModel(modelID, modelRecords, weights, providers))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ModelVersion < results[j].ModelVersion
	})

	return results, warnings
}

// aggregateModel computes the totals, average, and rater breakdown for one
// model's records. The grouping above guarantees at least one record, so
// the script count is always >= 1 and the averages are well defined.
func aggregateModel(modelID string, records []ScoreRecord, weights RaterWeights, providers ModelProviders) ModelResult {
	scriptScores := make(map[string]float64)
	raterTotals := make(map[string]float64)

	for _, rec := range records {
		weighted := rec.RawScore * weights.Weight(rec.RaterID)
		scriptScores[rec.ScriptID] += weighted
		raterTotals[rec.RaterID] += weighted
	}

	var totalScore float64
	for _, score := range scriptScores {
		totalScore += score
	}
	scriptCount := len(scriptScores)

	breakdown := make([]RaterBreakdownEntry, 0, len(raterTotals))
	for raterID, total := range raterTotals {
		breakdown = append(breakdown, RaterBreakdownEntry{
			RaterName:    raterID,
			TotalScore:   total,
			AverageScore: total / float64(scriptCount),
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].RaterName < breakdown[j].RaterName
	})

	return ModelResult{
		ModelVersion:    modelID,
		Provider:        providers.Provider(modelID),
		TotalScore:      totalScore,
		AverageScore:    totalScore / float64(scriptCount),
		ScriptCount:     scriptCount,
		RatersUsedCount: len(breakdown),
		RaterBreakdown:  breakdown,
	}
}
