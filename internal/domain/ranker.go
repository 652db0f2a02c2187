package domain

import "sort"

// RankResults orders aggregated model results into the final leaderboard
// sequence: average score descending, ties broken by model identifier
// ascending so the ordering is deterministic regardless of how the input
// was produced. The input slice is not modified; an empty input yields an
// empty output.
func RankResults(results []ModelResult) []ModelResult {
	ranked := make([]ModelResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageScore != ranked[j].AverageScore {
			return ranked[i].AverageScore > ranked[j].AverageScore
		}
		return ranked[i].ModelVersion < ranked[j].ModelVersion
	})

	return ranked
}
