package domain

// RaterBreakdownEntry summarizes one rater's weighted contribution to a
// single model's scores.
type RaterBreakdownEntry struct {
	// RaterName identifies the rater.
	RaterName string `json:"rater_name"`

	// TotalScore is the sum of the rater's raw scores for the model,
	// multiplied by the rater's weight.
	TotalScore float64 `json:"total_score"`

	// AverageScore is TotalScore divided by the model's distinct script
	// count. The denominator is deliberately the model's full script count
	// rather than the rater's own coverage, so a rater that skipped scripts
	// drags the average down instead of being normalized away.
	AverageScore float64 `json:"average_score"`
}

// ModelResult is the aggregated leaderboard entry for one model.
// It is derived entirely from score records and weights, recomputed fresh
// every run.
type ModelResult struct {
	// ModelVersion is the model identifier recovered from script names.
	ModelVersion string `json:"model_version"`

	// Provider is the provider label from the model registry, or "Unknown".
	Provider string `json:"provider"`

	// TotalScore is the sum of weighted per-script scores.
	TotalScore float64 `json:"total_score"`

	// AverageScore is TotalScore divided by ScriptCount.
	AverageScore float64 `json:"average_score"`

	// ScriptCount is the number of distinct scripts rated for this model.
	ScriptCount int `json:"script_count"`

	// RatersUsedCount is the number of distinct raters that scored at
	// least one of this model's scripts.
	RatersUsedCount int `json:"raters_used_count"`

	// RaterBreakdown lists per-rater totals, ordered by rater name
	// ascending.
	RaterBreakdown []RaterBreakdownEntry `json:"rater_breakdown"`
}
