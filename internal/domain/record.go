// Package domain contains pure, dependency-free domain models and the
// scoring aggregation logic for the leaderboard engine.
package domain

import "strings"

// RaterSeparator is the literal token that separates the script portion of
// a rating artifact name from the rater identifier.
const RaterSeparator = "_rater_"

// ScoreRecord is one rater's raw score for one generated script.
// Records are immutable once parsed; one rating artifact yields exactly
// one record.
type ScoreRecord struct {
	// ScriptID identifies the rated script in the form
	// "{prompt_id}_{model_id}".
	ScriptID string

	// RaterID identifies the rater that produced the score.
	RaterID string

	// RawScore is the unweighted score read from the rating artifact.
	RawScore float64
}

// ParseRatingName splits a rating artifact base name (extension already
// removed) into its script and rater identifiers. The name must contain the
// rater separator exactly once; anything else is a non-conforming name and
// is reported via ok=false so callers can skip the artifact.
func ParseRatingName(name string) (scriptID, raterID string, ok bool) {
	parts := strings.Split(name, RaterSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ModelIDFromScriptID recovers the model identifier from a script
// identifier of the form "{prompt_id}_{model_id}". Model identifiers may
// themselves contain underscores, so every segment after the leading prompt
// segment is rejoined rather than split off naively.
func ModelIDFromScriptID(scriptID string) string {
	segments := strings.Split(scriptID, "_")
	if len(segments) < 2 {
		return ""
	}
	return strings.Join(segments[1:], "_")
}

// RaterWeights maps rater identifiers to score multipliers.
// The mapping is built once per run and read-only afterward.
type RaterWeights map[string]float64

// Weight returns the configured weight for a rater, or 1.0 for any rater
// absent from configuration.
func (w RaterWeights) Weight(raterID string) float64 {
	if weight, ok := w[raterID]; ok {
		return weight
	}
	return 1.0
}

// Known reports whether the rater has an explicitly configured weight.
func (w RaterWeights) Known(raterID string) bool {
	_, ok := w[raterID]
	return ok
}

// ModelProviders maps model identifiers to provider labels.
// Same lifecycle as RaterWeights.
type ModelProviders map[string]string

// Provider returns the configured provider label for a model, or "Unknown"
// for any model absent from configuration.
func (p ModelProviders) Provider(modelID string) string {
	if provider, ok := p[modelID]; ok {
		return provider
	}
	return "Unknown"
}
