package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRatingName(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantScriptID string
		wantRaterID  string
		wantOK       bool
	}{
		{
			name:         "well formed name splits into script and rater",
			input:        "prompt1_gpt-5_rater_dialogue",
			wantScriptID: "prompt1_gpt-5",
			wantRaterID:  "dialogue",
			wantOK:       true,
		},
		{
			name:         "model id containing underscores stays with the script segment",
			input:        "prompt2_llama_3_70b_rater_pacing",
			wantScriptID: "prompt2_llama_3_70b",
			wantRaterID:  "pacing",
			wantOK:       true,
		},
		{
			name:   "missing separator is filtered",
			input:  "prompt1_gpt-5",
			wantOK: false,
		},
		{
			name:   "separator appearing twice is filtered",
			input:  "prompt1_gpt-5_rater_dialogue_rater_pacing",
			wantOK: false,
		},
		{
			name:   "empty rater segment is filtered",
			input:  "prompt1_gpt-5_rater_",
			wantOK: false,
		},
		{
			name:   "empty script segment is filtered",
			input:  "_rater_dialogue",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scriptID, raterID, ok := ParseRatingName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantScriptID, scriptID)
				assert.Equal(t, tt.wantRaterID, raterID)
			}
		})
	}
}

func TestModelIDFromScriptID(t *testing.T) {
	tests := []struct {
		name     string
		scriptID string
		want     string
	}{
		{
			name:     "simple model id",
			scriptID: "prompt1_gpt-5",
			want:     "gpt-5",
		},
		{
			name:     "model id with underscores is rejoined",
			scriptID: "prompt3_llama_3_70b",
			want:     "llama_3_70b",
		},
		{
			name:     "no model segment yields empty",
			scriptID: "prompt1",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelIDFromScriptID(tt.scriptID))
		})
	}
}

func TestRaterWeightsDefault(t *testing.T) {
	weights := RaterWeights{"dialogue": 2.0, "zeroed": 0.0}

	assert.Equal(t, 2.0, weights.Weight("dialogue"))
	assert.Equal(t, 0.0, weights.Weight("zeroed"), "explicit zero weight must not fall back to the default")
	assert.Equal(t, 1.0, weights.Weight("unconfigured"))
	assert.True(t, weights.Known("dialogue"))
	assert.False(t, weights.Known("unconfigured"))
}

func TestModelProvidersDefault(t *testing.T) {
	providers := ModelProviders{"gpt-5": "OpenAI"}

	assert.Equal(t, "OpenAI", providers.Provider("gpt-5"))
	assert.Equal(t, "Unknown", providers.Provider("mystery-model"))
}
