package llm

// RequestOptions is the standardized set of configuration parameters for an
// LLM request, consolidating common settings across providers.
type RequestOptions struct {
	// MaxTokens specifies the maximum number of tokens to generate.
	MaxTokens int
	// Model is the identifier of the model to use for the request.
	Model string
	// Temperature controls output randomness. Nil means use the
	// provider's default.
	Temperature *float64
	// TopP enables nucleus sampling. Nil means use the provider's default.
	TopP *float64
	// System carries the system prompt guiding the model's behavior.
	// Both the generation and rating pipelines set this.
	System string
	// Extra holds provider-specific options outside the standardized set.
	Extra map[string]any
}

// ParseRequestOptions extracts and validates LLM request parameters from an
// options map, applying defaults for missing or invalid entries.
// Unrecognized options are collected into Extra.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: extractInt(opts, "max_tokens", DefaultMaxTokens, isPositiveInt),
		Model:     extractString(opts, "model", defaultModel, isNonEmptyString),
		System:    extractString(opts, "system", "", nil),
		Extra:     make(map[string]any),
	}

	if temp := extractFloat64(opts, "temperature", -1, IsValidTemperature); temp != -1 {
		options.Temperature = &temp
	}
	if topP := extractFloat64(opts, "top_p", -1, IsValidTopP); topP != -1 {
		options.TopP = &topP
	}

	for k, v := range opts {
		switch k {
		case "max_tokens", "model", "system", "temperature", "top_p":
			// Standard options, already processed.
		default:
			options.Extra[k] = v
		}
	}

	return options
}

func extractInt(opts map[string]any, key string, defaultVal int, valid func(int) bool) int {
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	intVal, ok := val.(int)
	if !ok {
		return defaultVal
	}
	if valid != nil && !valid(intVal) {
		return defaultVal
	}
	return intVal
}

func extractString(opts map[string]any, key string, defaultVal string, valid func(string) bool) string {
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	strVal, ok := val.(string)
	if !ok {
		return defaultVal
	}
	if valid != nil && !valid(strVal) {
		return defaultVal
	}
	return strVal
}

func extractFloat64(opts map[string]any, key string, defaultVal float64, valid func(float64) bool) float64 {
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	var floatVal float64
	switch v := val.(type) {
	case float64:
		floatVal = v
	case int:
		floatVal = float64(v)
	default:
		return defaultVal
	}
	if valid != nil && !valid(floatVal) {
		return defaultVal
	}
	return floatVal
}

// TokenCounter estimates token counts from text when an exact tokenizer is
// not available for a model.
type TokenCounter struct {
	// CharactersPerToken is the approximate number of characters per
	// token, tunable per model or language.
	CharactersPerToken float64
}

// NewTokenCounter creates a TokenCounter with a default ratio suitable for
// English text.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{CharactersPerToken: 4.0}
}

// EstimateTokens calculates an estimated token count for the given text.
func (tc *TokenCounter) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / tc.CharactersPerToken)
}

// GetTokenCount returns the actual token count when the API reported one,
// falling back to estimation otherwise.
func (tc *TokenCounter) GetTokenCount(actualCount int, text string) int {
	if actualCount > 0 {
		return actualCount
	}
	return tc.EstimateTokens(text)
}
