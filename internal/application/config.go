// Package application wires configuration, pipelines, and the leaderboard
// engine together on top of the domain scoring rules.
package application

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/callboard-bench/callboard/internal/domain"
)

// validate is the shared validator instance for configuration structs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Provider identifiers produced by the query-function mapping. They match
// the provider names the LLM client factory understands.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// queryFunctionProviders maps a registry query function to its provider.
// The mapping is explicit so a registry typo fails configuration loading
// instead of silently selecting the wrong backend.
var queryFunctionProviders = map[string]string{
	"query_openai":    ProviderOpenAI,
	"query_anthropic": ProviderAnthropic,
	"query_gemini":    ProviderGoogle,
}

// ProviderForQueryFunction resolves a registry query function to a provider
// identifier. Unknown functions are a configuration error.
func ProviderForQueryFunction(fn string) (string, error) {
	provider, ok := queryFunctionProviders[fn]
	if !ok {
		return "", fmt.Errorf("%w: unknown query function %q", domain.ErrInvalidConfiguration, fn)
	}
	return provider, nil
}

// RaterConfig describes one rater in the rater registry: the identity used
// in artifact names, its leaderboard weight, and the model that performs
// the rating.
type RaterConfig struct {
	// Name is the rater identifier that appears in rating artifact names
	// after the "_rater_" separator.
	Name string `json:"name" validate:"required,min=1,max=100"`
	// Weight scales this rater's scores during aggregation. When omitted
	// the rater contributes at the default weight of 1.0.
	Weight *float64 `json:"weight,omitempty" validate:"omitempty,min=0"`
	// PromptFile names the rating prompt template, relative to the
	// prompts directory. The template must contain the {{script_text}}
	// placeholder.
	PromptFile string `json:"prompt_file" validate:"required"`
	// ModelVersion is the model that performs this rater's evaluations.
	ModelVersion string `json:"model_version" validate:"required"`
	// QueryFunction selects the provider backend for this rater.
	QueryFunction string `json:"query_function" validate:"required,oneof=query_openai query_anthropic query_gemini"`
}

// EffectiveWeight returns the configured weight, or 1.0 when unset.
func (r RaterConfig) EffectiveWeight() float64 {
	if r.Weight == nil {
		return 1.0
	}
	return *r.Weight
}

// RaterRegistry is the full set of configured raters.
type RaterRegistry struct {
	Raters []RaterConfig `json:"raters" validate:"required,min=1,dive"`
}

// Weights returns the rater weight table used by score aggregation.
func (r RaterRegistry) Weights() domain.RaterWeights {
	weights := make(domain.RaterWeights, len(r.Raters))
	for _, rater := range r.Raters {
		weights[rater.Name] = rater.EffectiveWeight()
	}
	return weights
}

// Names returns the configured rater names in registry order.
func (r RaterRegistry) Names() []string {
	names := make([]string, 0, len(r.Raters))
	for _, rater := range r.Raters {
		names = append(names, rater.Name)
	}
	return names
}

// ModelConfig describes one competing model in the model registry.
type ModelConfig struct {
	// ModelVersion is the exact model identifier sent to the provider. It
	// is also embedded in script artifact names, so aggregation can map
	// scripts back to the model that produced them.
	ModelVersion string `json:"model_version" validate:"required,min=1"`
	// Provider is the display name reported on the leaderboard.
	Provider string `json:"provider" validate:"required,min=1"`
	// QueryFunction selects the provider backend for generation.
	QueryFunction string `json:"query_function" validate:"required,oneof=query_openai query_anthropic query_gemini"`
}

// ModelRegistry is the full set of competing models.
type ModelRegistry struct {
	Models []ModelConfig `json:"models" validate:"required,min=1,dive"`
}

// Providers returns the model-to-provider display table used when
// assembling leaderboard entries.
func (m ModelRegistry) Providers() domain.ModelProviders {
	providers := make(domain.ModelProviders, len(m.Models))
	for _, model := range m.Models {
		providers[model.ModelVersion] = model.Provider
	}
	return providers
}

// LoadRaterRegistry reads and validates the rater registry at path. Any
// failure is fatal for the run; a half-loaded registry would silently
// misweight the leaderboard.
func LoadRaterRegistry(path string) (*RaterRegistry, error) {
	var registry RaterRegistry
	if err := loadJSON(path, &registry); err != nil {
		return nil, fmt.Errorf("rater registry: %w", err)
	}
	if err := validate.Struct(registry); err != nil {
		return nil, fmt.Errorf("%w: rater registry %s: %v", domain.ErrInvalidConfiguration, path, err)
	}

	seen := make(map[string]struct{}, len(registry.Raters))
	for _, rater := range registry.Raters {
		if _, dup := seen[rater.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rater %q in %s", domain.ErrInvalidConfiguration, rater.Name, path)
		}
		seen[rater.Name] = struct{}{}
	}
	return &registry, nil
}

// LoadModelRegistry reads and validates the model registry at path.
func LoadModelRegistry(path string) (*ModelRegistry, error) {
	var registry ModelRegistry
	if err := loadJSON(path, &registry); err != nil {
		return nil, fmt.Errorf("model registry: %w", err)
	}
	if err := validate.Struct(registry); err != nil {
		return nil, fmt.Errorf("%w: model registry %s: %v", domain.ErrInvalidConfiguration, path, err)
	}

	seen := make(map[string]struct{}, len(registry.Models))
	for _, model := range registry.Models {
		if _, dup := seen[model.ModelVersion]; dup {
			return nil, fmt.Errorf("%w: duplicate model %q in %s", domain.ErrInvalidConfiguration, model.ModelVersion, path)
		}
		seen[model.ModelVersion] = struct{}{}
	}
	return &registry, nil
}

func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfiguration, path, err)
	}
	return nil
}

// RunConfig holds the operational settings for a pipeline run: artifact
// locations, registry paths, and request shaping for provider traffic.
type RunConfig struct {
	// PromptsDir holds the generation prompts fed to competing models.
	PromptsDir string `yaml:"prompts_dir" validate:"required"`
	// RaterPromptsDir holds the rater prompt templates. Kept separate from
	// PromptsDir so templates are never dispatched to the generation
	// matrix as if they were prompts.
	RaterPromptsDir string `yaml:"rater_prompts_dir" validate:"required"`
	// ScriptsDir holds generated script artifacts.
	ScriptsDir string `yaml:"scripts_dir" validate:"required"`
	// RatingsDir holds per-(script, rater) rating artifacts.
	RatingsDir string `yaml:"ratings_dir" validate:"required"`
	// LeaderboardPath is where the ranked leaderboard JSON is written.
	LeaderboardPath string `yaml:"leaderboard_path" validate:"required"`
	// RaterRegistryPath locates the rater registry JSON.
	RaterRegistryPath string `yaml:"rater_registry" validate:"required"`
	// ModelRegistryPath locates the model registry JSON.
	ModelRegistryPath string `yaml:"model_registry" validate:"required"`

	// Concurrency bounds the number of in-flight provider requests per
	// pipeline run.
	Concurrency int `yaml:"concurrency" validate:"omitempty,min=1,max=64"`
	// RequestsPerSecond rate-limits provider traffic across workers.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"omitempty,gt=0"`
	// MaxRetries caps retry attempts for transient provider failures.
	// A pointer so an explicit 0 (retries disabled) is distinguishable
	// from an unset value, which takes the default.
	MaxRetries *int `yaml:"max_retries" validate:"omitempty,min=0,max=10"`
	// RequestTimeoutSeconds bounds a single provider request.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" validate:"omitempty,min=1,max=600"`
	// MaxTokens is the completion budget for generation requests.
	MaxTokens int `yaml:"max_tokens" validate:"omitempty,min=1"`
	// GenerationSystemPrompt is the system prompt sent with every
	// generation request.
	GenerationSystemPrompt string `yaml:"generation_system_prompt"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *RunConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Retries returns the configured retry cap, or the default when unset.
func (c *RunConfig) Retries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// Defaults used when the run config leaves a setting unset.
const (
	DefaultConcurrency           = 4
	DefaultRequestsPerSecond     = 1.0
	DefaultMaxRetries            = 3
	DefaultRequestTimeoutSeconds = 120
)

// DefaultGenerationSystemPrompt steers every competing model toward the
// generation task when the run config does not override it.
const DefaultGenerationSystemPrompt = "You are a helpful assistant, " +
	"skilled in creative writing and generating theatrical scripts."

// applyDefaults fills unset optional settings with their defaults.
func (c *RunConfig) applyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.GenerationSystemPrompt == "" {
		c.GenerationSystemPrompt = DefaultGenerationSystemPrompt
	}
}

// LoadRunConfig reads, defaults, and validates the YAML run configuration
// at path.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("run config: %w: %v", domain.ErrInvalidConfiguration, err)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("run config %s: %w: %v", path, domain.ErrInvalidConfiguration, err)
	}
	cfg.applyDefaults()

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: run config %s: %v", domain.ErrInvalidConfiguration, path, err)
	}
	return &cfg, nil
}
