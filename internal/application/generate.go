package application

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/callboard-bench/callboard/internal/domain"
	"github.com/callboard-bench/callboard/internal/ports"
)

// ClientFactory builds an LLM client for a provider backend and model.
// The command layer supplies a factory that assembles the full middleware
// chain; tests supply stubs.
type ClientFactory func(provider, model string) (ports.LLMClient, error)

// PromptInput is one generation prompt fed to every competing model.
type PromptInput struct {
	ID   string
	Text string
}

// ScriptSink persists generated scripts and reports prior completion so
// interrupted runs resume without regenerating finished work.
type ScriptSink interface {
	ports.CompletionMarker
	Save(scriptID, text string) error
}

// PipelineResult summarizes one pipeline run. Per-unit failures become
// warnings rather than aborting the run; a single flaky provider call
// should not discard an hour of completed generations.
type PipelineResult struct {
	Completed int
	Skipped   int
	Failed    int
	Warnings  []domain.Warning
}

// GeneratePipeline fans every prompt across every competing model and
// persists each response as a script artifact named
// "{prompt_id}_{model_version}".
type GeneratePipeline struct {
	factory ClientFactory
	sink    ScriptSink
	models  *ModelRegistry
	cfg     *RunConfig
	metrics ports.MetricsCollector
}

// NewGeneratePipeline assembles a generation pipeline. The metrics
// collector may be nil.
func NewGeneratePipeline(
	factory ClientFactory,
	sink ScriptSink,
	models *ModelRegistry,
	cfg *RunConfig,
	metrics ports.MetricsCollector,
) *GeneratePipeline {
	return &GeneratePipeline{
		factory: factory,
		sink:    sink,
		models:  models,
		cfg:     cfg,
		metrics: metrics,
	}
}

// Run executes the prompt-by-model generation matrix. Client construction
// failures are fatal since they indicate misconfiguration; individual
// completion failures are recorded as warnings and the run continues.
func (p *GeneratePipeline) Run(ctx context.Context, prompts []PromptInput) (*PipelineResult, error) {
	clients := make(map[string]ports.LLMClient, len(p.models.Models))
	for _, model := range p.models.Models {
		provider, err := ProviderForQueryFunction(model.QueryFunction)
		if err != nil {
			return nil, err
		}
		client, err := p.factory(provider, model.ModelVersion)
		if err != nil {
			return nil, fmt.Errorf("building client for model %q: %w", model.ModelVersion, err)
		}
		clients[model.ModelVersion] = client
	}

	result := &PipelineResult{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, prompt := range prompts {
		for _, model := range p.models.Models {
			scriptID := prompt.ID + "_" + model.ModelVersion
			if p.sink.Completed(scriptID) {
				result.Skipped++
				continue
			}

			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				options := map[string]any{
					"system":     p.cfg.GenerationSystemPrompt,
					"max_tokens": p.cfg.MaxTokens,
				}
				response, err := clients[model.ModelVersion].Complete(ctx, prompt.Text, options)
				if err == nil {
					err = p.sink.Save(scriptID, response)
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					result.Warnings = append(result.Warnings, domain.Warningf(scriptID,
						"generation failed: %v", err))
					p.count("scripts_generated_total", "error")
					return nil
				}
				result.Completed++
				p.count("scripts_generated_total", "success")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func (p *GeneratePipeline) count(metric, status string) {
	if p.metrics != nil {
		p.metrics.RecordCounter(metric, 1, map[string]string{"status": status})
	}
}
