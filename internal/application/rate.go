package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/callboard-bench/callboard/internal/domain"
	"github.com/callboard-bench/callboard/internal/ports"
)

// ScriptPlaceholder is the token in a rater prompt template that is
// replaced with the script under evaluation.
const ScriptPlaceholder = "{{script_text}}"

// ScriptInput is one generated script submitted for rating.
type ScriptInput struct {
	ID   string
	Text string
}

// TemplateSource loads rater prompt templates by file name.
type TemplateSource interface {
	LoadTemplate(name string) (string, error)
}

// RatingSink persists raw rater responses and reports prior completion.
type RatingSink interface {
	ports.CompletionMarker
	Save(scriptID, raterID, response string) error
}

// RatePipeline submits every script to every configured rater and
// persists each raw response as a rating artifact named
// "{script_id}_rater_{rater_name}". Responses are stored verbatim; score
// extraction happens at aggregation time so a malformed response can be
// inspected and re-rated.
type RatePipeline struct {
	factory   ClientFactory
	templates TemplateSource
	sink      RatingSink
	raters    *RaterRegistry
	cfg       *RunConfig
	metrics   ports.MetricsCollector
}

// NewRatePipeline assembles a rating pipeline. The metrics collector may
// be nil.
func NewRatePipeline(
	factory ClientFactory,
	templates TemplateSource,
	sink RatingSink,
	raters *RaterRegistry,
	cfg *RunConfig,
	metrics ports.MetricsCollector,
) *RatePipeline {
	return &RatePipeline{
		factory:   factory,
		templates: templates,
		sink:      sink,
		raters:    raters,
		cfg:       cfg,
		metrics:   metrics,
	}
}

// raterRunner is one configured rater with its client and resolved prompt
// template, built once per run rather than per script.
type raterRunner struct {
	config   RaterConfig
	client   ports.LLMClient
	template string
}

// Run executes the script-by-rater matrix. Missing templates, templates
// without the script placeholder, and client construction failures are
// fatal; individual rating failures are warnings and the run continues.
func (p *RatePipeline) Run(ctx context.Context, scripts []ScriptInput) (*PipelineResult, error) {
	runners := make([]raterRunner, 0, len(p.raters.Raters))
	for _, rater := range p.raters.Raters {
		provider, err := ProviderForQueryFunction(rater.QueryFunction)
		if err != nil {
			return nil, err
		}
		client, err := p.factory(provider, rater.ModelVersion)
		if err != nil {
			return nil, fmt.Errorf("building client for rater %q: %w", rater.Name, err)
		}
		template, err := p.templates.LoadTemplate(rater.PromptFile)
		if err != nil {
			return nil, fmt.Errorf("%w: rater %q: %v", domain.ErrInvalidConfiguration, rater.Name, err)
		}
		if !strings.Contains(template, ScriptPlaceholder) {
			return nil, fmt.Errorf("%w: rater %q template %s lacks the %s placeholder",
				domain.ErrInvalidConfiguration, rater.Name, rater.PromptFile, ScriptPlaceholder)
		}
		runners = append(runners, raterRunner{config: rater, client: client, template: template})
	}

	result := &PipelineResult{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, script := range scripts {
		for _, runner := range runners {
			key := script.ID + domain.RaterSeparator + runner.config.Name
			if p.sink.Completed(key) {
				result.Skipped++
				continue
			}

			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				prompt := strings.ReplaceAll(runner.template, ScriptPlaceholder, script.Text)
				response, err := runner.client.Complete(ctx, prompt, nil)
				if err == nil {
					err = p.sink.Save(script.ID, runner.config.Name, response)
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					result.Warnings = append(result.Warnings, domain.Warningf(key,
						"rating failed: %v", err))
					p.count("ratings_collected_total", "error")
					return nil
				}
				result.Completed++
				p.count("ratings_collected_total", "success")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func (p *RatePipeline) count(metric, status string) {
	if p.metrics != nil {
		p.metrics.RecordCounter(metric, 1, map[string]string{"status": status})
	}
}
