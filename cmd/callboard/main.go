// Command callboard runs the theatrical-script benchmark: generating
// scripts from competing models, collecting rater scores, and building the
// weighted leaderboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/time/rate"

	"github.com/callboard-bench/callboard/infrastructure/llm"
	"github.com/callboard-bench/callboard/infrastructure/middleware"
	"github.com/callboard-bench/callboard/infrastructure/storage"
	"github.com/callboard-bench/callboard/internal/application"
	"github.com/callboard-bench/callboard/internal/domain"
	"github.com/callboard-bench/callboard/internal/ports"
)

// apiKeyEnv maps each provider backend to the environment variable holding
// its API key.
var apiKeyEnv = map[string]string{
	application.ProviderOpenAI:    "OPENAI_API_KEY",
	application.ProviderAnthropic: "ANTHROPIC_API_KEY",
	application.ProviderGoogle:    "GOOGLE_API_KEY",
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: callboard <command> [flags]

Commands:
  generate     generate scripts for every prompt with every competing model
  rate         submit every generated script to every configured rater
  leaderboard  aggregate rating artifacts into the ranked leaderboard

Flags:
  -config path   run configuration YAML (default "run.yaml")
`)
}

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "run.yaml", "path to the run configuration YAML")
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := application.LoadRunConfig(*configPath)
	if err != nil {
		log.Fatalf("callboard: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "generate":
		err = runGenerate(ctx, cfg)
	case "rate":
		err = runRate(ctx, cfg)
	case "leaderboard":
		err = runLeaderboard(ctx, cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("callboard %s: %v", command, err)
	}
}

// clientFactory builds provider clients with the full operational
// middleware chain: rate limiting outermost so retries also respect the
// request budget, then retry, timeout, metrics, and tracing.
func clientFactory(cfg *application.RunConfig, metrics ports.MetricsCollector) application.ClientFactory {
	return func(provider, model string) (ports.LLMClient, error) {
		envVar, ok := apiKeyEnv[provider]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", provider)
		}
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("provider %s requires %s to be set", provider, envVar)
		}

		return llm.NewClient(provider, llm.ClientConfig{
			APIKey:  apiKey,
			Model:   model,
			Timeout: cfg.RequestTimeout(),
			Middleware: []llm.Middleware{
				llm.RateLimitMiddleware(rate.Limit(cfg.RequestsPerSecond), 1),
				llm.RetryMiddleware(cfg.Retries(), time.Second, 30*time.Second),
				llm.TimeoutMiddleware(cfg.RequestTimeout()),
				llm.MetricsMiddleware(provider, metrics),
				llm.TracingMiddleware(provider),
			},
		})
	}
}

func runGenerate(ctx context.Context, cfg *application.RunConfig) error {
	models, err := application.LoadModelRegistry(cfg.ModelRegistryPath)
	if err != nil {
		return err
	}

	prompts, warnings, err := storage.NewPromptStore(cfg.PromptsDir).List()
	if err != nil {
		return err
	}
	printWarnings(warnings)
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts found in %s", cfg.PromptsDir)
	}

	inputs := make([]application.PromptInput, 0, len(prompts))
	for _, p := range prompts {
		inputs = append(inputs, application.PromptInput{ID: p.ID, Text: p.Text})
	}

	metrics := middleware.NewPrometheusMetrics()
	pipeline := application.NewGeneratePipeline(
		clientFactory(cfg, metrics),
		storage.NewScriptStore(cfg.ScriptsDir),
		models,
		cfg,
		metrics,
	)

	result, err := pipeline.Run(ctx, inputs)
	if result != nil {
		printWarnings(result.Warnings)
		fmt.Printf("Generated %d scripts (%d skipped, %d failed)\n",
			result.Completed, result.Skipped, result.Failed)
	}
	return err
}

func runRate(ctx context.Context, cfg *application.RunConfig) error {
	raters, err := application.LoadRaterRegistry(cfg.RaterRegistryPath)
	if err != nil {
		return err
	}

	scripts, warnings, err := storage.NewScriptStore(cfg.ScriptsDir).List()
	if err != nil {
		return err
	}
	printWarnings(warnings)
	if len(scripts) == 0 {
		return fmt.Errorf("no scripts found in %s; run 'callboard generate' first", cfg.ScriptsDir)
	}

	inputs := make([]application.ScriptInput, 0, len(scripts))
	for _, s := range scripts {
		inputs = append(inputs, application.ScriptInput{ID: s.ID, Text: s.Text})
	}

	metrics := middleware.NewPrometheusMetrics()
	pipeline := application.NewRatePipeline(
		clientFactory(cfg, metrics),
		storage.NewPromptStore(cfg.RaterPromptsDir),
		storage.NewRatingStore(cfg.RatingsDir),
		raters,
		cfg,
		metrics,
	)

	result, err := pipeline.Run(ctx, inputs)
	if result != nil {
		printWarnings(result.Warnings)
		fmt.Printf("Collected %d ratings (%d skipped, %d failed)\n",
			result.Completed, result.Skipped, result.Failed)
	}
	return err
}

func runLeaderboard(ctx context.Context, cfg *application.RunConfig) error {
	raters, err := application.LoadRaterRegistry(cfg.RaterRegistryPath)
	if err != nil {
		return err
	}
	models, err := application.LoadModelRegistry(cfg.ModelRegistryPath)
	if err != nil {
		return err
	}

	engine := application.NewEngine(
		storage.NewRatingStore(cfg.RatingsDir),
		storage.NewLeaderboardWriter(cfg.LeaderboardPath),
		raters,
		models,
		middleware.NewPrometheusMetrics(),
	)

	ranked, warnings, err := engine.BuildLeaderboard(ctx)
	printWarnings(warnings)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecords) {
			return fmt.Errorf("%w in %s; run 'callboard rate' first", err, cfg.RatingsDir)
		}
		return err
	}

	printLeaderboard(ranked)
	fmt.Printf("\nLeaderboard written to %s\n", cfg.LeaderboardPath)
	return nil
}

// printLeaderboard renders the ranked results as an aligned table.
func printLeaderboard(results []domain.ModelResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tMODEL\tPROVIDER\tAVG SCORE\tTOTAL\tSCRIPTS\tRATERS")
	for i, result := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%d\t%d\n",
			i+1,
			result.ModelVersion,
			result.Provider,
			result.AverageScore,
			result.TotalScore,
			result.ScriptCount,
			result.RatersUsedCount,
		)
	}
	w.Flush()
}

func printWarnings(warnings []domain.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning.String())
	}
}
