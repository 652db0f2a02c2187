// Package llm provides a unified interface for the LLM providers used to
// generate and rate theatrical scripts, with built-in support for rate
// limiting, retries, timeouts, metrics, and tracing.
//
// Providers (OpenAI, Anthropic, Google) are abstracted behind the CoreLLM
// interface and composed with middleware, so the pipelines can switch
// providers or add operational features without changing caller code.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-5",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(1, 1),
//	        llm.RetryMiddleware(3, time.Second, 30*time.Second),
//	    },
//	})
//	script, err := client.Complete(ctx, prompt, map[string]any{"system": sys})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/callboard-bench/callboard/internal/ports"
)

// CoreLLM defines the minimal interface that LLM providers implement.
// Middleware wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text along with input and output token counts.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM implementation to add cross-cutting
// functionality such as rate limiting or retries without modifying
// provider logic.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds all configuration options for creating an LLM client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use for requests.
	Model string

	// BaseURL overrides the default API endpoint. Leave empty for the
	// provider default.
	BaseURL string

	// Timeout sets the maximum duration for individual requests.
	// Zero means no client-level timeout.
	Timeout time.Duration

	// Middleware is applied in the order specified, the first entry
	// being the outermost wrapper.
	Middleware []Middleware
}

// providerFactories maps provider type identifiers to their constructors.
// Selection is an explicit static mapping; provider routines are never
// looked up by name at runtime.
var providerFactories = map[string]func(ClientConfig) (CoreLLM, error){
	ProviderOpenAI:    newOpenAIProvider,
	ProviderAnthropic: newAnthropicProvider,
	ProviderGoogle:    newGoogleProvider,
}

// Providers returns the supported provider type identifiers.
func Providers() []string {
	names := make([]string, 0, len(providerFactories))
	for name := range providerFactories {
		names = append(names, name)
	}
	return names
}

// Client implements ports.LLMClient by delegating to a middleware-wrapped
// provider.
type Client struct {
	core CoreLLM
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient creates an LLM client for the given provider type, assembling
// the middleware chain and validating configuration before returning a
// ready-to-use instance.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", providerType, err)
	}

	// Apply middleware in reverse order so the first entry is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt to the LLM and returns the response text,
// discarding token usage information.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt to the LLM and additionally returns the
// input and output token counts for usage tracking.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// GetModel returns the configured model name from the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }
