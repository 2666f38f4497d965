package llm

import (
	"context"

	"github.com/claimsight/claimsight/internal/model"
)

// Reasoner defines the interface to the external reasoning collaborator.
// Implementations must be safe for concurrent use from multiple runs.
type Reasoner interface {
	// Name returns the provider name
	Name() string

	// Infer sends an instruction prompt and returns the model's reply
	Infer(ctx context.Context, req InferRequest) (*InferResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// InferRequest contains one reasoning call.
// The caller renders its instruction template into Prompt; the expected
// response shape is enforced by the caller when it parses the reply.
type InferRequest struct {
	// System sets the collaborator's role for this call
	System string

	// Prompt is the rendered instruction template
	Prompt string

	// Model overrides the configured model when non-empty
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0
	Temperature float32

	// ForceJSON requests strict JSON output where the provider supports it
	// (OpenAI response_format, Ollama format). Other providers rely on the
	// prompt alone.
	ForceJSON bool
}

// InferResponse contains the reasoning collaborator's reply
type InferResponse struct {
	// Text is the raw reply content
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds reasoning collaborator configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, proxies)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; low values keep replies close to the text
	Temperature float32
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "",
		Timeout:     30,
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      modelConfig.APIKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
	}
}
