package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIReasoner implements the Reasoner interface for OpenAI models
type OpenAIReasoner struct {
	client *openai.Client
	config Config
}

// NewOpenAIReasoner creates a new OpenAI reasoner
func NewOpenAIReasoner(config Config) (*OpenAIReasoner, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	client := openai.NewClientWithConfig(clientConfig)

	return &OpenAIReasoner{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (r *OpenAIReasoner) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (r *OpenAIReasoner) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := r.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Infer sends a prompt using OpenAI's Chat Completions API
func (r *OpenAIReasoner) Infer(ctx context.Context, req InferRequest) (*InferResponse, error) {
	// Determine model
	model := req.Model
	if model == "" {
		model = r.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini // Default to gpt-4o-mini
	}

	// Determine max tokens
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = r.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = r.config.Temperature
	}

	// Create timeout context
	timeout := time.Duration(r.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Make API call
	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if req.ForceJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := r.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	return &InferResponse{
		Text:       text,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
