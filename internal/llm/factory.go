package llm

import (
	"fmt"
	"strings"
)

// NewReasoner creates a reasoning collaborator based on configuration.
// The workflow cannot run without one, so an empty provider name is an error.
func NewReasoner(config Config) (Reasoner, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIReasoner(config)

	case "anthropic", "claude":
		return NewAnthropicReasoner(config)

	case "ollama":
		return NewOllamaReasoner(config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured (supported: openai, anthropic, ollama)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
