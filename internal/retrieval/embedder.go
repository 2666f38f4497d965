package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Embedder converts query text into the vector the policy index searches by.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbedConfig configures the OpenAI-compatible embeddings client.
type EmbedConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// EmbedClient is an OpenAI-compatible embeddings client.
type EmbedClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	limiter *Limiter
}

// NewEmbedClient creates an embeddings client using the provided configuration.
func NewEmbedClient(cfg EmbedConfig, limiter *Limiter) (*EmbedClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embeddings API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &EmbedClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// Embed returns an embedding vector for the given text.
func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float64, error) {
	url := fmt.Sprintf("%s/embeddings", c.baseURL)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	body := struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: c.model}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return out.Data[0].Embedding, nil
}
