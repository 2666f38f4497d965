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

// QdrantConfig configures the Qdrant REST gateway.
type QdrantConfig struct {
	URL               string
	APIKey            string
	Collection        string
	TopK              int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// QdrantGateway is a minimal REST client to a Qdrant policy collection.
// Query text is embedded through the configured Embedder before search.
type QdrantGateway struct {
	url        string
	apiKey     string
	collection string
	topK       int
	client     *http.Client
	embedder   Embedder
	limiter    *Limiter
}

// NewQdrantGateway creates a gateway to the policy collection.
func NewQdrantGateway(cfg QdrantConfig, embedder Embedder, limiter *Limiter) *QdrantGateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	if limiter == nil {
		limiter = NewLimiter(cfg.RequestsPerSecond, 5)
	}
	return &QdrantGateway{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		topK:       topK,
		client:     &http.Client{Timeout: timeout},
		embedder:   embedder,
		limiter:    limiter,
	}
}

// SemanticSearch embeds the query and returns the top scoring passages.
func (g *QdrantGateway) SemanticSearch(ctx context.Context, query string) ([]Passage, error) {
	vector, err := g.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        g.topK,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", g.url, g.collection)
	if err := g.postJSON(ctx, url, body, &resp); err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(resp.Result))
	for _, r := range resp.Result {
		passages = append(passages, passageFromPayload(r.Payload, r.Score))
	}
	return passages, nil
}

// LookupMetadata returns passages whose payload field matches the given value.
func (g *QdrantGateway) LookupMetadata(ctx context.Context, key, value string) ([]Passage, error) {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": key, "match": map[string]any{"value": value}},
			},
		},
		"with_payload": true,
		"limit":        g.topK,
	}

	var resp struct {
		Result struct {
			Points []struct {
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/scroll", g.url, g.collection)
	if err := g.postJSON(ctx, url, body, &resp); err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		passages = append(passages, passageFromPayload(p.Payload, 0))
	}
	return passages, nil
}

// Ping checks that the collection is reachable.
func (g *QdrantGateway) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", g.url, g.collection)
	if err := g.limiter.Wait(ctx, url); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if g.apiKey != "" {
		req.Header.Set("api-key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collection %s unavailable: %s", g.collection, resp.Status)
	}
	return nil
}

// postJSON sends a JSON body and decodes the JSON response into out.
func (g *QdrantGateway) postJSON(ctx context.Context, url string, body, out any) error {
	if err := g.limiter.Wait(ctx, url); err != nil {
		return err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("api-key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant POST %s failed (%s): %s", url, resp.Status, strings.TrimSpace(string(payload)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// passageFromPayload maps a Qdrant point payload onto a Passage.
func passageFromPayload(payload map[string]any, score float64) Passage {
	p := Passage{Score: score}
	if v, ok := payload["document_id"].(string); ok {
		p.DocumentID = v
	}
	if v, ok := payload["text"].(string); ok {
		p.Text = v
	}
	return p
}
