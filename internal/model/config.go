package model

import "time"

// Config is the complete application configuration
type Config struct {
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Output      OutputConfig      `yaml:"output"`
}

// RetrievalConfig configures the policy retrieval gateway
type RetrievalConfig struct {
	URL               string        `yaml:"url"`                 // Qdrant-compatible endpoint
	APIKey            string        `yaml:"api_key,omitempty"`   // sent as api-key header when set
	Collection        string        `yaml:"collection"`          // policy corpus collection name
	TopK              int           `yaml:"top_k"`               // passages per semantic search
	Timeout           time.Duration `yaml:"timeout"`             // per-request timeout
	RequestsPerSecond float64       `yaml:"requests_per_second"` // 0 disables rate limiting
	EmbedURL          string        `yaml:"embed_url"`           // OpenAI-compatible embeddings endpoint
	EmbedModel        string        `yaml:"embed_model"`
	EmbedAPIKey       string        `yaml:"embed_api_key,omitempty"` // falls back to llm.api_key when empty
}

// LLMConfig configures the reasoning collaborator
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, ollama
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// ConcurrencyConfig bounds parallelism
type ConcurrencyConfig struct {
	SearchWorkers int `yaml:"search_workers"` // concurrent semantic searches within one run
	BatchWorkers  int `yaml:"batch_workers"`  // concurrent claim runs in batch mode
}

// CacheConfig configures retrieval response caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// LedgerConfig configures the decision history database
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose  bool   `yaml:"verbose"`
	JSONPath string `yaml:"json_path,omitempty"`
	Quiet    bool   `yaml:"quiet"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Retrieval: RetrievalConfig{
			URL:               "http://localhost:6333",
			Collection:        "auto_insurance_policies",
			TopK:              3,
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10,
			EmbedURL:          "https://api.openai.com/v1",
			EmbedModel:        "text-embedding-3-small",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     30,
			MaxTokens:   1000,
			Temperature: 0.1,
		},
		Concurrency: ConcurrencyConfig{
			SearchWorkers: 4,
			BatchWorkers:  4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    "",
		},
		Output: OutputConfig{},
	}
}
