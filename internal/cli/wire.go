package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/claimsight/claimsight/internal/cache"
	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/ledger"
	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/model"
	"github.com/claimsight/claimsight/internal/retrieval"
	"github.com/claimsight/claimsight/internal/workflow"
)

// loadConfig builds the effective configuration: defaults, then the config
// file, then CLAIMSIGHT_* environment variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if file := viper.ConfigFileUsed(); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies CLAIMSIGHT_* variables read through viper.
func applyEnvOverrides(cfg *model.Config) {
	if v := viper.GetString("retrieval_url"); v != "" {
		cfg.Retrieval.URL = v
	}
	if v := viper.GetString("retrieval_api_key"); v != "" {
		cfg.Retrieval.APIKey = v
	}
	if v := viper.GetString("collection"); v != "" {
		cfg.Retrieval.Collection = v
	}
	if v := viper.GetString("embed_url"); v != "" {
		cfg.Retrieval.EmbedURL = v
	}
	if v := viper.GetString("embed_model"); v != "" {
		cfg.Retrieval.EmbedModel = v
	}
	if v := viper.GetString("llm_provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm_model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("ledger_path"); v != "" {
		cfg.Ledger.Path = v
	}
}

// resolveAPIKeys pulls provider credentials from the environment.
func resolveAPIKeys(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	// The embedder speaks the OpenAI embeddings API regardless of the
	// reasoning provider
	if cfg.Retrieval.EmbedAPIKey == "" {
		cfg.Retrieval.EmbedAPIKey = cfg.LLM.APIKey
	}
	if cfg.Retrieval.EmbedAPIKey == "" {
		cfg.Retrieval.EmbedAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	return nil
}

// buildGateway assembles the retrieval side: rate limiter, embedder, the
// Qdrant gateway, and the cache decorator when caching is enabled.
func buildGateway(cfg *model.Config) (retrieval.Gateway, error) {
	limiter := retrieval.NewLimiter(cfg.Retrieval.RequestsPerSecond, 5)

	embedder, err := retrieval.NewEmbedClient(retrieval.EmbedConfig{
		BaseURL: cfg.Retrieval.EmbedURL,
		APIKey:  cfg.Retrieval.EmbedAPIKey,
		Model:   cfg.Retrieval.EmbedModel,
		Timeout: cfg.Retrieval.Timeout,
	}, limiter)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	var gateway retrieval.Gateway = retrieval.NewQdrantGateway(retrieval.QdrantConfig{
		URL:               cfg.Retrieval.URL,
		APIKey:            cfg.Retrieval.APIKey,
		Collection:        cfg.Retrieval.Collection,
		TopK:              cfg.Retrieval.TopK,
		Timeout:           cfg.Retrieval.Timeout,
		RequestsPerSecond: cfg.Retrieval.RequestsPerSecond,
	}, embedder, limiter)

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = filepath.Join(configDir(), "cache")
		}
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
		gateway = retrieval.NewCachedGateway(gateway, store, cfg.Retrieval.Collection, 0)
	}

	return gateway, nil
}

// buildRunner wires the full workflow from configuration. The returned
// cleanup closes the decision ledger when one was opened.
func buildRunner(cfg *model.Config, sink workflow.Sink) (*workflow.Runner, func(), error) {
	loader, err := claims.NewLoader()
	if err != nil {
		return nil, nil, fmt.Errorf("create loader: %w", err)
	}

	reasoner, err := llm.NewReasoner(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, nil, fmt.Errorf("create reasoner: %w", err)
	}

	gateway, err := buildGateway(cfg)
	if err != nil {
		return nil, nil, err
	}
	fetcher := retrieval.NewFetcher(gateway, cfg.Concurrency.SearchWorkers)

	synth, err := workflow.NewSynthesizer(reasoner)
	if err != nil {
		return nil, nil, fmt.Errorf("create synthesizer: %w", err)
	}

	cleanup := func() {}
	var recorder workflow.Recorder
	if cfg.Ledger.Enabled {
		path := ledgerPath(cfg)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			led, err := ledger.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: decision history disabled: %v\n", err)
			} else {
				recorder = led
				cleanup = func() { _ = led.Close() }
			}
		}
	}

	runner := workflow.NewRunner(loader, workflow.NewQueryGenerator(reasoner), fetcher, synth, recorder, sink)
	return runner, cleanup, nil
}

// ledgerPath resolves the decision history database location.
func ledgerPath(cfg *model.Config) string {
	if cfg.Ledger.Path != "" {
		return cfg.Ledger.Path
	}
	return filepath.Join(configDir(), "history.db")
}
