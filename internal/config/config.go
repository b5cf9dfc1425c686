package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address            string `yaml:"address"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Backend string        `yaml:"backend"`
	Dir     string        `yaml:"dir"`
	Qdrant  *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig configures the embedding model client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// GeneratorConfig configures the answer generation model client.
type GeneratorConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxTokens   int    `yaml:"max_tokens"`
	// ReducedPrecision asks the serving backend for its quantized variant of
	// the model. Deployment-time knob; never changes the API contract.
	ReducedPrecision bool `yaml:"reduced_precision"`
	// Multilingual marks the generator as competent in Hindi and Marathi,
	// enabling the no-translate fallback when translation is unavailable.
	Multilingual bool `yaml:"multilingual"`
}

// TranslatorConfig configures the translation service client.
type TranslatorConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	CacheSize   int    `yaml:"cache_size"`
}

// RetrievalConfig configures retrieval breadth.
type RetrievalConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
}

// ChunkerConfig configures how documents are split at ingestion time.
type ChunkerConfig struct {
	SentencesPerChunk int `yaml:"sentences_per_chunk"`
	OverlapSentences  int `yaml:"overlap_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LogLevel   string           `yaml:"log_level"`
	Server     ServerConfig     `yaml:"server"`
	Index      IndexConfig      `yaml:"index"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Translator TranslatorConfig `yaml:"translator"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
}

// Load reads a config from the specified path. A missing file yields the
// built-in defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "file"
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "data/vector_store"
	}
	if cfg.Index.Qdrant != nil {
		if cfg.Index.Qdrant.Collection == "" {
			cfg.Index.Qdrant.Collection = "legal_chunks"
		}
		if cfg.Index.Qdrant.TimeoutSecs == 0 {
			cfg.Index.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "http://localhost:8080/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "EMBEDDER_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "paraphrase-multilingual-minilm-l12-v2"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "http://localhost:8081/v1"
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "GENERATOR_API_KEY"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "flan-t5-small"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 256
	}
	if cfg.Translator.BaseURL == "" {
		cfg.Translator.BaseURL = "http://localhost:5000"
	}
	if cfg.Translator.TimeoutSecs == 0 {
		cfg.Translator.TimeoutSecs = 20
	}
	if cfg.Translator.CacheSize == 0 {
		cfg.Translator.CacheSize = 1024
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = 5
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Chunker.OverlapSentences < 0 {
		cfg.Chunker.OverlapSentences = 0
	}
}
