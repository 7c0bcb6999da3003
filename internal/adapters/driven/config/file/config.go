// Package file provides file-based configuration loading. Settings
// live in a TOML file under the ragline config directory, with API
// keys taken from the environment so they stay out of the file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// Default configuration values.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 5
	DefaultTokenLimit   = 4000
	DefaultCollection   = "multimodal_documents"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is where databases live. Empty means ~/.ragline/data.
	DataDir string `toml:"data_dir"`

	// Collection names the vector index collection.
	Collection string `toml:"collection"`

	Chunking     ChunkingConfig     `toml:"chunking"`
	Retrieval    RetrievalConfig    `toml:"retrieval"`
	Clip         ClipConfig         `toml:"clip"`
	Fallback     FallbackConfig     `toml:"fallback"`
	LLM          LLMConfig          `toml:"llm"`
	Conversation ConversationConfig `toml:"conversation"`
}

// ChunkingConfig controls the text sliding window.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalConfig controls similarity search.
type RetrievalConfig struct {
	TopK          int  `toml:"top_k"`
	IncludeImages bool `toml:"include_images"`
}

// ClipConfig points at the primary embedding server.
type ClipConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// FallbackConfig controls the degraded embedding path.
type FallbackConfig struct {
	Enabled    bool   `toml:"enabled"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// LLMConfig selects and tunes the generation backend.
type LLMConfig struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	BaseURL           string  `toml:"base_url"`
	MaxTokens         int     `toml:"max_tokens"`
	Temperature       float64 `toml:"temperature"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
}

// ConversationConfig controls thread behaviour.
type ConversationConfig struct {
	// TokenLimit is the per-thread budget checked before retrieval.
	TokenLimit int `toml:"token_limit"`
}

// Load reads the config file, applying defaults for anything unset.
// A missing file is not an error: defaults apply. If configDir is
// empty, defaults to ~/.ragline.
func Load(configDir string) (*Config, error) {
	cfg := defaults()

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".ragline")
	}

	path := filepath.Join(configDir, "config.toml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = DefaultChunkSize
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = DefaultChunkOverlap
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultTopK
	}
	if cfg.Conversation.TokenLimit == 0 {
		cfg.Conversation.TokenLimit = DefaultTokenLimit
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = string(domain.AIProviderOllama)
	}
}

// LLMSettings converts the LLM section to domain settings, pulling the
// API key for the selected provider from the environment.
func (c *Config) LLMSettings() *domain.LLMSettings {
	settings := &domain.LLMSettings{
		Provider:          domain.AIProvider(c.LLM.Provider),
		Model:             c.LLM.Model,
		BaseURL:           c.LLM.BaseURL,
		MaxTokens:         c.LLM.MaxTokens,
		Temperature:       c.LLM.Temperature,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}

	switch settings.Provider {
	case domain.AIProviderAnthropic:
		settings.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case domain.AIProviderOpenAI:
		settings.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return settings
}

// ClipSettings converts the clip section to domain settings.
func (c *Config) ClipSettings() domain.ClipSettings {
	return domain.ClipSettings{
		BaseURL:    c.Clip.BaseURL,
		Model:      c.Clip.Model,
		Dimensions: c.Clip.Dimensions,
	}
}

// FallbackSettings converts the fallback section to domain settings.
func (c *Config) FallbackSettings() domain.FallbackSettings {
	return domain.FallbackSettings{
		Enabled:    c.Fallback.Enabled,
		BaseURL:    c.Fallback.BaseURL,
		Model:      c.Fallback.Model,
		Dimensions: c.Fallback.Dimensions,
	}
}
