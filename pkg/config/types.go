package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent seekchat configuration stored as
// config.toml in the .seekchat/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	LLM         LLMConfig         `toml:"llm"`
	Chat        ChatConfig        `toml:"chat"`
	Completion  CompletionConfig  `toml:"completion"`
	Storage     StorageConfig     `toml:"storage"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Query       QueryConfig       `toml:"query"`
}

// LLMConfig holds the chat completions endpoint settings shared by chat and
// query.
type LLMConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// ChatConfig holds settings for the interactive conversation.
type ChatConfig struct {
	Temperature  float64 `toml:"temperature"`
	MaxTokens    int     `toml:"max_tokens,omitempty"`
	SystemPrompt string  `toml:"system_prompt,omitempty"`
	Render       bool    `toml:"render"`
}

// CompletionConfig holds settings for single-prompt completions made while
// answering document queries.
type CompletionConfig struct {
	Temperature  float64 `toml:"temperature"`
	MaxTokens    int     `toml:"max_tokens,omitempty"`
	SystemPrompt string  `toml:"system_prompt,omitempty"`
}

// StorageConfig holds local storage settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// QueryConfig holds document query settings.
type QueryConfig struct {
	DataDir   string `toml:"data_dir,omitempty"`
	TopK      int    `toml:"top_k,omitempty"`
	Streaming bool   `toml:"streaming"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for %s: %q is not a non-negative integer", name, v)
			}
			*field(c) = n
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if f < 0 || f > 2 {
				return fmt.Errorf("invalid value for %s: %g is outside [0, 2]", name, f)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"llm.base_url": stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"llm.model":    stringKey(func(c *Config) *string { return &c.LLM.Model }),

	"chat.temperature":   floatKey("chat.temperature", func(c *Config) *float64 { return &c.Chat.Temperature }),
	"chat.max_tokens":    intKey("chat.max_tokens", func(c *Config) *int { return &c.Chat.MaxTokens }),
	"chat.system_prompt": stringKey(func(c *Config) *string { return &c.Chat.SystemPrompt }),
	"chat.render":        boolKey("chat.render", func(c *Config) *bool { return &c.Chat.Render }),

	"completion.temperature":   floatKey("completion.temperature", func(c *Config) *float64 { return &c.Completion.Temperature }),
	"completion.max_tokens":    intKey("completion.max_tokens", func(c *Config) *int { return &c.Completion.MaxTokens }),
	"completion.system_prompt": stringKey(func(c *Config) *string { return &c.Completion.SystemPrompt }),

	"storage.sqlite_path": stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),

	"vector_store.provider": stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":   stringKey(func(c *Config) *string { return &c.VectorStore.Target }),

	"embedding.provider": stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":   stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":    stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},

	"query.data_dir":  stringKey(func(c *Config) *string { return &c.Query.DataDir }),
	"query.top_k":     intKey("query.top_k", func(c *Config) *int { return &c.Query.TopK }),
	"query.streaming": boolKey("query.streaming", func(c *Config) *bool { return &c.Query.Streaming }),
}
