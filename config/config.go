package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ragchat tool. Every tunable the
// pipeline depends on has a named field here; nothing is read from
// module-level globals.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Session   SessionConfig   `yaml:"session"`
	Memory    MemoryConfig    `yaml:"memory"`
	Store     StoreConfig     `yaml:"store"`
	Seed      SeedConfig      `yaml:"seed"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP backend settings. Addr is where `ragchat serve`
// listens; URL, when set, makes the chat session talk to a remote backend
// instead of running the pipeline in-process.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	URL  string `yaml:"url"`
}

// ModelConfig holds generation model settings. Options are passed through
// to the backend unexamined.
type ModelConfig struct {
	Name    string         `yaml:"name"`
	BaseURL string         `yaml:"base_url"`
	Options map[string]any `yaml:"options"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "ollama", "openai", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// SessionConfig holds dialog session configuration.
type SessionConfig struct {
	HistoryTail     int `yaml:"history_tail"`     // turns included in the prompt
	StartupRetries  int `yaml:"startup_retries"`  // health probe attempts before giving up
	StartupDelaySec int `yaml:"startup_delay_sec"` // delay between probe attempts
}

// MemoryConfig holds the write-policy heuristics. The phrase lists are
// data so they can be swapped without touching orchestration logic.
type MemoryConfig struct {
	MinAnswerLen   int      `yaml:"min_answer_len"`
	LeakagePhrases []string `yaml:"leakage_phrases"`
	GreetingWords  []string `yaml:"greeting_words"`
}

// StoreConfig holds knowledge store settings.
type StoreConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// SeedConfig holds seed-knowledge file matching patterns.
type SeedConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
			URL:  "",
		},
		Model: ModelConfig{
			Name:    "tinyllama:1.1b",
			BaseURL: "http://localhost:11434",
			Options: map[string]any{
				"temperature": 0.7,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 768,
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Session: SessionConfig{
			HistoryTail:     4,
			StartupRetries:  5,
			StartupDelaySec: 2,
		},
		Memory: MemoryConfig{
			MinAnswerLen: 10,
			LeakagePhrases: []string{
				"context:",
				"question:",
				"answer:",
				"i don't know",
				"i do not know",
				"no information found",
				"knowledge base context",
			},
			GreetingWords: []string{
				"hello", "hi", "hey",
				"привет", "здравствуй", "здравствуйте",
			},
		},
		Store: StoreConfig{
			Path:       "",
			Collection: "rag_memory",
		},
		Seed: SeedConfig{
			Includes: []string{"**/*.md", "**/*.txt"},
			Excludes: []string{"**/node_modules/**", "**/.git/**", "**/.ragchat/**"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragchat.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragchat.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ragchat", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// KnowledgeDBPath returns the path to the knowledge database. The
// configured store path wins; otherwise the database lives under
// .ragchat in dir.
func (c *Config) KnowledgeDBPath(dir string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(dir, ".ragchat", "knowledge.db")
}

// EnsureDataDir ensures the .ragchat directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".ragchat"), 0755)
}
