// Package config handles Bella configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/bella/config.yaml, /etc/bella/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "bella", "config.yaml"))
	}

	paths = append(paths, "/etc/bella/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Bella configuration.
type Config struct {
	Listen       ListenConfig       `yaml:"listen"`
	OrderAPI     OrderAPIConfig     `yaml:"order_api"`
	Database     DatabaseConfig     `yaml:"database"`
	Model        ModelConfig        `yaml:"model"`
	Conversation ConversationConfig `yaml:"conversation"`
	LogLevel     string             `yaml:"log_level"`
}

// ListenConfig defines the chat API server settings.
type ListenConfig struct {
	Address        string   `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // Websocket origins; empty means same-origin only
}

// OrderAPIConfig defines the order service connection settings.
type OrderAPIConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"` // Default 30
}

// Timeout returns the request timeout as a duration.
func (c OrderAPIConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// DatabaseConfig defines the menu knowledge base settings.
type DatabaseConfig struct {
	// Path is the SQLite database file holding the menu tables.
	Path string `yaml:"path"`
	// SeedFile optionally points to a .sql script loaded when the
	// database is empty. When unset, the embedded default menu is used.
	SeedFile string `yaml:"seed_file"`
}

// ModelConfig defines the language model provider settings.
type ModelConfig struct {
	Provider  string `yaml:"provider"` // ollama, openai
	Name      string `yaml:"name"`
	OllamaURL string `yaml:"ollama_url"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"` // Override for OpenAI-compatible endpoints
}

// ConversationConfig tunes the turn controller.
type ConversationConfig struct {
	// MaxToolRounds caps model/tool iterations within one turn (default 10).
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// HistoryExchanges is how many past user/assistant exchanges are
	// replayed to the model each turn (default 10).
	HistoryExchanges int `yaml:"history_exchanges"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		OrderAPI: OrderAPIConfig{
			URL:        "http://localhost:8000",
			TimeoutSec: 30,
		},
		Database: DatabaseConfig{
			Path: "beauty_pizza.db",
		},
		Model: ModelConfig{
			Provider:  "ollama",
			Name:      "qwen3:4b",
			OllamaURL: "http://localhost:11434",
		},
		Conversation: ConversationConfig{
			MaxToolRounds:    10,
			HistoryExchanges: 10,
		},
	}
}
