// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the full jobdex configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Search    SearchConfig    `yaml:"search"`
	Embed     EmbedConfig     `yaml:"embed"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Host       string `yaml:"host"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// ChunkingConfig holds content chunking settings.
type ChunkingConfig struct {
	Size      int `yaml:"size"`
	Overlap   int `yaml:"overlap"`
	Tolerance int `yaml:"tolerance"`
}

// SearchConfig holds hybrid search settings.
type SearchConfig struct {
	TextWeight   float64 `yaml:"text_weight"`
	VectorWeight float64 `yaml:"vector_weight"`
	MaxResults   int     `yaml:"max_results"`
}

// EmbedConfig holds embedding orchestration settings.
type EmbedConfig struct {
	BatchSize          int `yaml:"batch_size"`
	PoolSize           int `yaml:"pool_size"`
	RetryMaxAttempts   int `yaml:"retry_max_attempts"`
	RetryBaseDelayMs   int `yaml:"retry_base_delay_ms"`
	BreakerThreshold   int `yaml:"breaker_threshold"`
	BreakerCooldownSec int `yaml:"breaker_cooldown_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. References of the form
// ${VAR} are substituted from the environment before parsing, so API
// keys can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath()
	}
	if c.Embedding.Host == "" {
		c.Embedding.Host = "http://localhost:11434/v1"
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = "none"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "embeddinggemma"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Chunking.Size <= 0 {
		c.Chunking.Size = 1200
	}
	if c.Chunking.Overlap <= 0 {
		c.Chunking.Overlap = 200
	}
	if c.Chunking.Tolerance <= 0 {
		c.Chunking.Tolerance = 200
	}
	if c.Search.TextWeight <= 0 && c.Search.VectorWeight <= 0 {
		c.Search.TextWeight = 0.5
		c.Search.VectorWeight = 0.5
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 10
	}
	if c.Embed.BatchSize <= 0 {
		c.Embed.BatchSize = 16
	}
	if c.Embed.PoolSize <= 0 {
		c.Embed.PoolSize = 4
	}
	if c.Embed.RetryMaxAttempts <= 0 {
		c.Embed.RetryMaxAttempts = 3
	}
	if c.Embed.RetryBaseDelayMs <= 0 {
		c.Embed.RetryBaseDelayMs = 500
	}
	if c.Embed.BreakerThreshold <= 0 {
		c.Embed.BreakerThreshold = 5
	}
	if c.Embed.BreakerCooldownSec <= 0 {
		c.Embed.BreakerCooldownSec = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be smaller than chunking.size, got %d >= %d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Search.TextWeight < 0 || c.Search.VectorWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Search.TextWeight+c.Search.VectorWeight <= 0 {
		return fmt.Errorf("at least one search weight must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

var envVarRe = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnvVars substitutes ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarRe.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarRe.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// defaultStoragePath places the database under the user's home
// directory, falling back to the working directory.
func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jobdex"
	}
	return filepath.Join(home, ".jobdex")
}
