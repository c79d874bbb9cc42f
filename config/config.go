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

// Package config loads the service configuration from a YAML file with
// sensible defaults for every field, so an empty (or absent) file yields a
// runnable local setup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
	// InMemory runs the store without disk persistence. Queued jobs do not
	// survive a restart in this mode.
	InMemory bool `yaml:"inMemory"`
}

type WorkerConfig struct {
	PoolSize      int `yaml:"poolSize"`
	JobTimeoutSec int `yaml:"jobTimeoutSec"`
}

// JobTimeout returns the per-job processing deadline.
func (w WorkerConfig) JobTimeout() time.Duration {
	return time.Duration(w.JobTimeoutSec) * time.Second
}

type EmbeddingConfig struct {
	// Provider selects the embedder implementation: "openai" for any
	// OpenAI-compatible endpoint, "mock" for a deterministic local stand-in.
	Provider string `yaml:"provider"`
	Host     string `yaml:"host"`
	Model    string `yaml:"model"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Worker    WorkerConfig    `yaml:"worker"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Database: DatabaseConfig{
			Path: "./data/embedq",
		},
		Worker: WorkerConfig{
			PoolSize:      4,
			JobTimeoutSec: 300,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Host:     "http://localhost:11434",
			Model:    "embeddinggemma",
		},
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
// A missing file is not an error; it returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero-valued fields after decoding, so a partial file
// only overrides what it names.
func (c *Config) applyDefaults() {
	def := Default()

	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Worker.PoolSize == 0 {
		c.Worker.PoolSize = def.Worker.PoolSize
	}
	if c.Worker.JobTimeoutSec == 0 {
		c.Worker.JobTimeoutSec = def.Worker.JobTimeoutSec
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
	if c.Embedding.Host == "" {
		c.Embedding.Host = def.Embedding.Host
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = def.Embedding.Model
	}
}

// Validate checks the configuration for values that cannot be defaulted
// around.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Worker.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1, got %d", c.Worker.PoolSize)
	}
	if c.Worker.JobTimeoutSec < 1 {
		return fmt.Errorf("job timeout must be at least 1 second, got %d", c.Worker.JobTimeoutSec)
	}

	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown embedding provider %q (want openai or mock)", c.Embedding.Provider)
	}

	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("database path is required when not running in memory")
	}

	return nil
}
