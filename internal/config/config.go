// Package config holds runtime configuration for the detection collaborator.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds detection settings. Fields may be loaded from a JSON file
// and overridden by environment variables (optionally via a .env file).
type Config struct {
	// OllamaHost is the base URL of the Ollama server.
	OllamaHost string `json:"ollama_host"`
	// Model is the vision model used for detection.
	Model string `json:"model"`
	// DefaultTarget is the pre-filled target description.
	DefaultTarget string `json:"default_target"`
	// TimeoutSeconds bounds a single detection request.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Default returns a configuration with standard defaults.
func Default() *Config {
	return &Config{
		OllamaHost:     "http://localhost:11434",
		Model:          "llava",
		DefaultTarget:  "cells",
		TimeoutSeconds: 300,
	}
}

// LoadFromFile loads configuration from a JSON file, starting from
// defaults for any unset field.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Validate()
	return cfg, nil
}

// Load returns the effective configuration: defaults, then an optional
// .env file, then process environment variables.
func Load() *Config {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := Default()
	cfg.ApplyEnv()
	cfg.Validate()
	return cfg
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.OllamaHost = v
	}
	if v := os.Getenv("CELLBRUSH_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("CELLBRUSH_TARGET"); v != "" {
		c.DefaultTarget = v
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() {
	if c.OllamaHost == "" {
		c.OllamaHost = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "llava"
	}
	if c.DefaultTarget == "" {
		c.DefaultTarget = "cells"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 300
	}
}
