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

// Package config reads credentials and endpoints from the process
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/reviewvec/ai"
)

// Environment keys.
const (
	EnvEmbeddingBackend = "EMBEDDING_BACKEND"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvEmbeddingHost    = "EMBEDDING_HOST"
	EnvEmbeddingModel   = "EMBEDDING_MODEL"
	EnvSink             = "SINK"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvQdrantHost       = "QDRANT_HOST"
	EnvQdrantPort       = "QDRANT_PORT"
	EnvQdrantAPIKey     = "QDRANT_API_KEY"
	EnvQdrantTLS        = "QDRANT_TLS"
	EnvBadgerPath       = "BADGER_PATH"
)

// Sink names.
const (
	SinkBadger   = "badger"
	SinkPostgres = "postgres"
	SinkQdrant   = "qdrant"
)

// DefaultEnvFile is read when no env file is named and it exists.
const DefaultEnvFile = ".env"

// DefaultBadgerPath is the local store directory.
const DefaultBadgerPath = "reviewvec.db"

var (
	// ErrMissingCredential is returned when a required key is not set.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUnknownSink is returned for an unsupported SINK value.
	ErrUnknownSink = errors.New("unknown sink")
)

// Config holds everything the run needs from the environment.
type Config struct {
	EmbeddingBackend string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	EmbeddingHost    string
	EmbeddingModel   string

	Sink         string
	DatabaseURL  string
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantTLS    bool
	BadgerPath   string
}

// LoadEnvFile loads key/value pairs from path into the environment without
// overriding variables that are already set. An empty path loads
// DefaultEnvFile if it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading env file %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		EmbeddingBackend: strings.ToLower(get(EnvEmbeddingBackend, ai.BackendOpenAI)),
		OpenAIAPIKey:     get(EnvOpenAIAPIKey, ""),
		GeminiAPIKey:     get(EnvGeminiAPIKey, ""),
		EmbeddingHost:    get(EnvEmbeddingHost, ""),
		EmbeddingModel:   get(EnvEmbeddingModel, ""),
		Sink:             strings.ToLower(get(EnvSink, SinkBadger)),
		DatabaseURL:      get(EnvDatabaseURL, ""),
		QdrantHost:       get(EnvQdrantHost, ""),
		QdrantAPIKey:     get(EnvQdrantAPIKey, ""),
		BadgerPath:       get(EnvBadgerPath, DefaultBadgerPath),
	}

	if v := get(EnvQdrantPort, ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%s: invalid port %q", EnvQdrantPort, v)
		}
		cfg.QdrantPort = port
	}
	if v := get(EnvQdrantTLS, ""); v != "" {
		tls, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvQdrantTLS, err)
		}
		cfg.QdrantTLS = tls
	}
	return cfg, nil
}

// APIKey returns the key for the selected embedding backend.
func (c *Config) APIKey() string {
	if c.EmbeddingBackend == ai.BackendGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// apiKeyName returns the environment key holding the backend's API key.
func (c *Config) apiKeyName() string {
	if c.EmbeddingBackend == ai.BackendGemini {
		return EnvGeminiAPIKey
	}
	return EnvOpenAIAPIKey
}

// AIConfig builds the embedding client configuration. Extra options are
// applied last, so command-line flags win over the environment.
func (c *Config) AIConfig(opts ...ai.ConfigOption) *ai.Config {
	base := []ai.ConfigOption{
		ai.WithBackend(c.EmbeddingBackend),
		ai.WithAPIKey(c.APIKey()),
		ai.WithEmbeddingModel(c.EmbeddingModel),
	}
	if c.EmbeddingHost != "" {
		base = append(base, ai.WithEmbeddingHost(c.EmbeddingHost))
	}
	return ai.NewConfig(append(base, opts...)...)
}

// Validate checks that every credential the selected backend and sink need
// is present. Errors wrap ErrMissingCredential and name the missing key.
func (c *Config) Validate() error {
	aiCfg := c.AIConfig()
	aiCfg.Normalize()
	if aiCfg.Backend != ai.BackendOpenAI && aiCfg.Backend != ai.BackendGemini {
		return fmt.Errorf("%w: %q", ai.ErrUnknownBackend, aiCfg.Backend)
	}
	if aiCfg.RequiresAPIKey() && c.APIKey() == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingCredential, c.apiKeyName())
	}

	switch c.Sink {
	case SinkBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvBadgerPath)
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvDatabaseURL)
		}
	case SinkQdrant:
		if c.QdrantHost == "" {
			return fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvQdrantHost)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, c.Sink)
	}
	return nil
}
