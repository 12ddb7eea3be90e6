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

package ai

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Supported embedding backends.
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

const (
	// DefaultOpenAIHost is the hosted OpenAI API.
	DefaultOpenAIHost = "https://api.openai.com/v1"

	// DefaultOpenAIModel is the model the review embeddings were built with.
	DefaultOpenAIModel = "text-embedding-ada-002"

	// DefaultGeminiModel is the default Gemini embedding model.
	DefaultGeminiModel = "text-embedding-004"

	// DefaultTimeout bounds a single embedding request.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrMissingAPIKey is returned when a hosted backend has no API key.
	ErrMissingAPIKey = errors.New("ai config: API key is required")

	// ErrUnknownBackend is returned for an unsupported backend name.
	ErrUnknownBackend = errors.New("ai config: unknown embedding backend")

	// ErrEmptyEmbedding is returned when a backend answers without a vector.
	ErrEmptyEmbedding = errors.New("embedding service returned an empty vector")

	// ErrDimensionMismatch is returned when a vector has an unexpected length.
	ErrDimensionMismatch = errors.New("embedding has unexpected dimensions")

	// ErrNonFiniteEmbedding is returned when a vector holds NaN or an infinity.
	ErrNonFiniteEmbedding = errors.New("non-finite embedding value")
)

// Config holds configuration for the embedding service.
type Config struct {
	// Backend selects the client implementation: "openai" or "gemini".
	Backend string

	// EmbeddingHost is the base URL for OpenAI-compatible embedding APIs.
	// Ignored by the gemini backend.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-ada-002", "text-embedding-004"
	EmbeddingModel string

	// APIKey authenticates against the hosted service.
	APIKey string

	// Dimensions is the expected vector length. Vectors of any other length
	// are rejected as malformed responses. Zero accepts any length.
	Dimensions int

	// Timeout bounds a single embedding request. Zero disables the bound.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend selects the backend and resets host and model to its defaults.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = strings.ToLower(strings.TrimSpace(backend))
		switch c.Backend {
		case BackendGemini:
			c.EmbeddingHost = ""
			c.EmbeddingModel = DefaultGeminiModel
		case BackendOpenAI:
			c.EmbeddingHost = DefaultOpenAIHost
			c.EmbeddingModel = DefaultOpenAIModel
		}
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
// An empty model keeps the backend default.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		if model != "" {
			c.EmbeddingModel = model
		}
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithDimensions sets the expected vector length.
func WithDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = dims
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config for the hosted OpenAI embedding API.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendOpenAI,
		EmbeddingHost:  DefaultOpenAIHost,
		EmbeddingModel: DefaultOpenAIModel,
		Timeout:        DefaultTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
//
// Example with Gemini:
//
//	cfg := NewConfig(
//	    WithBackend(BackendGemini),
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to OpenAI hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc), and fills an
// empty model with the backend default.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}

	switch c.Backend {
	case BackendOpenAI:
		if c.EmbeddingHost == "" {
			c.EmbeddingHost = DefaultOpenAIHost
		}
		if !strings.HasSuffix(c.EmbeddingHost, "/v1") {
			// Remove trailing slash if present before adding /v1
			c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
		}
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = DefaultOpenAIModel
		}
	case BackendGemini:
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = DefaultGeminiModel
		}
	}
}

// RequiresAPIKey reports whether the configured endpoint needs credentials.
// Self-hosted OpenAI-compatible servers usually accept any token.
func (c *Config) RequiresAPIKey() bool {
	switch c.Backend {
	case BackendGemini:
		return true
	case BackendOpenAI:
		return strings.HasPrefix(c.EmbeddingHost, DefaultOpenAIHost)
	}
	return false
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Backend != BackendOpenAI && c.Backend != BackendGemini {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.RequiresAPIKey() && c.APIKey == "" {
		return fmt.Errorf("%w for backend %s", ErrMissingAPIKey, c.Backend)
	}
	if c.Dimensions < 0 {
		return errors.New("ai config: Dimensions cannot be negative")
	}
	if c.Timeout < 0 {
		return errors.New("ai config: Timeout cannot be negative")
	}
	return nil
}

// CheckVector rejects empty vectors, vectors with NaN or infinite components
// and, when Dimensions is set, vectors of the wrong length.
func (c *Config) CheckVector(v []float32) error {
	if len(v) == 0 {
		return ErrEmptyEmbedding
	}
	if c.Dimensions > 0 && len(v) != c.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), c.Dimensions)
	}
	return CheckFinite(v)
}

// CheckFinite returns ErrNonFiniteEmbedding for the first NaN or infinite
// component of v.
func CheckFinite(v []float32) error {
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w at index %d", ErrNonFiniteEmbedding, i)
		}
	}
	return nil
}
