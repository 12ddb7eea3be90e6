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

package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/poiesic/reviewvec/ai"
	"google.golang.org/api/option"
)

// Embedder implements ai.Embedder with a Gemini embedding model.
type Embedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	config *ai.Config
	logger *slog.Logger
}

func newEmbedder(ctx context.Context, config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Backend != ai.BackendGemini {
		return nil, fmt.Errorf("%w: gemini embedder cannot serve %q", ai.ErrUnknownBackend, config.Backend)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Embedder{
		client: client,
		model:  client.EmbeddingModel(config.EmbeddingModel),
		config: config,
		logger: slog.Default().With("component", "gemini-embedder", "model", config.EmbeddingModel),
	}, nil
}

func (e *Embedder) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.Timeout > 0 {
		return context.WithTimeout(ctx, e.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	res, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request: %w", err)
	}
	if res == nil || res.Embedding == nil {
		return nil, ai.ErrEmptyEmbedding
	}
	if err := e.config.CheckVector(res.Embedding.Values); err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}
