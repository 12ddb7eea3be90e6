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
	"log/slog"

	"github.com/poiesic/reviewvec/ai"
)

// Provider implements ai.Provider on top of a Gemini client.
type Provider struct {
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider creates a Gemini-backed provider. The client is created
// eagerly but no request is sent until the first embedding call.
func NewProvider(ctx context.Context, config *ai.Config) (ai.Provider, error) {
	embedder, err := newEmbedder(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Provider{
		embedder: embedder,
		logger:   slog.Default().With("component", "gemini-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases the underlying gRPC connection.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return p.embedder.client.Close()
}
