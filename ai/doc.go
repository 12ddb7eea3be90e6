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

// Package ai provides the embedding service abstraction used by reviewvec.
//
// The pipeline depends on the Embedder interface only. Concrete clients live
// in sub-packages:
//
//   - ai/openai: OpenAI and OpenAI-compatible endpoints via langchaingo
//   - ai/gemini: Google Gemini embedding models
//   - ai/mock: deterministic, concurrency-safe test doubles
//
// Public constructors (openai.NewProvider, gemini.NewProvider) return
// interface types. Mock constructors return concrete types so tests can
// inject failures and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "Likes: fast search . Dislikes: ...")
package ai
