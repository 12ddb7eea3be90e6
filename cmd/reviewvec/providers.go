package main

import (
	"context"

	"github.com/poiesic/reviewvec/ai"
	"github.com/poiesic/reviewvec/ai/gemini"
	"github.com/poiesic/reviewvec/ai/openai"
	"github.com/poiesic/reviewvec/config"
	"github.com/poiesic/reviewvec/storage"
	"github.com/poiesic/reviewvec/storage/badger"
	"github.com/poiesic/reviewvec/storage/postgres"
	qdrantsink "github.com/poiesic/reviewvec/storage/qdrant"
)

// newProvider creates the embedding client for the configured backend.
func newProvider(ctx context.Context, cfg *ai.Config) (ai.Provider, error) {
	if cfg.Backend == ai.BackendGemini {
		return gemini.NewProvider(ctx, cfg)
	}
	return openai.NewProvider(cfg)
}

// openSink opens the store selected by env.Sink.
func openSink(ctx context.Context, env *config.Config) (storage.Sink, error) {
	switch env.Sink {
	case config.SinkPostgres:
		sink, err := postgres.Open(ctx, env.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.SinkQdrant:
		sink, err := qdrantsink.Open(qdrantsink.Config{
			Host:   env.QdrantHost,
			Port:   env.QdrantPort,
			APIKey: env.QdrantAPIKey,
			UseTLS: env.QdrantTLS,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.SinkBadger:
		store, err := badger.Open(env.BadgerPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, config.ErrUnknownSink
}
