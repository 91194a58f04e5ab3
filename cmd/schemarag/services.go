package main

import (
	"context"

	"github.com/tordrt/schemarag/internal/openai"
	"github.com/tordrt/schemarag/internal/rag"
	"github.com/tordrt/schemarag/internal/store"
)

func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	return store.OpenSQLite(ctx, cfg.Store.Path)
}

func closeStore(s *store.SQLiteStore) {
	if err := s.Close(); err != nil {
		warn("failed to close store: %v", err)
	}
}

// newModelClient validates the model settings and returns the client used
// for both embeddings and completions
func newModelClient() (*openai.Client, error) {
	if err := cfg.ValidateOpenAI(); err != nil {
		return nil, err
	}
	return openai.New(cfg.OpenAI), nil
}

func newRetrier() *rag.Retrier {
	return rag.NewRetrier(
		cfg.Ingest.RequestsPerMinute,
		cfg.Ingest.MaxRetries,
		cfg.Ingest.RetryBackoff,
		openai.IsRetryable,
	)
}
