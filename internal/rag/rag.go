// Package rag drives retrieval over parsed schemas: embedding and storing
// table documents, and answering natural-language requests with SQL
// generated from the most similar tables.
package rag

import (
	"context"

	"github.com/tordrt/schemarag/internal/schema"
	"github.com/tordrt/schemarag/internal/store"
)

// Embedder turns text into a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a system and a user prompt
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Store is the document index
type Store interface {
	Upsert(ctx context.Context, records []store.Record) ([]store.UpsertResult, error)
	Hashes(ctx context.Context) (map[string]string, error)
	Search(ctx context.Context, vector []float32, k int) ([]store.Match, error)
	FindByName(ctx context.Context, name string) ([]schema.Document, error)
}
