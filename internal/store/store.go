// Package store persists schema documents with their embedding vectors and
// answers nearest-neighbour queries over them.
package store

import (
	"errors"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/tordrt/schemarag/internal/schema"
)

// ErrDimensionMismatch is reported for a record whose vector length differs
// from the vectors already stored
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Record is a document together with its embedding
type Record struct {
	schema.Document
	Embedding []float32
}

// UpsertResult reports the outcome for one record, keyed by document id
type UpsertResult struct {
	Key       string
	Succeeded bool
	Err       error
}

// Match is a search hit with its cosine similarity to the query
type Match struct {
	schema.Document
	Score float64
}

// ContentHash fingerprints the text an embedding was computed from
func ContentHash(text string) string {
	return strconv.FormatUint(xxh3.HashString(text), 16)
}
