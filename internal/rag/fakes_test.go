package rag

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tordrt/schemarag/internal/schema"
	"github.com/tordrt/schemarag/internal/store"
)

// fakeEmbedder maps text to a vector by keyword and fails for texts listed
// in fail. Texts in empty get a zero-length vector.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]int // remaining failures per text; -1 fails forever
	empty map[string]bool
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{calls: map[string]int{}, fail: map[string]int{}, empty: map[string]bool{}}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[text]++
	if n, ok := f.fail[text]; ok && n != 0 {
		if n > 0 {
			f.fail[text] = n - 1
		}
		return nil, errors.New("embedding service unavailable")
	}
	if f.empty[text] {
		return []float32{}, nil
	}

	vec := []float32{0.01, 0.01, 0.01}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "order") {
		vec[0] = 1
	}
	if strings.Contains(lower, "user") {
		vec[1] = 1
	}
	if strings.Contains(lower, "product") {
		vec[2] = 1
	}
	return vec, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// memStore is an in-memory Store
type memStore struct {
	mu        sync.Mutex
	records   map[string]store.Record
	batches   []int
	rejectIDs map[string]bool
	failBatch bool
}

func newMemStore() *memStore {
	return &memStore{records: map[string]store.Record{}, rejectIDs: map[string]bool{}}
}

func (m *memStore) Upsert(_ context.Context, records []store.Record) ([]store.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = append(m.batches, len(records))
	if m.failBatch {
		return nil, errors.New("index unavailable")
	}

	results := make([]store.UpsertResult, 0, len(records))
	for _, rec := range records {
		if m.rejectIDs[rec.ID] {
			results = append(results, store.UpsertResult{Key: rec.ID, Err: errors.New("rejected")})
			continue
		}
		m.records[rec.ID] = rec
		results = append(results, store.UpsertResult{Key: rec.ID, Succeeded: true})
	}
	return results, nil
}

func (m *memStore) Hashes(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hashes := make(map[string]string, len(m.records))
	for id, rec := range m.records {
		hashes[id] = store.ContentHash(rec.SchemaText)
	}
	return hashes, nil
}

func (m *memStore) Search(_ context.Context, vector []float32, k int) ([]store.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []store.Match
	for _, rec := range m.records {
		var dot float64
		for i := range vector {
			dot += float64(vector[i] * rec.Embedding[i])
		}
		matches = append(matches, store.Match{Document: rec.Document, Score: dot})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (m *memStore) FindByName(_ context.Context, name string) ([]schema.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var docs []schema.Document
	for _, rec := range m.records {
		if strings.Contains(strings.ToLower(rec.TableName), strings.ToLower(name)) {
			docs = append(docs, rec.Document)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// fakeGenerator records its prompts and returns a fixed answer
type fakeGenerator struct {
	system, user string
	answer       string
	err          error
}

func (f *fakeGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.system, f.user = systemPrompt, userPrompt
	return f.answer, f.err
}
