package rag

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tordrt/schemarag/internal/schema"
	"github.com/tordrt/schemarag/internal/store"
)

// DefaultBatchSize is the number of documents uploaded per store call
const DefaultBatchSize = 50

var errEmptyEmbedding = errors.New("embedding is empty")

// Ingester embeds table documents and uploads them to the store
type Ingester struct {
	Embedder Embedder
	Store    Store
	Retrier  *Retrier
	Logger   *zap.Logger

	BatchSize  int
	Workers    int
	BatchPause time.Duration
	// Force re-embeds documents whose schema text is unchanged
	Force bool
}

// IngestReport summarises one run
type IngestReport struct {
	RunID        string
	Total        int
	SkippedEmpty int
	Unchanged    int
	EmbedFailed  []string
	Uploaded     int
	UploadFailed []store.UpsertResult
}

// Failed reports whether any document could not be stored
func (r *IngestReport) Failed() bool {
	return len(r.EmbedFailed) > 0 || len(r.UploadFailed) > 0
}

// Ingest embeds and stores docs. Documents with blank schema text are
// skipped. A failure to embed or store one document is logged and recorded
// in the report; it never stops the others. The returned error is set only
// when the run could not proceed at all.
func (in *Ingester) Ingest(ctx context.Context, docs []schema.Document) (*IngestReport, error) {
	report := &IngestReport{RunID: uuid.New().String(), Total: len(docs)}
	log := in.logger().With(zap.String("run_id", report.RunID))

	pending := make([]schema.Document, 0, len(docs))
	for _, doc := range docs {
		doc.SchemaText = strings.TrimSpace(doc.SchemaText)
		if doc.SchemaText == "" {
			report.SkippedEmpty++
			continue
		}
		pending = append(pending, doc)
	}

	if !in.Force {
		hashes, err := in.Store.Hashes(ctx)
		if err != nil {
			return report, err
		}
		kept := pending[:0]
		for _, doc := range pending {
			if hashes[doc.ID] == store.ContentHash(doc.SchemaText) {
				report.Unchanged++
				continue
			}
			kept = append(kept, doc)
		}
		pending = kept
	}

	log.Info("ingest started",
		zap.Int("documents", report.Total),
		zap.Int("to_embed", len(pending)),
		zap.Int("skipped_empty", report.SkippedEmpty),
		zap.Int("unchanged", report.Unchanged))

	records, err := in.embedAll(ctx, log, pending, report)
	if err != nil {
		return report, err
	}

	in.upload(ctx, log, records, report)

	log.Info("ingest finished",
		zap.Int("uploaded", report.Uploaded),
		zap.Int("embed_failed", len(report.EmbedFailed)),
		zap.Int("upload_failed", len(report.UploadFailed)))

	return report, ctx.Err()
}

// embedAll embeds docs concurrently and returns the successful records in
// input order
func (in *Ingester) embedAll(ctx context.Context, log *zap.Logger, docs []schema.Document, report *IngestReport) ([]store.Record, error) {
	vectors := make([][]float32, len(docs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(in.Workers, 1))

	for i := range docs {
		i := i
		g.Go(func() error {
			var vec []float32
			err := in.retrier().Do(gctx, func(ctx context.Context) error {
				var err error
				vec, err = in.Embedder.Embed(ctx, docs[i].SchemaText)
				return err
			})
			if err == nil && len(vec) == 0 {
				err = errEmptyEmbedding
			}
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				log.Warn("embedding failed", zap.String("table", docs[i].ID), zap.Error(err))
				mu.Lock()
				report.EmbedFailed = append(report.EmbedFailed, docs[i].ID)
				mu.Unlock()
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(report.EmbedFailed)

	records := make([]store.Record, 0, len(docs))
	for i, doc := range docs {
		if vectors[i] != nil {
			records = append(records, store.Record{Document: doc, Embedding: vectors[i]})
		}
	}
	return records, nil
}

// upload writes records in batches, pausing between batches
func (in *Ingester) upload(ctx context.Context, log *zap.Logger, records []store.Record, report *IngestReport) {
	size := in.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for start := 0; start < len(records); start += size {
		if start > 0 && in.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(in.BatchPause):
			}
		}

		batch := records[start:min(start+size, len(records))]
		results, err := in.Store.Upsert(ctx, batch)
		if err != nil {
			log.Error("batch upload failed", zap.Int("batch_start", start), zap.Int("batch_size", len(batch)), zap.Error(err))
			for _, rec := range batch {
				report.UploadFailed = append(report.UploadFailed, store.UpsertResult{Key: rec.ID, Err: err})
			}
			continue
		}

		for _, res := range results {
			if res.Succeeded {
				report.Uploaded++
				continue
			}
			log.Warn("document upload failed", zap.String("table", res.Key), zap.Error(res.Err))
			report.UploadFailed = append(report.UploadFailed, res)
		}
		log.Info("uploaded batch", zap.Int("documents", len(batch)))
	}
}

func (in *Ingester) retrier() *Retrier {
	if in.Retrier == nil {
		return &Retrier{}
	}
	return in.Retrier
}

func (in *Ingester) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}
