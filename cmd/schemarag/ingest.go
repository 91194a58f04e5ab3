package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/schemarag/internal/ddl"
	"github.com/tordrt/schemarag/internal/formatter"
	"github.com/tordrt/schemarag/internal/rag"
	"github.com/tordrt/schemarag/internal/schema"
)

var (
	ingestForce     bool
	ingestDocuments bool
	ingestBatchSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <schema.json|file.sql|dir>...",
	Short: "Embed table descriptors and store them for retrieval",
	Long: `Ingest embeds each table's schema text and stores it in the vector store.
JSON inputs hold table descriptors as written by parse, or documents with
--documents. Every other input is parsed as DDL. Tables whose schema text is
unchanged since the last run are skipped unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "Re-embed tables whose schema text is unchanged")
	ingestCmd.Flags().BoolVar(&ingestDocuments, "documents", false, "JSON inputs are documents rather than table descriptors")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "Documents per store write (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	docs, err := loadDocuments(args, ingestDocuments)
	if err != nil {
		return err
	}

	client, err := newModelClient()
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	batchSize := cfg.Ingest.BatchSize
	if ingestBatchSize > 0 {
		batchSize = ingestBatchSize
	}

	ingester := &rag.Ingester{
		Embedder:   client,
		Store:      st,
		Retrier:    newRetrier(),
		Logger:     logger,
		BatchSize:  batchSize,
		Workers:    cfg.Ingest.Workers,
		BatchPause: cfg.Ingest.BatchPause,
		Force:      ingestForce,
	}

	report, err := ingester.Ingest(ctx, docs)
	if err != nil {
		return err
	}
	printReport(report)

	if report.Failed() {
		return fmt.Errorf("%d of %d tables were not stored", len(report.EmbedFailed)+len(report.UploadFailed), report.Total)
	}
	return nil
}

// loadDocuments reads every input into retrieval documents. DDL inputs are
// parsed together so that comments and indexes may live in separate files.
func loadDocuments(paths []string, documentsJSON bool) ([]schema.Document, error) {
	var docs []schema.Document
	var ddlPaths []string

	for _, path := range paths {
		if !strings.EqualFold(filepath.Ext(path), ".json") {
			ddlPaths = append(ddlPaths, path)
			continue
		}
		fileDocs, err := readJSONDocuments(path, documentsJSON)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}

	if len(ddlPaths) > 0 {
		s, err := ddl.ParseFiles(ddlPaths...)
		if err != nil {
			return nil, err
		}
		docs = append(docs, formatter.Documents(s)...)
	}

	logger.Info("loaded documents", zap.Int("documents", len(docs)))
	return docs, nil
}

func readJSONDocuments(path string, documentsJSON bool) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if documentsJSON {
		docs, err := formatter.ReadDocuments(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return docs, nil
	}

	s, err := formatter.ReadTables(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return formatter.Documents(s), nil
}

func printReport(r *rag.IngestReport) {
	status("Ingest %s: %d tables, %d stored, %d unchanged, %d without schema text",
		r.RunID, r.Total, r.Uploaded, r.Unchanged, r.SkippedEmpty)
	for _, id := range r.EmbedFailed {
		failure("  embedding failed: %s", id)
	}
	for _, res := range r.UploadFailed {
		failure("  store failed: %s: %v", res.Key, res.Err)
	}
}
