package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/tordrt/schemarag/internal/db"
	"github.com/tordrt/schemarag/internal/schema"
)

const documentsTable = "schema_documents"

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS schema_documents (
	id              TEXT PRIMARY KEY,
	table_name      TEXT NOT NULL,
	table_comment   TEXT NOT NULL DEFAULT '',
	columns         TEXT NOT NULL,
	column_comments TEXT NOT NULL,
	schema_text     TEXT NOT NULL,
	content_hash    TEXT NOT NULL,
	dimensions      INTEGER NOT NULL,
	embedding       BLOB NOT NULL,
	updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schema_documents_table_name ON schema_documents (table_name);
`

var documentColumns = []string{
	"id", "table_name", "table_comment", "columns", "column_comments", "schema_text",
}

// SQLiteStore keeps documents and embeddings in a single SQLite file
type SQLiteStore struct {
	client *db.SQLiteClient
	qb     squirrel.StatementBuilderType
}

// OpenSQLite opens or creates the store at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	client, err := db.NewWritableSQLiteClient(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	if _, err := client.GetDB().ExecContext(ctx, createDocumentsTable); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create store schema: %w", err)
	}

	return &SQLiteStore{
		client: client,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.client.Close()
}

// Upsert writes records keyed by document id, replacing earlier versions.
// Each record gets its own result; a failing record does not stop the
// others. The returned error is set only when the batch could not be
// attempted at all.
func (s *SQLiteStore) Upsert(ctx context.Context, records []Record) ([]UpsertResult, error) {
	dims, err := s.dimensions(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.client.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	results := make([]UpsertResult, 0, len(records))
	for _, rec := range records {
		res := UpsertResult{Key: rec.ID}
		switch {
		case rec.ID == "":
			res.Err = errors.New("document id is empty")
		case len(rec.Embedding) == 0:
			res.Err = errors.New("embedding is empty")
		case dims > 0 && len(rec.Embedding) != dims:
			res.Err = fmt.Errorf("%w: got %d, store holds %d", ErrDimensionMismatch, len(rec.Embedding), dims)
		default:
			res.Err = s.upsertOne(ctx, tx, rec, now)
		}
		if res.Err == nil {
			res.Succeeded = true
			if dims == 0 {
				dims = len(rec.Embedding)
			}
		}
		results = append(results, res)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}
	return results, nil
}

func (s *SQLiteStore) upsertOne(ctx context.Context, tx *sql.Tx, rec Record, now string) error {
	columns, err := json.Marshal(nonNil(rec.Columns))
	if err != nil {
		return err
	}
	comments, err := json.Marshal(nonNil(rec.ColumnComments))
	if err != nil {
		return err
	}

	query, args, err := s.qb.Insert(documentsTable).
		Columns(append(documentColumns, "content_hash", "dimensions", "embedding", "updated_at")...).
		Values(
			rec.ID, rec.TableName, rec.TableComment, string(columns), string(comments), rec.SchemaText,
			ContentHash(rec.SchemaText), len(rec.Embedding), encodeVector(rec.Embedding), now,
		).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			table_name = excluded.table_name,
			table_comment = excluded.table_comment,
			columns = excluded.columns,
			column_comments = excluded.column_comments,
			schema_text = excluded.schema_text,
			content_hash = excluded.content_hash,
			dimensions = excluded.dimensions,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", rec.ID, err)
	}
	return nil
}

// dimensions returns the vector length in use, or 0 for an empty store
func (s *SQLiteStore) dimensions(ctx context.Context) (int, error) {
	query, args, err := s.qb.Select("dimensions").From(documentsTable).Limit(1).ToSql()
	if err != nil {
		return 0, err
	}

	var dims int
	err = s.client.GetDB().QueryRowContext(ctx, query, args...).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read store dimensions: %w", err)
	}
	return dims, nil
}

// Hashes returns the content hash stored for every document id
func (s *SQLiteStore) Hashes(ctx context.Context) (map[string]string, error) {
	query, args, err := s.qb.Select("id", "content_hash").From(documentsTable).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.client.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, err
		}
		hashes[id] = hash
	}
	return hashes, rows.Err()
}

// Search scores every stored document against vector and returns the k
// most similar. Documents of a different dimension are skipped.
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return []Match{}, nil
	}

	query, args, err := s.qb.
		Select(append(documentColumns, "embedding")...).
		From(documentsTable).
		Where(squirrel.Eq{"dimensions": len(vector)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.client.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan documents: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var blob []byte
		doc, err := scanDocument(rows, &blob)
		if err != nil {
			return nil, err
		}
		embedding, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		matches = append(matches, Match{Document: doc, Score: cosine(vector, embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topK(matches, k), nil
}

// FindByName returns documents whose table name contains name, ignoring
// case, ordered by id
func (s *SQLiteStore) FindByName(ctx context.Context, name string) ([]schema.Document, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"

	query, args, err := s.qb.
		Select(documentColumns...).
		From(documentsTable).
		Where(squirrel.Expr(`lower(table_name) LIKE ? ESCAPE '\'`, pattern)).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.client.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tables: %w", err)
	}
	defer rows.Close()

	docs := []schema.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of stored documents
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	query, args, err := s.qb.Select("COUNT(*)").From(documentsTable).ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.client.GetDB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanDocument(rows *sql.Rows, extra ...any) (schema.Document, error) {
	var doc schema.Document
	var columns, comments string

	dest := append([]any{&doc.ID, &doc.TableName, &doc.TableComment, &columns, &comments, &doc.SchemaText}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return doc, err
	}
	if err := json.Unmarshal([]byte(columns), &doc.Columns); err != nil {
		return doc, fmt.Errorf("document %s: invalid columns: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(comments), &doc.ColumnComments); err != nil {
		return doc, fmt.Errorf("document %s: invalid column comments: %w", doc.ID, err)
	}
	return doc, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
