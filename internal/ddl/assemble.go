package ddl

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/schemarag/internal/schema"
)

// Source is one DDL document.
type Source struct {
	Name string
	Text string
}

// Parse parses a set of documents into one schema.
//
// Documents are ordered by name before merging, so the result does not
// depend on the order they were passed in or on scheduling. Tables keep the
// position where their identity was first seen; a later definition of the
// same identity replaces the earlier one (last write wins). Comments,
// indexes and ALTER TABLE primary keys are resolved against the merged
// tables, in document order.
//
// Parse returns ErrNoInput for an empty source list and ErrNoTables when
// some document had content but no table was found. If every document is
// blank the result is an empty schema and a nil error.
func Parse(sources []Source) (*schema.Schema, error) {
	if len(sources) == 0 {
		return &schema.Schema{Tables: []schema.Table{}}, ErrNoInput
	}

	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})

	docs := make([]*Document, len(ordered))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range ordered {
		i, src := i, src
		g.Go(func() error {
			docs[i] = ParseDocument(src.Name, src.Text)
			return nil
		})
	}
	_ = g.Wait()

	return Assemble(docs)
}

// Assemble merges already-scanned documents in the given order.
func Assemble(docs []*Document) (*schema.Schema, error) {
	if len(docs) == 0 {
		return &schema.Schema{Tables: []schema.Table{}}, ErrNoInput
	}

	var (
		tables   []schema.Table
		position = make(map[string]int)
		allBlank = true
	)
	for _, doc := range docs {
		if !doc.Blank {
			allBlank = false
		}
		for j, t := range doc.Tables {
			if j < len(doc.headerless) && doc.headerless[j] {
				// Unreadable headers share the UNKNOWN name but are
				// distinct tables
				tables = append(tables, t)
				continue
			}
			id := t.ID()
			if i, ok := position[id]; ok {
				tables[i] = t
				continue
			}
			position[id] = len(tables)
			tables = append(tables, t)
		}
	}

	if len(tables) == 0 {
		empty := &schema.Schema{Tables: []schema.Table{}}
		if allBlank {
			return empty, nil
		}
		return empty, ErrNoTables
	}

	for _, doc := range docs {
		ResolveTableComments(tables, doc.TableComments)
		ResolveColumnComments(tables, doc.ColumnComments)
		AttachPrimaryKeys(tables, doc.PrimaryKeys)
		AttachIndexes(tables, doc.Indexes)
	}

	for i := range tables {
		finalize(&tables[i])
	}

	return &schema.Schema{Tables: tables}, nil
}

// finalize enforces the output invariants: key names exist as columns and
// list fields serialize as empty arrays rather than null.
func finalize(t *schema.Table) {
	if t.Columns == nil {
		t.Columns = []schema.Column{}
	}
	prunePrimaryKey(t)
	if t.Indexes == nil {
		t.Indexes = []schema.Index{}
	}
}

// LoadSources reads DDL documents from files and directories. Directories
// contribute their *.sql files (not recursive). Every document must be
// valid UTF-8; a leading byte order mark is dropped.
func LoadSources(paths ...string) ([]Source, error) {
	var sources []Source
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if !info.IsDir() {
			src, err := readSource(path)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
				continue
			}
			src, err := readSource(filepath.Join(path, entry.Name()))
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}
	return sources, nil
}

// ParseFiles loads and parses DDL files and directories.
func ParseFiles(paths ...string) (*schema.Schema, error) {
	sources, err := LoadSources(paths...)
	if err != nil {
		return nil, err
	}
	return Parse(sources)
}

func readSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return Source{}, fmt.Errorf("failed to read %s: not valid UTF-8", path)
	}
	text := strings.TrimPrefix(string(data), "\uFEFF")
	return Source{Name: path, Text: text}, nil
}
