package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tordrt/schemarag/internal/formatter"
	"github.com/tordrt/schemarag/internal/schema"
	"github.com/tordrt/schemarag/internal/store"
)

// DefaultTopK is the number of tables retrieved per request
const DefaultTopK = 3

// SystemPrompt frames the model as a SQL author
const SystemPrompt = "You are an expert at writing SQL queries. " +
	"Write the query that retrieves exactly the information the user asks for, " +
	"and join several tables when the request needs it."

const userPromptTemplate = `User request: %s

Table structures:
%s

Guidelines:
- Prefer the tables that contain the requested columns
- Join other related tables when needed
- Use the real table and column names
- For INSERT, UPDATE or DELETE statements, respect the table's constraints
Write the SQL query:`

// ErrEmptyRequest is returned by Ask for a blank request
var ErrEmptyRequest = errors.New("request is empty")

// Asker answers natural-language requests with generated SQL
type Asker struct {
	Embedder  Embedder
	Store     Store
	Generator Generator
	Retrier   *Retrier
	Logger    *zap.Logger
	TopK      int
}

// Answer is the generated query with the tables it was based on
type Answer struct {
	SQL     string
	Tables  []store.Match
	Context string
}

// Ask embeds request, retrieves the most similar tables and generates SQL
// from them
func (a *Asker) Ask(ctx context.Context, request string) (*Answer, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, ErrEmptyRequest
	}

	retrier := a.Retrier
	if retrier == nil {
		retrier = &Retrier{}
	}

	var vector []float32
	err := retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		vector, err = a.Embedder.Embed(ctx, request)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed request: %w", err)
	}

	k := a.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	matches, err := a.Store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search tables: %w", err)
	}

	log := a.Logger
	if log == nil {
		log = zap.NewNop()
	}
	for _, m := range matches {
		log.Debug("retrieved table", zap.String("table", m.ID), zap.Float64("score", m.Score))
	}

	answer := &Answer{Tables: matches, Context: RenderContext(matches)}

	err = retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		answer.SQL, err = a.Generator.Generate(ctx, SystemPrompt, UserPrompt(request, answer.Context))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate SQL: %w", err)
	}

	return answer, nil
}

// UserPrompt combines the request with the retrieved table context
func UserPrompt(request, tables string) string {
	return fmt.Sprintf(userPromptTemplate, request, tables)
}

// RenderContext renders retrieved tables for the prompt, separated by a
// blank line
func RenderContext(matches []store.Match) string {
	blocks := make([]string, 0, len(matches))
	for i := range matches {
		blocks = append(blocks, TableContext(&matches[i].Document))
	}
	return strings.Join(blocks, "\n\n")
}

// TableContext renders one document: its name, a line per column and the
// schema text. Column details come from the schema text when it parses,
// otherwise only names and comments are listed.
func TableContext(doc *schema.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", doc.TableName)
	b.WriteString("Columns:\n")

	if table, err := formatter.ParseSchemaText(doc.SchemaText); err == nil && len(table.Columns) > 0 {
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "- %s (%s, nullable=%t, default=%s, comment=%s)\n",
				col.Name, col.Type, col.Nullable, orNone(col.Default), orNone(col.Comment))
		}
	} else {
		for i, name := range doc.Columns {
			comment := ""
			if i < len(doc.ColumnComments) {
				comment = doc.ColumnComments[i]
			}
			if comment != "" {
				fmt.Fprintf(&b, "- %s (comment=%s)\n", name, comment)
			} else {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
	}

	fmt.Fprintf(&b, "Description: %s", doc.SchemaText)
	return b.String()
}

func orNone(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
