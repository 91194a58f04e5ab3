package formatter

import "github.com/tordrt/schemarag/internal/schema"

// Documents flattens every table into its retrieval document.
func Documents(s *schema.Schema) []schema.Document {
	docs := make([]schema.Document, 0, len(s.Tables))
	for i := range s.Tables {
		docs = append(docs, Document(&s.Tables[i]))
	}
	return docs
}

// Document flattens one table. Column comments are aligned with columns,
// with "" where a column has no comment.
func Document(t *schema.Table) schema.Document {
	doc := schema.Document{
		ID:             t.ID(),
		TableName:      t.Name,
		TableComment:   t.CommentText(),
		Columns:        make([]string, 0, len(t.Columns)),
		ColumnComments: make([]string, 0, len(t.Columns)),
		SchemaText:     SchemaText(t),
	}
	for i := range t.Columns {
		doc.Columns = append(doc.Columns, t.Columns[i].Name)
		doc.ColumnComments = append(doc.ColumnComments, t.Columns[i].CommentText())
	}
	return doc
}
