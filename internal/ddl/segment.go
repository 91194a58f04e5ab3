package ddl

import "strings"

// Block is one table-definition candidate cut out of a document.
type Block struct {
	// Text runs from the table keyword up to the next table keyword or
	// the end of the document.
	Text string
	// Body is the column list between the opening parenthesis and the
	// parenthesis closed by a block marker. Empty when unterminated.
	Body string
	// Tail is the text after the closing parenthesis (table options).
	Tail string
	// Terminated reports whether a block-closing marker was found.
	Terminated bool
}

// Segment splits a document into table-definition blocks. Segmentation is
// lexical: every table keyword starts a block and no parenthesis balancing
// is attempted. A block whose column list is never closed by a marker is
// still returned, with an empty Body.
func Segment(text string) []Block {
	locs := tableKeywordRegex.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	blocks := make([]Block, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, cutBlock(text[loc[0]:end]))
	}
	return blocks
}

// HasHeader reports whether the block starts with a readable
// [schema.]name header
func (b Block) HasHeader() bool {
	return tableHeaderRegex.MatchString(b.Text)
}

func cutBlock(seg string) Block {
	b := Block{Text: seg}

	start := 0
	if loc := tableHeaderRegex.FindStringIndex(seg); loc != nil {
		start = loc[1]
	} else if loc := tableKeywordRegex.FindStringIndex(seg); loc != nil {
		start = loc[1]
	}

	rel := strings.IndexByte(seg[start:], '(')
	if rel < 0 {
		return b
	}
	open := start + rel

	loc := blockCloseRegex.FindStringIndex(seg[open+1:])
	if loc == nil {
		return b
	}

	closeAt := open + 1 + loc[0]
	b.Body = seg[open+1 : closeAt]
	b.Tail = seg[closeAt:]
	b.Terminated = true
	return b
}
