// Package chunker splits uploaded documents into overlapping fixed-size
// text windows, the unit of indexing and retrieval.
package chunker

import (
	"path/filepath"
	"strings"
)

// Chunk is one window of a document's text, ordered by position.
type Chunk struct {
	Index int    // position in document (0, 1, 2...)
	Text  string
}

// Chunker turns a document into its ordered chunk sequence.
// Markdown documents are first split into header-delimited sections so
// that windows never straddle unrelated sections; plain text goes
// straight to the window splitter. Boundaries never cross documents.
type Chunker struct {
	splitter *Splitter
	sections *SectionSplitter
}

// New creates a chunker with the given window size and overlap (both in
// characters).
func New(size, overlap int) *Chunker {
	return &Chunker{
		splitter: NewSplitter(size, overlap),
		sections: NewSectionSplitter(),
	}
}

// Chunk splits the document text into ordered chunks. The result is
// deterministic: identical (filename, text) input always yields identical
// chunk boundaries. Empty or whitespace-only text yields zero chunks.
func (c *Chunker) Chunk(filename, text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var pieces []string
	if strings.EqualFold(filepath.Ext(filename), ".md") {
		for _, section := range c.sections.Split([]byte(text)) {
			pieces = append(pieces, c.splitter.Split(section.Body)...)
		}
	} else {
		pieces = c.splitter.Split(text)
	}

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{Index: i, Text: piece})
	}
	return chunks
}
