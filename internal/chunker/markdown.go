package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Section is a header-delimited region of a markdown document.
type Section struct {
	Title string // heading text, empty for documents with no headers
	Body  string // raw markdown from the heading to the next H1/H2 boundary
}

// SectionSplitter splits markdown at H1 and H2 boundaries. Windows are
// cut within a section, never across one, which keeps retrieval context
// coherent for structured documents.
type SectionSplitter struct {
	parser goldmark.Markdown
}

// NewSectionSplitter creates a section splitter backed by a goldmark parser.
func NewSectionSplitter() *SectionSplitter {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &SectionSplitter{parser: md}
}

// Split returns the ordered sections of the given markdown source.
// A document with no headers is returned whole as a single section.
func (s *SectionSplitter) Split(source []byte) []Section {
	reader := text.NewReader(source)
	doc := s.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2), // split at H1 and H2 only
		toc.Compact(true),
	)
	if err != nil || len(tree.Items) == 0 {
		return []Section{{Body: string(source)}}
	}

	var sections []Section
	s.collect(doc, source, tree.Items, &sections)
	if len(sections) == 0 {
		return []Section{{Body: string(source)}}
	}
	return sections
}

// collect walks TOC items in document order, cutting each heading's
// content at the next same-or-higher-level heading.
func (s *SectionSplitter) collect(doc ast.Node, source []byte, items toc.Items, sections *[]Section) {
	for i, item := range items {
		heading := findHeadingByID(doc, string(item.ID))
		if heading == nil {
			continue
		}

		// A section with subsections ends where its first child begins;
		// the children own the rest of its range.
		start := heading.Lines().At(0)
		var end text.Segment
		switch {
		case len(item.Items) > 0:
			if child := findHeadingByID(doc, string(item.Items[0].ID)); child != nil {
				end = child.Lines().At(0)
			}
		case i+1 < len(items):
			if next := findHeadingByID(doc, string(items[i+1].ID)); next != nil {
				end = next.Lines().At(0)
			}
		default:
			end = nextBoundary(doc, heading, heading.(*ast.Heading).Level)
		}

		body := cutSource(source, start, end)
		if body != "" {
			*sections = append(*sections, Section{
				Title: string(item.Title),
				Body:  body,
			})
		}

		if len(item.Items) > 0 {
			s.collect(doc, source, item.Items, sections)
		}
	}
}

// findHeadingByID locates a heading node by its auto-generated ID.
func findHeadingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// nextBoundary finds the start of the next heading at the same or a
// higher level after the given node. A zero segment means end of document.
func nextBoundary(root ast.Node, current ast.Node, currentLevel int) text.Segment {
	var next ast.Node
	foundCurrent := false

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if !foundCurrent {
			if n == current {
				foundCurrent = true
			}
			return ast.WalkContinue, nil
		}
		if n.(*ast.Heading).Level <= currentLevel {
			next = n
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if next != nil {
		return next.Lines().At(0)
	}
	return text.Segment{}
}

// cutSource extracts the trimmed text between two line segments.
func cutSource(source []byte, start, end text.Segment) string {
	if end.Start == 0 && end.Stop == 0 {
		return strings.TrimSpace(string(source[start.Start:]))
	}
	return strings.TrimSpace(string(source[start.Start:end.Start]))
}
