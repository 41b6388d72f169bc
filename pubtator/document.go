package pubtator

import (
	"strings"

	"github.com/gomlx/go-pubtator/issues"
	"golang.org/x/text/unicode/norm"
)

// RawAnnotation is an entity annotation row as found in the input.
type RawAnnotation struct {
	Start   int    // character offset into Document.FullText, inclusive
	End     int    // character offset into Document.FullText, exclusive
	Mention string // annotated text
	Type    string // entity type label, free-form
	Line    int    // 1-based input line
}

// Document is one title/abstract pair with its annotations.
type Document struct {
	ID string

	// Title and Abstract hold their input lines verbatim, each followed by "\n".
	Title    string
	Abstract string

	// FullText is the concatenation of the trimmed title and abstract bodies, each followed by a
	// space. Annotation offsets refer to it.
	FullText string

	Annotations []RawAnnotation

	// Line is the 1-based input line where the document starts.
	Line int
}

// builder accumulates the lines of one document.
type builder struct {
	id          string
	title       strings.Builder
	abstract    strings.Builder
	fullText    strings.Builder
	annotations []RawAnnotation
	firstLine   int
	issues      *issues.Collector
}

func (b *builder) empty() bool {
	return b.firstLine == 0
}

func (b *builder) add(line Line) {
	if b.firstLine == 0 {
		b.firstLine = line.Number
	}
	if line.ID != "" {
		if b.id != "" && b.id != line.ID {
			b.issues.Add(issues.IdentifierMismatch, b.id, line.Number,
				"identifier %q inside document %q, using the latest", line.ID, b.id)
		}
		b.id = line.ID
	}

	switch line.Kind {
	case LineTitle, LineAbstract:
		if !norm.NFC.IsNormalString(line.Body) {
			b.issues.Add(issues.NonNormalizedText, b.id, line.Number,
				"%s is not NFC normalized, offsets count its characters as given", strings.ToLower(line.Kind.String()))
		}
		b.fullText.WriteString(strings.TrimSpace(line.Body))
		b.fullText.WriteByte(' ')
		target := &b.title
		if line.Kind == LineAbstract {
			target = &b.abstract
		}
		target.WriteString(line.Raw)
		target.WriteByte('\n')
	case LineAnnotation:
		b.annotations = append(b.annotations, line.Annotation)
	}
}

// finalize returns the accumulated document and resets the builder.
func (b *builder) finalize() *Document {
	doc := &Document{
		ID:          b.id,
		Title:       b.title.String(),
		Abstract:    b.abstract.String(),
		FullText:    b.fullText.String(),
		Annotations: b.annotations,
		Line:        b.firstLine,
	}
	b.reset()
	return doc
}

func (b *builder) reset() {
	b.id = ""
	b.title.Reset()
	b.abstract.Reset()
	b.fullText.Reset()
	b.annotations = nil
	b.firstLine = 0
}
