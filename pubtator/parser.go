// Package pubtator parses the PubTator annotation format into documents.
//
// The input is line oriented:
//
//	<id>|t|<title>
//	<id>|a|<abstract>
//	<id>\t<start>\t<end>\t<mention>\t<type>
//	<blank line>
//
// Each blank line ends a document. Annotation offsets are character offsets into the title and
// abstract joined as described in Document.FullText.
package pubtator

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/gomlx/go-pubtator/issues"
	"github.com/pkg/errors"
)

var (
	// ErrMalformedLine is wrapped by the errors of lines that can't be parsed.
	ErrMalformedLine = errors.New("malformed line")

	// ErrTruncatedDocument is returned for a document without a terminating blank line, when
	// TrailingFail is used.
	ErrTruncatedDocument = errors.New("truncated document")
)

// TrailingPolicy tells what to do with a document that is not followed by a blank line at the end
// of the input.
type TrailingPolicy int

const (
	// TrailingFinalize emits the document as if the blank line was there. It's reported as an
	// issues.TruncatedDocument.
	TrailingFinalize TrailingPolicy = iota

	// TrailingDrop discards the document, reporting it as an issues.TruncatedDocument.
	// Kept for compatibility with datasets generated by earlier LitCovid NER tooling.
	TrailingDrop

	// TrailingFail returns an error wrapping ErrTruncatedDocument.
	TrailingFail
)

var trailingPolicyNames = map[TrailingPolicy]string{
	TrailingFinalize: "finalize",
	TrailingDrop:     "drop",
	TrailingFail:     "fail",
}

// String implements fmt.Stringer.
func (p TrailingPolicy) String() string {
	if name, ok := trailingPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TrailingPolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p TrailingPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *TrailingPolicy) UnmarshalText(text []byte) error {
	for policy, name := range trailingPolicyNames {
		if strings.EqualFold(name, string(text)) {
			*p = policy
			return nil
		}
	}
	return errors.Errorf("unknown trailing document policy %q, valid values are finalize, drop and fail", text)
}

// DefaultMaxLineBytes is the longest line accepted by default.
const DefaultMaxLineBytes = 16 << 20

// Parser reads documents from PubTator input.
type Parser struct {
	trailing     TrailingPolicy
	maxLineBytes int
	issues       *issues.Collector
}

// NewParser creates a Parser with TrailingFinalize, reporting issues to collector (which may be nil).
func NewParser(collector *issues.Collector) *Parser {
	return &Parser{
		maxLineBytes: DefaultMaxLineBytes,
		issues:       collector,
	}
}

// WithTrailingPolicy sets how a document missing its final blank line is handled.
func (p *Parser) WithTrailingPolicy(policy TrailingPolicy) *Parser {
	p.trailing = policy
	return p
}

// WithMaxLineBytes sets the longest line accepted. Longer lines make parsing fail.
func (p *Parser) WithMaxLineBytes(n int) *Parser {
	p.maxLineBytes = n
	return p
}

// Documents yields the documents of r in input order.
//
// Malformed lines are skipped and reported as issues.MalformedLine. An error is yielded (and the
// iteration ends) only on read failures or, with TrailingFail, on a truncated last document.
func (p *Parser) Documents(r io.Reader) iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		scanner := bufio.NewScanner(r)
		// The limit is only checked when the buffer grows, so it must not start larger.
		scanner.Buffer(make([]byte, 0, min(64*1024, p.maxLineBytes)), p.maxLineBytes)
		b := &builder{issues: p.issues}
		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := Classify(scanner.Text(), lineNumber)
			switch line.Kind {
			case LineBlank:
				if b.empty() {
					continue
				}
				if !yield(b.finalize(), nil) {
					return
				}
			case LineUnrecognized:
				p.issues.Add(issues.MalformedLine, b.id, lineNumber, "%v", line.Err)
			default:
				b.add(line)
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, errors.Wrapf(err, "reading line %d", lineNumber+1))
			return
		}
		if b.empty() {
			return
		}

		doc := b.finalize()
		switch p.trailing {
		case TrailingDrop:
			p.issues.Add(issues.TruncatedDocument, doc.ID, doc.Line, "no blank line after the last document, dropped")
		case TrailingFail:
			yield(nil, errors.Wrapf(ErrTruncatedDocument, "document %q starting at line %d has no terminating blank line",
				doc.ID, doc.Line))
		default:
			p.issues.Add(issues.TruncatedDocument, doc.ID, doc.Line, "no blank line after the last document, kept")
			yield(doc, nil)
		}
	}
}

// Parse reads all documents of r.
func (p *Parser) Parse(r io.Reader) ([]*Document, error) {
	var docs []*Document
	for doc, err := range p.Documents(r) {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
