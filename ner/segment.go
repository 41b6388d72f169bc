package ner

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gomlx/go-pubtator/issues"
	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/pkg/errors"
)

// Annotation is a single-token entity annotation, in character offsets of the document full text.
type Annotation struct {
	Start, End int
	Text       string
	Type       string
	Line       int // input line of the raw annotation
}

// SegmentationPolicy tells which mentions are re-tokenized into one Annotation per token.
type SegmentationPolicy int

const (
	// SegmentAlways re-tokenizes every mention, even single words, so that punctuation attached to
	// a mention is split off the same way it is in the document text.
	SegmentAlways SegmentationPolicy = iota

	// SegmentMultiToken only re-tokenizes mentions containing whitespace or a "-". Other mentions
	// are used as a single annotation spanning the whole mention.
	SegmentMultiToken
)

var segmentationPolicyNames = map[SegmentationPolicy]string{
	SegmentAlways:     "always",
	SegmentMultiToken: "multi-token",
}

// String implements fmt.Stringer.
func (p SegmentationPolicy) String() string {
	if name, ok := segmentationPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SegmentationPolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p SegmentationPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SegmentationPolicy) UnmarshalText(text []byte) error {
	for policy, name := range segmentationPolicyNames {
		if strings.EqualFold(name, string(text)) {
			*p = policy
			return nil
		}
	}
	return errors.Errorf("unknown segmentation policy %q, valid values are always and multi-token", text)
}

// Segmenter splits the raw annotations of a document into single-token annotations.
type Segmenter struct {
	tokenizer api.Tokenizer
	policy    SegmentationPolicy
	issues    *issues.Collector
}

// NewSegmenter creates a Segmenter using SegmentAlways. Mentions are tokenized with tokenizer,
// which should be the one used on the document text, so that spans match.
// Issues are reported to collector, which may be nil.
func NewSegmenter(tokenizer api.Tokenizer, collector *issues.Collector) *Segmenter {
	return &Segmenter{tokenizer: tokenizer, issues: collector}
}

// WithPolicy sets the segmentation policy.
func (s *Segmenter) WithPolicy(policy SegmentationPolicy) *Segmenter {
	s.policy = policy
	return s
}

// Segment returns the annotations of all raw annotations of doc, in order.
func (s *Segmenter) Segment(doc *pubtator.Document) []Annotation {
	var annotations []Annotation
	for _, raw := range doc.Annotations {
		annotations = s.appendAnnotations(annotations, doc.ID, raw)
	}
	return annotations
}

// SegmentAnnotation returns the annotations of one raw annotation of document docID.
func (s *Segmenter) SegmentAnnotation(docID string, raw pubtator.RawAnnotation) []Annotation {
	return s.appendAnnotations(nil, docID, raw)
}

func (s *Segmenter) appendAnnotations(annotations []Annotation, docID string, raw pubtator.RawAnnotation) []Annotation {
	if !s.needsSegmentation(raw.Mention) {
		return append(annotations, normalize(Annotation{Start: raw.Start, End: raw.End, Text: raw.Mention, Type: raw.Type, Line: raw.Line}))
	}
	for sentence := range s.tokenizer.Sentences(raw.Mention) {
		for _, token := range sentence {
			if token.Text == "-" {
				continue
			}
			annotation := Annotation{
				Start: raw.Start + token.Start,
				End:   raw.Start + token.End,
				Text:  token.Text,
				Type:  raw.Type,
				Line:  raw.Line,
			}
			if annotation.End > raw.End {
				s.issues.Add(issues.SpanOutsideMention, docID, raw.Line,
					"token %q of mention %q at [%d, %d) ends past the annotated span [%d, %d)",
					token.Text, raw.Mention, annotation.Start, annotation.End, raw.Start, raw.End)
				continue
			}
			annotations = append(annotations, normalize(annotation))
		}
	}
	return annotations
}

func (s *Segmenter) needsSegmentation(mention string) bool {
	if s.policy == SegmentAlways {
		return true
	}
	return strings.ContainsFunc(mention, func(r rune) bool { return r == '-' || unicode.IsSpace(r) })
}

// normalize trims the text fields of annotation and keeps only their letters and digits.
func normalize(annotation Annotation) Annotation {
	annotation.Text = alphanumeric(annotation.Text)
	annotation.Type = alphanumeric(annotation.Type)
	return annotation
}

func alphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(s))
}
