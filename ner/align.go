package ner

import (
	"fmt"
	"strings"

	"github.com/gomlx/go-pubtator/issues"
	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/pkg/errors"
)

// UnknownTypePolicy tells what to do with an annotation matching a token but whose type label is
// not recognized.
type UnknownTypePolicy int

const (
	// UnknownOutside ignores the annotation, reporting it as an issues.UnknownEntityType.
	UnknownOutside UnknownTypePolicy = iota

	// UnknownFail makes the alignment fail with an error wrapping ErrUnknownEntityType.
	UnknownFail
)

var unknownTypePolicyNames = map[UnknownTypePolicy]string{
	UnknownOutside: "outside",
	UnknownFail:    "fail",
}

// String implements fmt.Stringer.
func (p UnknownTypePolicy) String() string {
	if name, ok := unknownTypePolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("UnknownTypePolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p UnknownTypePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *UnknownTypePolicy) UnmarshalText(text []byte) error {
	for policy, name := range unknownTypePolicyNames {
		if strings.EqualFold(name, string(text)) {
			*p = policy
			return nil
		}
	}
	return errors.Errorf("unknown entity type policy %q, valid values are outside and fail", text)
}

// Aligner assigns IO tags to tokens from annotations with the exact same span.
type Aligner struct {
	unknown UnknownTypePolicy
	issues  *issues.Collector
}

// NewAligner creates an Aligner using UnknownOutside, reporting issues to collector (which may be nil).
func NewAligner(collector *issues.Collector) *Aligner {
	return &Aligner{issues: collector}
}

// WithUnknownTypePolicy sets how unrecognized type labels are handled.
func (a *Aligner) WithUnknownTypePolicy(policy UnknownTypePolicy) *Aligner {
	a.unknown = policy
	return a
}

type span struct {
	start, end int
}

// Align returns one IO tag per token.
//
// A token is tagged with the class of the first annotation whose (start, end) equals its own and
// whose type is recognized. Later matching annotations of a different class are reported as
// issues.ConflictingSpan.
func (a *Aligner) Align(docID string, tokens []api.Token, annotations []Annotation) ([]IOTag, error) {
	bySpan := make(map[span][]Annotation, len(annotations))
	for _, annotation := range annotations {
		key := span{annotation.Start, annotation.End}
		bySpan[key] = append(bySpan[key], annotation)
	}

	tags := make([]IOTag, len(tokens))
	for i, token := range tokens {
		for _, annotation := range bySpan[span{token.Start, token.End}] {
			tag, err := ParseEntityType(annotation.Type)
			if err != nil {
				if a.unknown == UnknownFail {
					return nil, errors.WithMessagef(err, "document %q, token %q at [%d, %d)",
						docID, token.Text, token.Start, token.End)
				}
				a.issues.Add(issues.UnknownEntityType, docID, annotation.Line,
					"annotation %q of type %q matches token %q at [%d, %d), left untagged",
					annotation.Text, annotation.Type, token.Text, token.Start, token.End)
				continue
			}
			switch tags[i] {
			case Outside:
				tags[i] = tag
			case tag:
			default:
				a.issues.Add(issues.ConflictingSpan, docID, annotation.Line,
					"token %q at [%d, %d) annotated as both %s and %s, keeping %s",
					token.Text, token.Start, token.End, tags[i], tag, tags[i])
			}
		}
	}
	return tags, nil
}
