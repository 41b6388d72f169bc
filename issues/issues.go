// Package issues collects the problems found while converting a corpus, so that none of them is
// silently absorbed: every issue is logged as a warning and counted per kind.
package issues

import (
	"fmt"
	"sync"

	"k8s.io/klog/v2"
)

// Kind of issue.
type Kind int

const (
	// MalformedLine is a non-blank line that is neither a title/abstract nor a valid annotation row.
	MalformedLine Kind = iota

	// UnknownEntityType is an annotation whose span matched a token but whose type label is not
	// one of the known entity classes.
	UnknownEntityType

	// TruncatedDocument is a document not terminated by a blank line at the end of the input.
	TruncatedDocument

	// ConflictingSpan is a token matched by annotations of different entity classes.
	ConflictingSpan

	// SpanOutsideMention is a mention sub-token whose span falls outside the annotated span.
	SpanOutsideMention

	// IdentifierMismatch is a line whose identifier differs from the rest of its document.
	IdentifierMismatch

	// NonNormalizedText is a title or abstract that is not in Unicode NFC form.
	NonNormalizedText

	numKinds
)

var kindNames = [numKinds]string{
	MalformedLine:      "MalformedLine",
	UnknownEntityType:  "UnknownEntityType",
	TruncatedDocument:  "TruncatedDocument",
	ConflictingSpan:    "ConflictingSpan",
	SpanOutsideMention: "SpanOutsideMention",
	IdentifierMismatch: "IdentifierMismatch",
	NonNormalizedText:  "NonNormalizedText",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Issue is one reported problem.
type Issue struct {
	Kind       Kind
	DocumentID string
	Line       int // 1-based input line, 0 if unknown
	Message    string
}

// String implements fmt.Stringer.
func (i Issue) String() string {
	location := ""
	if i.DocumentID != "" {
		location = " document " + i.DocumentID
	}
	if i.Line > 0 {
		location += fmt.Sprintf(" line %d", i.Line)
	}
	return fmt.Sprintf("%s%s: %s", i.Kind, location, i.Message)
}

// Collector accumulates issues. It is safe for concurrent use, and a nil *Collector only logs.
type Collector struct {
	mu     sync.Mutex
	issues []Issue
	counts [numKinds]int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add reports an issue: it's logged as a warning and recorded.
func (c *Collector) Add(kind Kind, documentID string, line int, format string, args ...any) {
	issue := Issue{Kind: kind, DocumentID: documentID, Line: line, Message: fmt.Sprintf(format, args...)}
	klog.Warning(issue.String())
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = append(c.issues, issue)
	if kind >= 0 && kind < numKinds {
		c.counts[kind]++
	}
}

// Reset discards all issues.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = nil
	c.counts = [numKinds]int{}
}

// Count returns the number of issues of the given kind.
func (c *Collector) Count(kind Kind) int {
	if c == nil || kind < 0 || kind >= numKinds {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[kind]
}

// Total returns the number of issues of all kinds.
func (c *Collector) Total() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issues)
}

// Issues returns a copy of all issues, in the order they were reported.
func (c *Collector) Issues() []Issue {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Counts returns the non-zero counts keyed by kind name.
func (c *Collector) Counts() map[string]int {
	counts := make(map[string]int)
	if c == nil {
		return counts
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, n := range c.counts {
		if n > 0 {
			counts[Kind(kind).String()] = n
		}
	}
	return counts
}

// SortedKinds returns the kinds with a non-zero count, in declaration order.
func (c *Collector) SortedKinds() []Kind {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var kinds []Kind
	for kind := range numKinds {
		if c.counts[kind] > 0 {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
