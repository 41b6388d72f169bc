package pubtator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LineKind classifies a line of PubTator input.
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line: the document delimiter.
	LineBlank LineKind = iota
	// LineTitle is a "<id>|t|<title>" line.
	LineTitle
	// LineAbstract is a "<id>|a|<abstract>" line.
	LineAbstract
	// LineAnnotation is a "<id>\t<start>\t<end>\t<mention>\t<type>" row.
	LineAnnotation
	// LineUnrecognized is any other line. Line.Err tells why.
	LineUnrecognized
)

// String implements fmt.Stringer.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "Blank"
	case LineTitle:
		return "Title"
	case LineAbstract:
		return "Abstract"
	case LineAnnotation:
		return "Annotation"
	case LineUnrecognized:
		return "Unrecognized"
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

const (
	titleMarker    = "|t|"
	abstractMarker = "|a|"

	// markerWindow is how far after the identifier the title/abstract marker is searched for.
	markerWindow = 15

	// minAnnotationLength is the shortest line accepted as an annotation row.
	minAnnotationLength = 5
)

// Line is a classified input line.
type Line struct {
	Kind   LineKind
	Number int    // 1-based line number
	Raw    string // line without its line terminator
	ID     string // leading digits, possibly empty

	// Body is the text after the marker of a title or abstract line.
	Body string

	// Annotation is set for LineAnnotation.
	Annotation RawAnnotation

	// Err is set for LineUnrecognized, and wraps ErrMalformedLine.
	Err error
}

// Classify parses one line of input. raw may include its "\n" or "\r\n" terminator.
func Classify(raw string, number int) Line {
	raw = strings.TrimRight(raw, "\r\n")
	line := Line{Number: number, Raw: raw}
	if strings.TrimSpace(raw) == "" {
		line.Kind = LineBlank
		return line
	}

	line.ID = leadingDigits(raw)
	rest := raw[len(line.ID):]
	window := rest[:min(markerWindow, len(rest))]
	titleAt := strings.Index(window, titleMarker)
	abstractAt := strings.Index(window, abstractMarker)
	switch {
	case titleAt >= 0 && (abstractAt < 0 || titleAt < abstractAt):
		line.Kind = LineTitle
		line.Body = rest[titleAt+len(titleMarker):]
		return line
	case abstractAt >= 0:
		line.Kind = LineAbstract
		line.Body = rest[abstractAt+len(abstractMarker):]
		return line
	}

	if len(raw) < minAnnotationLength {
		return unrecognized(line, "line too short (%d characters)", len(raw))
	}
	annotation, err := parseAnnotation(rest)
	if err != nil {
		line.Kind = LineUnrecognized
		line.Err = errors.WithMessagef(err, "line %d", number)
		return line
	}
	annotation.Line = number
	line.Kind = LineAnnotation
	line.Annotation = annotation
	return line
}

func unrecognized(line Line, format string, args ...any) Line {
	line.Kind = LineUnrecognized
	line.Err = errors.Wrapf(ErrMalformedLine, "line %d: "+format, append([]any{line.Number}, args...)...)
	return line
}

// leadingDigits returns the maximal run of ASCII digits at the start of s.
func leadingDigits(s string) string {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return s[:n]
}

// parseAnnotation parses the part of an annotation row after the identifier.
func parseAnnotation(rest string) (RawAnnotation, error) {
	rest = strings.TrimPrefix(rest, "\t")
	fields := strings.Split(rest, "\t")
	if len(fields) > 0 && fields[0] == "" {
		// Tolerates a duplicated delimiter after the identifier.
		fields = fields[1:]
	}
	if len(fields) < 4 {
		return RawAnnotation{}, errors.Wrapf(ErrMalformedLine, "expected 4 tab-separated fields, got %d", len(fields))
	}
	start, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return RawAnnotation{}, errors.Wrapf(ErrMalformedLine, "invalid start offset %q", fields[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return RawAnnotation{}, errors.Wrapf(ErrMalformedLine, "invalid end offset %q", fields[1])
	}
	if start < 0 || end < start {
		return RawAnnotation{}, errors.Wrapf(ErrMalformedLine, "invalid span [%d, %d)", start, end)
	}
	return RawAnnotation{
		Start:   start,
		End:     end,
		Mention: fields[2],
		Type:    strings.TrimSpace(fields[3]),
	}, nil
}
