package records

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-pubtator/ner"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// Format of the encoded records.
type Format int

const (
	// FormatAuto selects the format from the output file name, see FormatFromPath.
	FormatAuto Format = iota
	FormatJSON
	FormatParquet
)

var formatNames = map[Format]string{
	FormatAuto:    "auto",
	FormatJSON:    "json",
	FormatParquet: "parquet",
}

// String implements fmt.Stringer.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	for format, name := range formatNames {
		if strings.EqualFold(name, string(text)) {
			*f = format
			return nil
		}
	}
	return errors.Errorf("unknown output format %q, valid values are auto, json and parquet", text)
}

// FormatFromPath returns FormatParquet for paths ending in ".parquet" (optionally followed by
// ".xz"), and FormatJSON otherwise.
func FormatFromPath(path string) Format {
	path = strings.TrimSuffix(path, ".xz")
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return FormatParquet
	}
	return FormatJSON
}

// Encode writes collection to w in the given format. FormatAuto is taken as FormatJSON.
func Encode[R Record](w io.Writer, format Format, collection *Collection[R]) error {
	if format == FormatParquet {
		return encodeParquet(w, collection.Records)
	}
	if collection.Records == nil {
		collection = NewCollection[R]()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(collection), "failed to encode records as JSON")
}

// trainingRow is the Parquet layout of a TrainingRecord: tokens are flattened, each one keeping
// the index of its sentence.
type trainingRow struct {
	PMID       string     `parquet:"PMID"`
	Tokens     []tokenRow `parquet:"tokens,list"`
	Sentences  []string   `parquet:"sentences,list"`
	FullText   string     `parquet:"full_text"`
	Title      string     `parquet:"title"`
	Abstract   string     `parquet:"abstract"`
	NERTags    []int32    `parquet:"ner_tags,list"`
	BIONERTags []int32    `parquet:"bio_ner_tags,list"`
}

type tokenRow struct {
	Sentence int32  `parquet:"sentence"`
	ID       int32  `parquet:"id"`
	Text     string `parquet:"text"`
	Start    int32  `parquet:"start_char"`
	End      int32  `parquet:"end_char"`
}

func toTrainingRow(record TrainingRecord) trainingRow {
	var tokens []tokenRow
	for sentenceIdx, sentence := range record.Tokens {
		for _, token := range sentence {
			tokens = append(tokens, tokenRow{
				Sentence: int32(sentenceIdx),
				ID:       int32(token.ID),
				Text:     token.Text,
				Start:    int32(token.Start),
				End:      int32(token.End),
			})
		}
	}
	return trainingRow{
		PMID:       record.PMID,
		Tokens:     tokens,
		Sentences:  record.Sentences,
		FullText:   record.FullText,
		Title:      record.Title,
		Abstract:   record.Abstract,
		NERTags:    sliceMap(record.NERTags, func(t ner.IOTag) int32 { return int32(t) }),
		BIONERTags: sliceMap(record.BIONERTags, func(t ner.BIOTag) int32 { return int32(t) }),
	}
}

func encodeParquet[R Record](w io.Writer, records []R) error {
	switch typed := any(records).(type) {
	case []TrainingRecord:
		return writeParquet(w, sliceMap(typed, toTrainingRow))
	case []InferenceRecord:
		return writeParquet(w, typed)
	}
	return errors.Errorf("no Parquet layout for records of type %T", records)
}

func writeParquet[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		return errors.Wrap(err, "failed to write Parquet rows")
	}
	return errors.Wrap(writer.Close(), "failed to close Parquet writer")
}

// sliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func sliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}
