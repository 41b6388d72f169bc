// Package records defines the output records of the conversion and writes them as JSON or Parquet.
//
// The JSON layout, a single object whose "records" key holds the records in input order, and its
// field names are those of the LitCovid NER datasets, and must not change.
package records

import (
	"github.com/gomlx/go-pubtator/ner"
	"github.com/gomlx/go-pubtator/tokenizers/api"
)

// TrainingRecord is the labeled form of a document.
type TrainingRecord struct {
	PMID string `json:"PMID"`

	// Tokens of FullText, grouped by sentence.
	Tokens []api.Sentence `json:"tokens"`

	// Sentences holds the text of all tokens, flattened.
	Sentences []string `json:"sentences"`

	FullText string `json:"full_text"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`

	// NERTags and BIONERTags have one entry per token.
	NERTags    []ner.IOTag  `json:"ner_tags"`
	BIONERTags []ner.BIOTag `json:"bio_ner_tags"`

	// Annotations are the single-token annotations the tags were derived from. They are only
	// kept for diagnostics, and are not encoded.
	Annotations []ner.Annotation `json:"-"`
}

// InferenceRecord is the unlabeled form of a document.
type InferenceRecord struct {
	PMID     string `json:"PMID" parquet:"PMID"`
	Text     string `json:"Text" parquet:"Text"`
	Title    string `json:"Title" parquet:"Title"`
	Abstract string `json:"Abstract" parquet:"Abstract"`
}

// Record is the constraint satisfied by the output records.
type Record interface {
	TrainingRecord | InferenceRecord
}

// Collection holds records in document arrival order.
type Collection[R Record] struct {
	Records []R `json:"records"`
}

// NewCollection returns an empty collection. It is encoded with an empty (not null) "records" list.
func NewCollection[R Record]() *Collection[R] {
	return &Collection[R]{Records: []R{}}
}

// Append adds records at the end of the collection.
func (c *Collection[R]) Append(records ...R) {
	c.Records = append(c.Records, records...)
}

// Len returns the number of records.
func (c *Collection[R]) Len() int {
	return len(c.Records)
}
