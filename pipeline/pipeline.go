// Package pipeline converts PubTator input into output records.
//
// It wires the parser, the segmenter, the tokenizer, the aligner and the BIO conversion together:
//
//	p := pipeline.New(rulebased.New())
//	collection, err := p.Training(ctx, reader)
//	...
//	_, err = records.WriteFile("train.json", records.FormatAuto, collection)
package pipeline

import (
	"context"
	"io"
	"slices"

	"github.com/gomlx/go-pubtator/issues"
	"github.com/gomlx/go-pubtator/ner"
	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/records"
	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config holds the policies of the conversion. The zero value is the default configuration,
// processing documents sequentially.
type Config struct {
	Segmentation ner.SegmentationPolicy  `json:"segmentation"`
	UnknownTypes ner.UnknownTypePolicy   `json:"unknown_types"`
	Trailing     pubtator.TrailingPolicy `json:"trailing"`

	// Workers is the number of documents processed concurrently. Values below 2 mean sequential
	// processing. Output order is always the input order.
	Workers int `json:"workers"`
}

// TraceFn is called for every processed document, in input order. record is nil in inference mode.
type TraceFn func(doc *pubtator.Document, record *records.TrainingRecord)

// Preprocessor converts documents to records. It runs one conversion at a time: Training and
// Inference reset the issues of the previous run.
type Preprocessor struct {
	tokenizer api.Tokenizer
	config    Config
	issues    *issues.Collector
	segmenter *ner.Segmenter
	aligner   *ner.Aligner
	trace     TraceFn
}

// New creates a Preprocessor with the default Config, using tokenizer both for the documents and
// for the entity mentions.
func New(tokenizer api.Tokenizer) *Preprocessor {
	p := &Preprocessor{
		tokenizer: tokenizer,
		issues:    issues.NewCollector(),
	}
	return p.WithConfig(Config{})
}

// WithConfig sets the conversion policies.
func (p *Preprocessor) WithConfig(config Config) *Preprocessor {
	p.config = config
	p.segmenter = ner.NewSegmenter(p.tokenizer, p.issues).WithPolicy(config.Segmentation)
	p.aligner = ner.NewAligner(p.issues).WithUnknownTypePolicy(config.UnknownTypes)
	return p
}

// WithTrace sets a function called for every processed document.
func (p *Preprocessor) WithTrace(trace TraceFn) *Preprocessor {
	p.trace = trace
	return p
}

// Config returns the current configuration.
func (p *Preprocessor) Config() Config {
	return p.config
}

// Issues returns the collector of the issues found by the last Training or Inference call (plus
// those of Document calls made since).
func (p *Preprocessor) Issues() *issues.Collector {
	return p.issues
}

// Document converts one document to its labeled form.
func (p *Preprocessor) Document(doc *pubtator.Document) (records.TrainingRecord, error) {
	annotations := p.segmenter.Segment(doc)
	sentences := slices.Collect(p.tokenizer.Sentences(doc.FullText))
	if sentences == nil {
		sentences = []api.Sentence{}
	}
	tokens := api.Flatten(slices.Values(sentences))
	ioTags, err := p.aligner.Align(doc.ID, tokens, annotations)
	if err != nil {
		return records.TrainingRecord{}, errors.WithMessagef(err, "document starting at line %d", doc.Line)
	}
	texts := make([]string, len(tokens))
	for i, token := range tokens {
		texts[i] = token.Text
	}
	return records.TrainingRecord{
		PMID:        doc.ID,
		Tokens:      sentences,
		Sentences:   texts,
		FullText:    doc.FullText,
		Title:       doc.Title,
		Abstract:    doc.Abstract,
		NERTags:     ioTags,
		BIONERTags:  ner.ToBIO(ioTags),
		Annotations: annotations,
	}, nil
}

// InferenceDocument converts one document to its unlabeled form.
func InferenceDocument(doc *pubtator.Document) records.InferenceRecord {
	return records.InferenceRecord{
		PMID:     doc.ID,
		Text:     doc.FullText,
		Title:    doc.Title,
		Abstract: doc.Abstract,
	}
}

// parser returns a parser for a new run, whose issues replace those of the previous one.
func (p *Preprocessor) parser() *pubtator.Parser {
	p.issues.Reset()
	return pubtator.NewParser(p.issues).WithTrailingPolicy(p.config.Trailing)
}

// Training converts all documents of r to labeled records.
func (p *Preprocessor) Training(ctx context.Context, r io.Reader) (*records.Collection[records.TrainingRecord], error) {
	var trace func(*pubtator.Document, records.TrainingRecord)
	if p.trace != nil {
		trace = func(doc *pubtator.Document, record records.TrainingRecord) { p.trace(doc, &record) }
	}
	return run(ctx, p.parser().Documents(r), p.config.Workers, p.Document, trace)
}

// Inference converts all documents of r to unlabeled records. Annotations are ignored.
func (p *Preprocessor) Inference(ctx context.Context, r io.Reader) (*records.Collection[records.InferenceRecord], error) {
	var trace func(*pubtator.Document, records.InferenceRecord)
	if p.trace != nil {
		trace = func(doc *pubtator.Document, _ records.InferenceRecord) { p.trace(doc, nil) }
	}
	convert := func(doc *pubtator.Document) (records.InferenceRecord, error) {
		return InferenceDocument(doc), nil
	}
	return run(ctx, p.parser().Documents(r), p.config.Workers, convert, trace)
}

// progressEvery is the number of documents between progress log lines.
const progressEvery = 10_000

func logProgress(n int) {
	if n%progressEvery == 0 {
		klog.V(1).Infof("%d documents processed", n)
	}
}
