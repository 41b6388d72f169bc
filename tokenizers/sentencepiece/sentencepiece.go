// Package sentencepiece implements api.Tokenizer based on a SentencePiece model.
//
// Tokens are SentencePiece pieces, so an annotated word may span several tokens. Use it when the
// records feed a model trained with the same SentencePiece vocabulary.
package sentencepiece

import (
	"iter"
	"strings"

	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/gomlx/go-pubtator/hub"
	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/gomlx/go-pubtator/tokenizers/sentences"
	"github.com/pkg/errors"
)

// metaspace is U+2581 (lower one eighth block), used by SentencePiece as the space replacement.
const metaspace = "▁"

// New creates a SentencePiece tokenizer based on the "tokenizer.model" file of a hub repository,
// which must be a SentencePiece Model proto.
func New(repo *hub.Repo) (*Tokenizer, error) {
	tokenizerFile, err := repo.DownloadFile("tokenizer.model")
	if err != nil {
		return nil, errors.Wrapf(err, "can't download tokenizer.model file")
	}
	return NewFromFile(tokenizerFile)
}

// NewFromFile creates a SentencePiece tokenizer from a local model file.
func NewFromFile(filePath string) (*Tokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", filePath)
	}
	return &Tokenizer{
		Processor:      proc,
		Info:           proc.ModelInfo(),
		splitSentences: true,
	}, nil
}

// Tokenizer implements api.Tokenizer based on SentencePiece tokenizer by Google.
type Tokenizer struct {
	*esentencepiece.Processor
	Info *esentencepiece.ModelInfo

	splitSentences bool
}

// Compile time assert that sentencepiece.Tokenizer implements api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// Compile time assert that sentencepiece.Tokenizer implements api.TokenizerWithSpans interface.
var _ api.TokenizerWithSpans = &Tokenizer{}

// WithSentenceSplitting enables or disables sentence splitting (enabled by default).
func (p *Tokenizer) WithSentenceSplitting(enabled bool) *Tokenizer {
	p.splitSentences = enabled
	return p
}

// Sentences implements api.Tokenizer. Pieces that only stand for whitespace are skipped.
func (p *Tokenizer) Sentences(text string) iter.Seq[api.Sentence] {
	spans := p.EncodeWithSpans(text).Spans
	kept := spans[:0]
	for _, span := range spans {
		if strings.TrimSpace(text[span.Start:span.End]) != "" {
			kept = append(kept, span)
		}
	}
	tokens := api.TokensFromSpans(text, kept)
	if p.splitSentences {
		return sentences.Split(tokens)
	}
	return sentences.Single(tokens)
}

// EncodeWithSpans returns the text encoded into a sequence of ids along with their byte spans.
// It implements api.TokenizerWithSpans.
func (p *Tokenizer) EncodeWithSpans(text string) api.EncodingResult {
	tokens := p.Processor.Encode(text)
	ids := make([]int, len(tokens))
	pieces := make([]string, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
		pieces[i] = tok.Text
	}
	return api.EncodingResult{
		IDs:   ids,
		Spans: spansFromPieces(text, pieces),
	}
}

// spansFromPieces tracks the position in the original text by matching token pieces.
func spansFromPieces(text string, pieces []string) []api.TokenSpan {
	spans := make([]api.TokenSpan, len(pieces))
	pos := 0
	for i, piece := range pieces {
		matchPiece, hasLeadingSpace := strings.CutPrefix(piece, metaspace)

		// Skip any whitespace in the original text before this token
		if hasLeadingSpace {
			for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t' || text[pos] == '\n' || text[pos] == '\r') {
				pos++
			}
		}

		start := pos
		if matchPiece == "" {
			// Empty piece after removing metaspace: the token represents just the space.
			if hasLeadingSpace && start > 0 {
				spans[i] = api.TokenSpan{Start: start - 1, End: pos}
			} else {
				spans[i] = api.TokenSpan{Start: pos, End: pos}
			}
			continue
		}

		// Find the piece in the text starting from current position
		foundAt := findSubstring(text, matchPiece, pos)
		if foundAt >= 0 {
			start = foundAt
			pos = foundAt + len(matchPiece)
		} else {
			// Fallback: advance by piece length
			pos = min(pos+len(matchPiece), len(text))
		}
		spans[i] = api.TokenSpan{Start: start, End: pos}
	}
	return spans
}

// findSubstring finds the first occurrence of substr in s starting from position start.
// Returns the byte position of the match, or -1 if not found.
func findSubstring(s, substr string, start int) int {
	if start >= len(s) {
		return -1
	}
	idx := strings.Index(s[start:], substr)
	if idx < 0 {
		return -1
	}
	return start + idx
}
