// Package hftokenizer splits text into words following the pre-tokenizer of a HuggingFace
// tokenizer.json file.
//
// Only the pre-tokenization step is used: it decides where word boundaries fall, which is what
// character-span alignment needs. Vocabulary lookups (WordPiece, BPE, Unigram) would split words
// further into sub-word pieces that PubTator annotations never refer to.
package hftokenizer

import (
	"encoding/json"
	"iter"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/gomlx/go-pubtator/hub"
	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/gomlx/go-pubtator/tokenizers/sentences"
	"github.com/pkg/errors"
)

// TokenizerJSON represents the parts of HuggingFace's tokenizer.json file used here.
type TokenizerJSON struct {
	Version      string        `json:"version"`
	PreTokenizer *PreTokenizer `json:"pre_tokenizer"`
	Model        Model         `json:"model"`
}

// PreTokenizer represents the pre-tokenizer configuration.
type PreTokenizer struct {
	Type             string         `json:"type"`
	AddPrefixSpace   bool           `json:"add_prefix_space"`
	PreTokenizers    []PreTokenizer `json:"pretokenizers"`
	IndividualDigits bool           `json:"individual_digits"`
}

// Model only carries the model type, for diagnostics.
type Model struct {
	Type string `json:"type"`
}

// Tokenizer implements api.Tokenizer for HuggingFace tokenizer.json files.
type Tokenizer struct {
	tokenizer      *TokenizerJSON
	splitSentences bool
}

// Compile time assert that Tokenizer implements api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// Compile time assert that Tokenizer implements api.TokenizerWithSpans interface.
var _ api.TokenizerWithSpans = &Tokenizer{}

// New creates a tokenizer from the "tokenizer.json" file of a hub repository.
func New(repo *hub.Repo) (*Tokenizer, error) {
	tokenizerFile, err := repo.DownloadFile("tokenizer.json")
	if err != nil {
		return nil, errors.Wrapf(err, "can't download tokenizer.json file")
	}
	return NewFromFile(tokenizerFile)
}

// NewFromFile creates a tokenizer from a local tokenizer.json file path.
func NewFromFile(filePath string) (*Tokenizer, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tokenizer.json file %q", filePath)
	}
	return NewFromContent(content)
}

// NewFromContent creates a tokenizer from tokenizer.json content.
func NewFromContent(content []byte) (*Tokenizer, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer.json")
	}
	return &Tokenizer{tokenizer: &tj, splitSentences: true}, nil
}

// WithSentenceSplitting enables or disables sentence splitting (enabled by default).
func (t *Tokenizer) WithSentenceSplitting(enabled bool) *Tokenizer {
	t.splitSentences = enabled
	return t
}

// GetTokenizerType returns the model type (WordPiece, BPE, Unigram).
func (t *Tokenizer) GetTokenizerType() string {
	return t.tokenizer.Model.Type
}

// Sentences implements api.Tokenizer.
func (t *Tokenizer) Sentences(text string) iter.Seq[api.Sentence] {
	tokens := api.TokensFromSpans(text, t.PreTokenize(text))
	if t.splitSentences {
		return sentences.Split(tokens)
	}
	return sentences.Single(tokens)
}

// EncodeWithSpans implements api.TokenizerWithSpans. IDs are not set.
func (t *Tokenizer) EncodeWithSpans(text string) api.EncodingResult {
	return api.EncodingResult{Spans: t.PreTokenize(text)}
}

// PreTokenize splits text into words, returned as byte spans.
func (t *Tokenizer) PreTokenize(text string) []api.TokenSpan {
	whole := []api.TokenSpan{{Start: 0, End: len(text)}}
	if t.tokenizer.PreTokenizer == nil {
		// Default: split on whitespace
		return applyPreTokenizer(text, whole, &PreTokenizer{Type: "WhitespaceSplit"})
	}
	return applyPreTokenizer(text, whole, t.tokenizer.PreTokenizer)
}

func applyPreTokenizer(text string, spans []api.TokenSpan, pt *PreTokenizer) []api.TokenSpan {
	if pt.Type == "Sequence" {
		for _, child := range pt.PreTokenizers {
			childCopy := child
			spans = applyPreTokenizer(text, spans, &childCopy)
		}
		return spans
	}

	var result []api.TokenSpan
	for _, span := range spans {
		switch pt.Type {
		case "BertPreTokenizer":
			// Split on whitespace and punctuation
			result = splitRunes(text, span, result, isWhitespace, isPunctuation, nil)
		case "Whitespace":
			// Same as the regex \w+|[^\w\s]+
			result = splitRunes(text, span, result, isWhitespace, nil, isWordRune)
		case "Punctuation":
			result = splitRunes(text, span, result, nil, isPunctuation, nil)
		case "Digits":
			if pt.IndividualDigits {
				result = splitRunes(text, span, result, nil, unicode.IsDigit, nil)
			} else {
				result = splitRunes(text, span, result, nil, nil, unicode.IsDigit)
			}
		default:
			// WhitespaceSplit, Metaspace, ByteLevel and Split all end up splitting words at spaces;
			// the space markers they add are not part of the original text.
			result = splitRunes(text, span, result, isWhitespace, nil, nil)
		}
	}
	return result
}

// splitRunes splits text[span.Start:span.End] and appends the resulting spans to result:
//   - runes matching drop separate words and are discarded;
//   - runes matching isolate become single-rune words;
//   - if class is given, a word also ends where class changes between consecutive runes.
func splitRunes(text string, span api.TokenSpan, result []api.TokenSpan,
	drop, isolate, class func(rune) bool) []api.TokenSpan {
	start := -1
	var startClass bool
	flush := func(end int) {
		if start >= 0 && end > start {
			result = append(result, api.TokenSpan{Start: start, End: end})
		}
		start = -1
	}

	for pos := span.Start; pos < span.End; {
		r, size := utf8.DecodeRuneInString(text[pos:span.End])
		switch {
		case drop != nil && drop(r):
			flush(pos)
		case isolate != nil && isolate(r):
			flush(pos)
			result = append(result, api.TokenSpan{Start: pos, End: pos + size})
		default:
			if start >= 0 && class != nil && class(r) != startClass {
				flush(pos)
			}
			if start < 0 {
				start = pos
				if class != nil {
					startClass = class(r)
				}
			}
		}
		pos += size
	}
	flush(span.End)
	return result
}

// Helper functions

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isPunctuation(r rune) bool {
	// ASCII punctuation
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
