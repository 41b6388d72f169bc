// Package api defines the Tokenizer API used by the alignment pipeline.
// It's kept apart from the implementations to break the cyclic dependency, and allow the users to
// import `tokenizers` and get the default implementations.
package api

import (
	"iter"
	"unicode/utf8"
)

// TokenSpan represents the byte span of a token in the original text.
// Start and End are byte offsets (not rune offsets), suitable for slicing
// Go strings directly: originalText[span.Start:span.End].
type TokenSpan struct {
	Start int // start byte position (inclusive)
	End   int // end byte position (exclusive)
}

// EncodingResult contains tokens with their spans in the original text.
type EncodingResult struct {
	IDs   []int       // token IDs, may be nil for tokenizers without a vocabulary
	Spans []TokenSpan // byte spans for each token (use originalText[span.Start:span.End] to extract)
}

// Token is a word-level token of a tokenized text.
//
// Start and End are character offsets (Unicode code points, not bytes) into the text that was
// tokenized, because PubTator annotation offsets count characters.
type Token struct {
	ID    int    `json:"id"` // 1-based position within its sentence
	Text  string `json:"text"`
	Start int    `json:"start_char"`
	End   int    `json:"end_char"`
}

// Sentence is an ordered sequence of tokens.
type Sentence []Token

// Tokenizer splits a text into sentences of tokens.
//
// Implementations must be deterministic, must not keep state between calls and must be safe for
// concurrent use.
type Tokenizer interface {
	Sentences(text string) iter.Seq[Sentence]
}

// TokenizerWithSpans is implemented by backends that only know the byte spans of their tokens.
// Use TokensFromSpans to convert their output to Token values.
type TokenizerWithSpans interface {
	// EncodeWithSpans returns tokens along with their byte spans in the original text.
	EncodeWithSpans(text string) EncodingResult
}

// Flatten collects all tokens of all sentences, in order.
func Flatten(sentences iter.Seq[Sentence]) []Token {
	var tokens []Token
	for sentence := range sentences {
		tokens = append(tokens, sentence...)
	}
	return tokens
}

// TokensFromSpans converts byte spans over text into tokens with character offsets.
// Empty spans and spans outside of text are skipped. IDs are left at 0, see Renumber.
func TokensFromSpans(text string, spans []TokenSpan) []Token {
	charAt := CharIndex(text)
	tokens := make([]Token, 0, len(spans))
	for _, span := range spans {
		if span.Start < 0 || span.End > len(text) || span.Start >= span.End {
			continue
		}
		tokens = append(tokens, Token{
			Text:  text[span.Start:span.End],
			Start: charAt[span.Start],
			End:   charAt[span.End],
		})
	}
	return tokens
}

// CharIndex maps every byte offset of text (including len(text)) to the character offset of the
// rune containing it.
func CharIndex(text string) []int {
	index := make([]int, len(text)+1)
	char := 0
	for pos := 0; pos < len(text); {
		_, size := utf8.DecodeRuneInString(text[pos:])
		for i := range size {
			index[pos+i] = char
		}
		pos += size
		char++
	}
	index[len(text)] = char
	return index
}

// Renumber returns a copy of tokens with IDs set to their 1-based position.
func Renumber(tokens []Token) Sentence {
	sentence := make(Sentence, len(tokens))
	for i, token := range tokens {
		token.ID = i + 1
		sentence[i] = token
	}
	return sentence
}
