// Package rulebased implements a deterministic English word tokenizer driven by punctuation rules.
//
// Words are separated by whitespace, then opening punctuation is split off the front, closing
// punctuation off the back, and hyphens, dashes and slashes inside a word become tokens of their
// own. This matches the way biomedical mentions such as "SARS-CoV-2" are annotated in PubTator
// corpora, where the dash is never part of an entity token.
package rulebased

import (
	"iter"
	"slices"
	"strings"
	"unicode"

	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/gomlx/go-pubtator/tokenizers/sentences"
)

const (
	prefixes = `([{<"'“‘`
	suffixes = `)]}>"',;:!?%”’`
	infixes  = "-–—/"
)

// Tokenizer implements api.Tokenizer with punctuation rules.
type Tokenizer struct {
	splitSentences bool
}

// Compile time assert that Tokenizer implements api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// New returns a rule-based tokenizer that splits sentences.
func New() *Tokenizer {
	return &Tokenizer{splitSentences: true}
}

// WithSentenceSplitting enables or disables sentence splitting. When disabled, the whole text is
// returned as one sentence.
func (t *Tokenizer) WithSentenceSplitting(enabled bool) *Tokenizer {
	t.splitSentences = enabled
	return t
}

// Sentences implements api.Tokenizer.
func (t *Tokenizer) Sentences(text string) iter.Seq[api.Sentence] {
	tokens := Tokenize(text)
	if t.splitSentences {
		return sentences.Split(tokens)
	}
	return sentences.Single(tokens)
}

// Tokenize splits text into tokens with character offsets. Token IDs are left at 0.
func Tokenize(text string) []api.Token {
	runes := []rune(text)
	var tokens []api.Token
	start := -1
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && !unicode.IsSpace(runes[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = splitWord(tokens, runes, start, i)
			start = -1
		}
	}
	return tokens
}

// splitWord appends the tokens of the whitespace-free word runes[lo:hi].
func splitWord(tokens []api.Token, runes []rune, lo, hi int) []api.Token {
	emit := func(start, end int) {
		tokens = append(tokens, api.Token{Text: string(runes[start:end]), Start: start, End: end})
	}

	for hi-lo > 1 && strings.ContainsRune(prefixes, runes[lo]) {
		emit(lo, lo+1)
		lo++
	}

	// Suffix positions are collected from the end, so they are emitted backwards.
	var suffixStarts []int
	for hi-lo > 1 && isSuffix(runes[lo:hi]) {
		hi--
		suffixStarts = append(suffixStarts, hi)
	}

	segment := lo
	for i := lo; i < hi; i++ {
		if !strings.ContainsRune(infixes, runes[i]) {
			continue
		}
		if segment < i {
			emit(segment, i)
		}
		emit(i, i+1)
		segment = i + 1
	}
	if segment < hi {
		emit(segment, hi)
	}

	for _, start := range slices.Backward(suffixStarts) {
		emit(start, start+1)
	}
	return tokens
}

// isSuffix reports whether the last rune of word should be split off.
// A final period is kept on words that already contain one ("e.g.", "U.S.").
func isSuffix(word []rune) bool {
	last := word[len(word)-1]
	if last == '.' {
		return !slices.Contains(word[:len(word)-1], '.')
	}
	return strings.ContainsRune(suffixes, last)
}
