// Package sentences groups a flat list of word tokens into sentences.
package sentences

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gomlx/go-pubtator/tokenizers/api"
)

// Split yields the sentences of tokens, in order.
//
// A token ".", "!", "?" or "..." ends a sentence when the following token starts with an upper-case
// letter, a digit, or an opening bracket or quote. Token IDs are renumbered per sentence.
func Split(tokens []api.Token) iter.Seq[api.Sentence] {
	return func(yield func(api.Sentence) bool) {
		start := 0
		for i := 0; i+1 < len(tokens); i++ {
			if !isTerminator(tokens[i].Text) || !opensSentence(tokens[i+1].Text) {
				continue
			}
			if !yield(api.Renumber(tokens[start : i+1])) {
				return
			}
			start = i + 1
		}
		if start < len(tokens) {
			yield(api.Renumber(tokens[start:]))
		}
	}
}

// Single yields all tokens as one sentence, or nothing if there are no tokens.
func Single(tokens []api.Token) iter.Seq[api.Sentence] {
	return func(yield func(api.Sentence) bool) {
		if len(tokens) > 0 {
			yield(api.Renumber(tokens))
		}
	}
}

func isTerminator(text string) bool {
	switch text {
	case ".", "!", "?", "...":
		return true
	}
	return false
}

func opensSentence(text string) bool {
	r, _ := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("([\"'“‘", r)
}
