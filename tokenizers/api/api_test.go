package api

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharIndex(t *testing.T) {
	assert.Equal(t, []int{0}, CharIndex(""))
	assert.Equal(t, []int{0, 1, 2}, CharIndex("ab"))
	// "é" takes two bytes.
	assert.Equal(t, []int{0, 1, 1, 2, 3, 4}, CharIndex("aé b"))
}

func TestTokensFromSpans(t *testing.T) {
	text := "aé b"
	tokens := TokensFromSpans(text, []TokenSpan{
		{Start: 0, End: 3},
		{Start: 3, End: 3}, // empty, skipped
		{Start: 4, End: 5},
		{Start: 4, End: 9}, // out of range, skipped
	})
	assert.Equal(t, []Token{
		{Text: "aé", Start: 0, End: 2},
		{Text: "b", Start: 3, End: 4},
	}, tokens)
}

func TestRenumberAndFlatten(t *testing.T) {
	first := Renumber([]Token{{Text: "a"}, {Text: "b"}})
	second := Renumber([]Token{{Text: "c"}})
	assert.Equal(t, []int{1, 2}, []int{first[0].ID, first[1].ID})
	assert.Equal(t, 1, second[0].ID)

	tokens := Flatten(slices.Values([]Sentence{first, second}))
	assert.Len(t, tokens, 3)
	assert.Equal(t, "c", tokens[2].Text)
	assert.Empty(t, Flatten(slices.Values([]Sentence(nil))))
}
