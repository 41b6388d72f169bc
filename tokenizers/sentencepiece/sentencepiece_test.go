package sentencepiece

import (
	"path/filepath"
	"testing"

	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpansFromPieces(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		pieces []string
		want   []api.TokenSpan
	}{
		{
			name:   "words and sub-words",
			text:   "Hello world",
			pieces: []string{"▁Hello", "▁wor", "ld"},
			want:   []api.TokenSpan{{Start: 0, End: 5}, {Start: 6, End: 9}, {Start: 9, End: 11}},
		},
		{
			name:   "standalone space piece",
			text:   "a  b",
			pieces: []string{"▁a", "▁", "b"},
			want:   []api.TokenSpan{{Start: 0, End: 1}, {Start: 2, End: 3}, {Start: 3, End: 4}},
		},
		{
			name:   "unknown piece advances",
			text:   "ab",
			pieces: []string{"<0x00>"},
			want:   []api.TokenSpan{{Start: 0, End: 2}},
		},
		{
			name:   "multi-byte text",
			text:   "café au",
			pieces: []string{"▁café", "▁au"},
			want:   []api.TokenSpan{{Start: 0, End: 5}, {Start: 6, End: 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spansFromPieces(tt.text, tt.pieces))
		})
	}
}

func TestFindSubstring(t *testing.T) {
	assert.Equal(t, 6, findSubstring("hello world", "world", 0))
	assert.Equal(t, -1, findSubstring("hello world", "hello", 1))
	assert.Equal(t, -1, findSubstring("abc", "c", 3))
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "tokenizer.model"))
	require.Error(t, err)
}
