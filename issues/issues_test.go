package issues

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Add(MalformedLine, "", 3, "too short: %q", "ab")
	c.Add(UnknownEntityType, "42", 0, "type %q", "Drug")
	c.Add(MalformedLine, "42", 7, "bad offsets")

	assert.Equal(t, 2, c.Count(MalformedLine))
	assert.Equal(t, 1, c.Count(UnknownEntityType))
	assert.Equal(t, 0, c.Count(TruncatedDocument))
	assert.Equal(t, 3, c.Total())
	assert.Equal(t, map[string]int{"MalformedLine": 2, "UnknownEntityType": 1}, c.Counts())
	assert.Equal(t, []Kind{MalformedLine, UnknownEntityType}, c.SortedKinds())

	all := c.Issues()
	assert.Len(t, all, 3)
	assert.Equal(t, `MalformedLine line 3: too short: "ab"`, all[0].String())
	assert.Equal(t, `UnknownEntityType document 42: type "Drug"`, all[1].String())
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Add(TruncatedDocument, "1", 0, "dropped")
	assert.Equal(t, 0, c.Count(TruncatedDocument))
	assert.Equal(t, 0, c.Total())
	assert.Nil(t, c.Issues())
	assert.Empty(t, c.Counts())
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				c.Add(ConflictingSpan, "1", 0, "conflict")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 80, c.Count(ConflictingSpan))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NonNormalizedText", NonNormalizedText.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.Add(MalformedLine, "1", 3, "bad")
	c.Add(TruncatedDocument, "1", 4, "cut")
	c.Reset()
	assert.Zero(t, c.Total())
	assert.Zero(t, c.Count(MalformedLine))
	assert.Empty(t, c.Counts())
	assert.Empty(t, c.SortedKinds())

	var nilCollector *Collector
	nilCollector.Reset()
}
