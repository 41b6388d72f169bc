package ner

import (
	"testing"

	"github.com/gomlx/go-pubtator/issues"
	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/tokenizers/rulebased"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentMultiWordMention(t *testing.T) {
	collector := issues.NewCollector()
	segmenter := NewSegmenter(rulebased.New(), collector)
	got := segmenter.SegmentAnnotation("1", pubtator.RawAnnotation{
		Start: 5, End: 25, Mention: "yellow fever vaccine", Type: "Strain", Line: 4,
	})
	assert.Equal(t, []Annotation{
		{Start: 5, End: 11, Text: "yellow", Type: "Strain", Line: 4},
		{Start: 12, End: 17, Text: "fever", Type: "Strain", Line: 4},
		{Start: 18, End: 25, Text: "vaccine", Type: "Strain", Line: 4},
	}, got)
	assert.Zero(t, collector.Total())
}

func TestSegmentMentionLongerThanSpan(t *testing.T) {
	// The span [5, 20) is shorter than the 20 characters of the mention: the last word ends at 25.
	collector := issues.NewCollector()
	got := NewSegmenter(rulebased.New(), collector).SegmentAnnotation("1", pubtator.RawAnnotation{
		Start: 5, End: 20, Mention: "yellow fever vaccine", Type: "Strain",
	})
	require.Len(t, got, 2)
	assert.Equal(t, "fever", got[1].Text)
	assert.Equal(t, 1, collector.Count(issues.SpanOutsideMention))
}

func TestSegmentDropsDashes(t *testing.T) {
	got := NewSegmenter(rulebased.New(), nil).SegmentAnnotation("1", pubtator.RawAnnotation{
		Start: 10, End: 18, Mention: "covid-19", Type: "Vaccine",
	})
	assert.Equal(t, []Annotation{
		{Start: 10, End: 15, Text: "covid", Type: "Vaccine"},
		{Start: 16, End: 18, Text: "19", Type: "Vaccine"},
	}, got)
	for _, annotation := range got {
		assert.NotEqual(t, "-", annotation.Text)
	}
}

func TestSegmentPolicies(t *testing.T) {
	raw := pubtator.RawAnnotation{Start: 3, End: 11, Mention: "vaccine.", Type: " Vaccine "}

	// Re-tokenizing splits off the period, which keeps its own annotation with an empty text.
	always := NewSegmenter(rulebased.New(), nil).SegmentAnnotation("1", raw)
	assert.Equal(t, []Annotation{
		{Start: 3, End: 10, Text: "vaccine", Type: "Vaccine"},
		{Start: 10, End: 11, Text: "", Type: "Vaccine"},
	}, always)

	// A single word is used as is, but its fields are still normalized.
	single := NewSegmenter(rulebased.New(), nil).WithPolicy(SegmentMultiToken).SegmentAnnotation("1", raw)
	assert.Equal(t, []Annotation{{Start: 3, End: 11, Text: "vaccine", Type: "Vaccine"}}, single)

	multi := NewSegmenter(rulebased.New(), nil).WithPolicy(SegmentMultiToken).SegmentAnnotation("1",
		pubtator.RawAnnotation{Start: 0, End: 7, Mention: "BNT-162", Type: "Vaccine"})
	assert.Len(t, multi, 2)
}

func TestSegmentDocument(t *testing.T) {
	doc := &pubtator.Document{
		ID: "9",
		Annotations: []pubtator.RawAnnotation{
			{Start: 0, End: 4, Mention: "Test", Type: "Vaccine"},
			{Start: 5, End: 16, Mention: "mRNA-1273", Type: "Vaccine Funder"},
		},
	}
	got := NewSegmenter(rulebased.New(), nil).Segment(doc)
	assert.Equal(t, []Annotation{
		{Start: 0, End: 4, Text: "Test", Type: "Vaccine"},
		{Start: 5, End: 9, Text: "mRNA", Type: "VaccineFunder"},
		{Start: 10, End: 14, Text: "1273", Type: "VaccineFunder"},
	}, got)
}

func TestSegmentationPolicyText(t *testing.T) {
	var policy SegmentationPolicy
	require.NoError(t, policy.UnmarshalText([]byte("Multi-Token")))
	assert.Equal(t, SegmentMultiToken, policy)
	text, err := SegmentAlways.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "always", string(text))
	assert.Error(t, policy.UnmarshalText([]byte("never")))
}
