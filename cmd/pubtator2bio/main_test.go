package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/gomlx/go-pubtator/issues"
	"github.com/gomlx/go-pubtator/ner"
	"github.com/gomlx/go-pubtator/pipeline"
	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/records"
	"github.com/gomlx/go-pubtator/tokenizers/rulebased"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInput = "1|t|Test vaccine study\n1|a|We studied the vaccine.\n" +
	"1\t5\t12\tvaccine\tVaccine\n1\t34\t41\tvaccine\tVaccine\n\n"

func parse(t *testing.T, args ...string) (*CLI, *kong.Context, error) {
	t.Helper()
	cli := &CLI{}
	parser, err := newParser(cli, kong.BindTo(context.Background(), (*context.Context)(nil)))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	return cli, kctx, err
}

func TestParseDefaults(t *testing.T) {
	cli, kctx, err := parse(t, "train", "in.txt", "out.json")
	require.NoError(t, err)
	assert.Equal(t, "train <input> <output>", kctx.Command())
	assert.Equal(t, "in.txt", cli.Train.Common.Input)
	assert.Equal(t, "rules", cli.Train.Common.Tokenizer)
	assert.Equal(t, pubtator.TrailingFinalize, cli.Train.Common.Trailing)
	assert.Equal(t, records.FormatAuto, cli.Train.Common.Format)
	assert.Equal(t, 1, cli.Train.Common.Workers)
	assert.True(t, cli.Train.Common.Manifest)
	assert.Equal(t, ner.SegmentAlways, cli.Train.Segment)
	assert.Equal(t, ner.UnknownOutside, cli.Train.UnknownTypes)
	assert.False(t, cli.Verbose)
}

func TestParseFlags(t *testing.T) {
	cli, _, err := parse(t, "train", "--segment=multi-token", "--unknown-types=fail", "--trailing=drop",
		"--format=parquet", "--no-manifest", "--workers=4", "--no-sentence-split", "-v", "in.txt", "out.bin")
	require.NoError(t, err)
	assert.Equal(t, ner.SegmentMultiToken, cli.Train.Segment)
	assert.Equal(t, ner.UnknownFail, cli.Train.UnknownTypes)
	assert.Equal(t, pubtator.TrailingDrop, cli.Train.Common.Trailing)
	assert.Equal(t, records.FormatParquet, cli.Train.Common.Format)
	assert.False(t, cli.Train.Common.Manifest)
	assert.Equal(t, 4, cli.Train.Common.Workers)
	assert.True(t, cli.Train.Common.tokenizerConfig().NoSentenceSplit)
	assert.True(t, cli.Verbose)

	_, _, err = parse(t, "train", "--segment=never", "in.txt", "out.json")
	assert.Error(t, err)
	_, _, err = parse(t, "infer", "--tokenizer=wordpiece", "in.txt", "out.json")
	assert.Error(t, err)
	_, _, err = parse(t, "infer", "in.txt")
	assert.Error(t, err)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trailing": "fail", "segment": "multi-token"}`), 0644))
	cli, _, err := parse(t, "--config", path, "train", "in.txt", "out.json")
	require.NoError(t, err)
	assert.Equal(t, pubtator.TrailingFail, cli.Train.Common.Trailing)
	assert.Equal(t, ner.SegmentMultiToken, cli.Train.Segment)
}

func TestTrainAndInfer(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(input, []byte(testInput+"2|t|Broken\n"), 0644))

	output := filepath.Join(dir, "train.json")
	_, kctx, err := parse(t, "train", input, output)
	require.NoError(t, err)
	require.NoError(t, kctx.Run())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	var decoded records.Collection[records.TrainingRecord]
	require.NoError(t, json.Unmarshal(content, &decoded))
	require.Equal(t, 2, decoded.Len())
	assert.Equal(t, []ner.BIOTag{0, 1, 0, 0, 0, 0, 1, 0}, decoded.Records[0].BIONERTags)

	manifest, err := records.ReadManifest(records.ManifestPath(output))
	require.NoError(t, err)
	assert.Equal(t, "train", manifest.Mode)
	assert.Equal(t, 2, manifest.Records)
	assert.Equal(t, map[string]int{"TruncatedDocument": 1}, manifest.Issues)

	output = filepath.Join(dir, "infer.json")
	_, kctx, err = parse(t, "infer", "--no-manifest", "--trailing=drop", input, output)
	require.NoError(t, err)
	require.NoError(t, kctx.Run())
	content, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "ner_tags")
	assert.Contains(t, string(content), `"Text":"Test vaccine study We studied the vaccine. "`)
	assert.NoFileExists(t, records.ManifestPath(output))

	_, kctx, err = parse(t, "infer", filepath.Join(dir, "missing.txt"), output)
	require.NoError(t, err)
	assert.Error(t, kctx.Run())
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	out := newReport(&buf)
	p := pipeline.New(rulebased.New()).WithTrace(out.Document)
	collection, err := p.Training(context.Background(), bytes.NewBufferString(testInput+"bad line\n"))
	require.NoError(t, err)
	out.Summary(collection.Len(), p.Issues())

	text := buf.String()
	assert.Contains(t, text, "PMID 1")
	assert.Contains(t, text, "Title: 1|t|Test vaccine study")
	assert.Contains(t, text, "vaccine/B-vaccine")
	assert.Contains(t, text, `Labels: "vaccine" [5, 12) Vaccine; "vaccine" [34, 41) Vaccine`)
	assert.Contains(t, text, `Annotations: "vaccine" [5, 12) Vaccine; "vaccine" [34, 41) Vaccine`)
	assert.NotContains(t, text, "no matching token")
	assert.Contains(t, text, "Total number of documents processed: 1")
	assert.Contains(t, text, issues.MalformedLine.String()+": 1")
}

func TestReportUnalignedAnnotation(t *testing.T) {
	var buf bytes.Buffer
	out := newReport(&buf)
	p := pipeline.New(rulebased.New()).WithTrace(out.Document)
	// [12, 20) falls inside "study", no token has that span.
	input := "1|t|Test vaccine study\n1|a|We studied the vaccine.\n1\t12\t20\tvaccine\tVaccine\n\n"
	_, err := p.Training(context.Background(), bytes.NewBufferString(input))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `Labels: "vaccine" [12, 20) Vaccine`)
	assert.Contains(t, buf.String(), `"vaccine" [12, 19) Vaccine (no matching token)`)
}
