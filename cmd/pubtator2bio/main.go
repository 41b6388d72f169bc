// Command pubtator2bio converts PubTator files into token-aligned NER records.
//
//	pubtator2bio train corpus.txt train.json
//	pubtator2bio infer --tokenizer=hf --tokenizer-repo=dmis-lab/biobert-v1.1 corpus.txt.xz infer.parquet
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/gomlx/go-pubtator/ner"
	"github.com/gomlx/go-pubtator/pipeline"
	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/records"
	"github.com/gomlx/go-pubtator/tokenizers"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const version = "0.1.0"

// Globals are the flags shared by all commands.
type Globals struct {
	Config   kong.ConfigFlag `help:"JSON file with default flag values, keyed by flag name."`
	Verbose  bool            `short:"v" help:"Print every document with its tokens and labels, and a summary."`
	LogLevel int             `name:"log-level" default:"0" help:"Logging verbosity (klog -v level)."`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Train   TrainCmd   `cmd:"" help:"Convert annotated documents into labeled training records."`
	Infer   InferCmd   `cmd:"" help:"Convert documents into unlabeled records for inference."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// CommonFlags are the flags of both conversion commands.
type CommonFlags struct {
	Input  string `arg:"" help:"PubTator input file, or \"-\" for the standard input. xz-compressed files are decompressed."`
	Output string `arg:"" help:"Output file, or \"-\" for the standard output. A .xz suffix compresses it."`

	Tokenizer         string `default:"rules" enum:"rules,hf,sentencepiece" help:"Tokenizer: ${enum}."`
	TokenizerFile     string `type:"path" help:"Local tokenizer.json (hf) or tokenizer.model (sentencepiece)."`
	TokenizerRepo     string `help:"HuggingFace Hub repository to download the tokenizer file from."`
	TokenizerRevision string `help:"Revision of --tokenizer-repo."`
	TokenizerCacheDir string `type:"path" help:"Cache directory for downloaded tokenizer files."`
	NoSentenceSplit   bool   `help:"Don't split the text into sentences."`

	Trailing pubtator.TrailingPolicy `default:"finalize" help:"Last document without a terminating blank line: finalize, drop or fail."`
	Workers  int                     `default:"1" help:"Number of documents converted concurrently."`
	Format   records.Format          `default:"auto" help:"Output format: auto (from the output file name), json or parquet."`
	Manifest bool                    `default:"true" negatable:"" help:"Write a <output>.manifest.json file describing the run."`
}

func (f *CommonFlags) tokenizerConfig() tokenizers.Config {
	return tokenizers.Config{
		Kind:            f.Tokenizer,
		File:            f.TokenizerFile,
		Repo:            f.TokenizerRepo,
		Revision:        f.TokenizerRevision,
		CacheDir:        f.TokenizerCacheDir,
		NoSentenceSplit: f.NoSentenceSplit,
	}
}

// TrainCmd converts to training records.
type TrainCmd struct {
	Common CommonFlags `embed:""`

	Segment      ner.SegmentationPolicy `default:"always" help:"Mentions split into one annotation per token: always or multi-token."`
	UnknownTypes ner.UnknownTypePolicy  `default:"outside" help:"Annotations with an unknown type: outside (ignored) or fail."`
}

// Run implements the train command.
func (c *TrainCmd) Run(ctx context.Context, globals *Globals) error {
	config := pipeline.Config{
		Segmentation: c.Segment,
		UnknownTypes: c.UnknownTypes,
		Trailing:     c.Common.Trailing,
		Workers:      c.Common.Workers,
	}
	return convert(ctx, globals, &c.Common, "train", config, (*pipeline.Preprocessor).Training)
}

// InferCmd converts to inference records.
type InferCmd struct {
	Common CommonFlags `embed:""`
}

// Run implements the infer command.
func (c *InferCmd) Run(ctx context.Context, globals *Globals) error {
	config := pipeline.Config{
		Trailing: c.Common.Trailing,
		Workers:  c.Common.Workers,
	}
	return convert(ctx, globals, &c.Common, "infer", config, (*pipeline.Preprocessor).Inference)
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run implements the version command.
func (c *VersionCmd) Run() error {
	fmt.Printf("pubtator2bio version %s\n", version)
	return nil
}

// convert runs a conversion from flags.Input to flags.Output.
func convert[R records.Record](ctx context.Context, globals *Globals, flags *CommonFlags, mode string,
	config pipeline.Config,
	process func(*pipeline.Preprocessor, context.Context, io.Reader) (*records.Collection[R], error)) error {
	tokenizer, err := tokenizers.New(flags.tokenizerConfig())
	if err != nil {
		return errors.WithMessage(err, "failed to create tokenizer")
	}
	p := pipeline.New(tokenizer).WithConfig(config)

	// Keep the standard output clean when the records are written to it.
	var diagnostics io.Writer = os.Stdout
	if flags.Output == "-" {
		diagnostics = os.Stderr
	}
	out := newReport(diagnostics)
	if globals.Verbose {
		p = p.WithTrace(out.Document)
	}

	input, err := pubtator.Open(flags.Input)
	if err != nil {
		return err
	}
	defer func() { _ = input.Close() }()
	collection, err := process(p, ctx, input)
	if err != nil {
		return errors.WithMessagef(err, "converting %q", flags.Input)
	}

	written, err := records.WriteFile(flags.Output, flags.Format, collection)
	if err != nil {
		return err
	}
	klog.V(1).Infof("%d records written to %q (%s, %d bytes, blake3 %s)",
		collection.Len(), flags.Output, written.Format, written.Bytes, written.BLAKE3)

	if flags.Manifest && flags.Output != "-" {
		manifest := records.NewManifest(mode, flags.Input, flags.Output)
		manifest.SetWritten(collection.Len(), written)
		manifest.Issues = p.Issues().Counts()
		if err := manifest.WriteFile(records.ManifestPath(flags.Output)); err != nil {
			return err
		}
	}
	if globals.Verbose {
		out.Summary(collection.Len(), p.Issues())
	}
	return nil
}

// setupLogging configures klog with the given verbosity level.
func setupLogging(level int) {
	flags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flags)
	_ = flags.Set("v", strconv.Itoa(level))
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("pubtator2bio"),
		kong.Description("Converts PubTator annotated abstracts into token-aligned IO/BIO NER records."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON),
		kong.Bind(&cli.Globals),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer klog.Flush()

	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(ctx, (*context.Context)(nil)))
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	setupLogging(cli.LogLevel)
	err = kctx.Run()
	kctx.FatalIfErrorf(err)
}
