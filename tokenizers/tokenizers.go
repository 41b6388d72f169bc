// Package tokenizers creates the api.Tokenizer implementations shipped with this module.
//
// The default is the rule-based tokenizer; HuggingFace tokenizer.json pre-tokenizers and
// SentencePiece models can be loaded from a local file or downloaded from the HuggingFace Hub.
package tokenizers

import (
	"github.com/gomlx/go-pubtator/hub"
	"github.com/gomlx/go-pubtator/tokenizers/api"
	"github.com/gomlx/go-pubtator/tokenizers/hftokenizer"
	"github.com/gomlx/go-pubtator/tokenizers/rulebased"
	"github.com/gomlx/go-pubtator/tokenizers/sentencepiece"
	"github.com/pkg/errors"
)

// Kinds of tokenizer.
const (
	KindRules         = "rules"
	KindHuggingFace   = "hf"
	KindSentencePiece = "sentencepiece"
)

// Config selects and configures a tokenizer.
type Config struct {
	// Kind is one of KindRules (default), KindHuggingFace or KindSentencePiece.
	Kind string `json:"kind"`

	// File is a local tokenizer.json or tokenizer.model. Takes precedence over Repo.
	File string `json:"file"`

	// Repo is a HuggingFace Hub repository ID to download the tokenizer file from.
	Repo string `json:"repo"`

	// Revision of Repo, defaults to hub.DefaultRevision.
	Revision string `json:"revision"`

	// CacheDir for downloads, defaults to hub.DefaultCacheDir().
	CacheDir string `json:"cache_dir"`

	// NoSentenceSplit returns each text as a single sentence.
	NoSentenceSplit bool `json:"no_sentence_split"`
}

// New creates the tokenizer described by config.
func New(config Config) (api.Tokenizer, error) {
	switch config.Kind {
	case "", KindRules:
		return rulebased.New().WithSentenceSplitting(!config.NoSentenceSplit), nil

	case KindHuggingFace:
		var (
			tok *hftokenizer.Tokenizer
			err error
		)
		switch {
		case config.File != "":
			tok, err = hftokenizer.NewFromFile(config.File)
		case config.Repo != "":
			tok, err = hftokenizer.New(config.hubRepo())
		default:
			return nil, errors.Errorf("tokenizer %q requires a file or a repository", config.Kind)
		}
		if err != nil {
			return nil, err
		}
		return tok.WithSentenceSplitting(!config.NoSentenceSplit), nil

	case KindSentencePiece:
		var (
			tok *sentencepiece.Tokenizer
			err error
		)
		switch {
		case config.File != "":
			tok, err = sentencepiece.NewFromFile(config.File)
		case config.Repo != "":
			tok, err = sentencepiece.New(config.hubRepo())
		default:
			return nil, errors.Errorf("tokenizer %q requires a file or a repository", config.Kind)
		}
		if err != nil {
			return nil, err
		}
		return tok.WithSentenceSplitting(!config.NoSentenceSplit), nil
	}
	return nil, errors.Errorf("unknown tokenizer kind %q, valid values are %q, %q and %q",
		config.Kind, KindRules, KindHuggingFace, KindSentencePiece)
}

func (config Config) hubRepo() *hub.Repo {
	repo := hub.New(config.Repo)
	if config.Revision != "" {
		repo = repo.WithRevision(config.Revision)
	}
	if config.CacheDir != "" {
		repo = repo.WithCacheDir(config.CacheDir)
	}
	return repo
}
