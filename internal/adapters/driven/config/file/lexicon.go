package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/tokenizer"
)

// LexiconFile is the default lexicon file name inside the config directory.
const LexiconFile = "lexicon.toml"

// lexiconFile is the on-disk shape of a lexicon.
//
//	replace_defaults = false
//	stopwords = ["지원", "회사"]
//
//	[[compounds]]
//	parts = ["웹", "개발"]
//	merged = "웹개발"
type lexiconFile struct {
	ReplaceDefaults bool           `toml:"replace_defaults"`
	Stopwords       []string       `toml:"stopwords"`
	Compounds       []compoundFile `toml:"compounds"`
}

type compoundFile struct {
	Parts  []string `toml:"parts"`
	Merged string   `toml:"merged"`
}

// LoadLexicon reads a lexicon file. Entries extend the built-in lexicon unless
// replace_defaults is set. A missing file yields the built-in lexicon.
func LoadLexicon(path string) (*tokenizer.Lexicon, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return tokenizer.DefaultLexicon(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes lexicon TOML.
func ParseLexicon(data []byte) (*tokenizer.Lexicon, error) {
	var lf lexiconFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w: %w", domain.ErrInvalidInput, err)
	}

	compounds := make([]tokenizer.Compound, 0, len(lf.Compounds))
	for i, c := range lf.Compounds {
		if len(c.Parts) != 2 {
			return nil, fmt.Errorf("compound %d: want 2 parts, got %d: %w", i, len(c.Parts), domain.ErrInvalidInput)
		}
		compounds = append(compounds, tokenizer.Compound{
			Parts:  [2]string{c.Parts[0], c.Parts[1]},
			Merged: c.Merged,
		})
	}

	if lf.ReplaceDefaults {
		return tokenizer.NewLexicon(lf.Stopwords, compounds), nil
	}
	return tokenizer.DefaultLexicon().Extend(lf.Stopwords, compounds), nil
}
