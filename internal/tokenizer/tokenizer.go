package tokenizer

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/logger"
)

// DefaultAnalyzeTimeout bounds a single analyzer call.
const DefaultAnalyzeTimeout = 2 * time.Second

// minTokenRunes is the shortest token kept.
const minTokenRunes = 2

// minYearRunes is the shortest numeral kept from analyzer output.
const minYearRunes = 4

// meaningfulTags are the grammatical categories kept from analyzer output.
var meaningfulTags = map[string]bool{
	"NNG": true, // common noun
	"NNP": true, // proper noun
	"VV":  true, // verb stem
	"VA":  true, // adjective stem
	"SL":  true, // foreign script
	"SH":  true, // hanja
}

// numeralTag marks numerals; kept only when long enough to be a year.
const numeralTag = "SN"

// Tokenizer converts text to meaningful tokens.
// It is safe for concurrent use; the lexicon can be swapped at any time.
type Tokenizer struct {
	analyzer driven.MorphAnalyzer
	timeout  time.Duration
	lexicon  atomic.Pointer[Lexicon]
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithAnalyzer sets the morphological analyzer. Nil selects the fallback path.
func WithAnalyzer(a driven.MorphAnalyzer) Option {
	return func(t *Tokenizer) {
		t.analyzer = a
	}
}

// WithLexicon sets the initial lexicon.
func WithLexicon(l *Lexicon) Option {
	return func(t *Tokenizer) {
		if l != nil {
			t.lexicon.Store(l)
		}
	}
}

// WithAnalyzeTimeout bounds each analyzer call.
func WithAnalyzeTimeout(d time.Duration) Option {
	return func(t *Tokenizer) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// New creates a tokenizer with the default lexicon and no analyzer.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{timeout: DefaultAnalyzeTimeout}
	t.lexicon.Store(DefaultLexicon())
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetLexicon replaces the lexicon used for subsequent calls.
func (t *Tokenizer) SetLexicon(l *Lexicon) {
	if l != nil {
		t.lexicon.Store(l)
	}
}

// Lexicon returns the current lexicon.
func (t *Tokenizer) Lexicon() *Lexicon {
	return t.lexicon.Load()
}

// CompoundParts returns the split forms that the current lexicon merges into term.
func (t *Tokenizer) CompoundParts(term string) [][2]string {
	return t.lexicon.Load().Parts(term)
}

// Tokenize returns the ordered, de-duplicated tokens of text.
// It never fails: unanalyzable input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	return dedupe(t.Terms(text))
}

// Terms returns the tokens of text in order, keeping repeats.
// BM25 uses it to count term frequencies.
func (t *Tokenizer) Terms(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	raw, ok := t.analyze(text)
	if !ok {
		raw = splitFallback(text)
	}

	lex := t.lexicon.Load()
	return filter(mergeCompounds(raw, lex), lex)
}

// analyze runs the analyzer and keeps meaningful morphemes.
// It returns false when the fallback path must be used.
func (t *Tokenizer) analyze(text string) ([]string, bool) {
	if t.analyzer == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	morphemes, err := t.analyzer.Analyze(ctx, text)
	if err != nil {
		logger.Debug("analyzer %s unavailable, using fallback tokenizer: %v", t.analyzer.Name(), err)
		return nil, false
	}

	tokens := make([]string, 0, len(morphemes))
	for _, m := range morphemes {
		surface := strings.ToLower(strings.TrimSpace(m.Surface))
		if surface == "" {
			continue
		}
		switch {
		case meaningfulTags[m.Tag]:
			tokens = append(tokens, surface)
		case m.Tag == numeralTag && utf8.RuneCountInString(surface) >= minYearRunes:
			tokens = append(tokens, surface)
		}
	}
	return tokens, true
}

// splitFallback lowercases, strips characters that are neither letters nor
// digits, and splits on whitespace.
func splitFallback(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(cleaned)
}

// mergeCompounds greedily merges adjacent pairs found in the lexicon, left to right.
func mergeCompounds(tokens []string, lex *Lexicon) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			if merged, ok := lex.Compound(tokens[i], tokens[i+1]); ok {
				out = append(out, merged)
				i++
				continue
			}
		}
		out = append(out, tokens[i])
	}
	return out
}

// filter drops stopwords, short tokens and tokens without word characters.
func filter(tokens []string, lex *Lexicon) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < minTokenRunes {
			continue
		}
		if !hasWordRune(tok) || lex.IsStopword(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
