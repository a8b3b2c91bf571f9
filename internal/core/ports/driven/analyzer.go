package driven

import "context"

// Morpheme is one unit of morphological analysis output.
type Morpheme struct {
	// Surface is the token text (a stem for inflected words).
	Surface string

	// Tag is the grammatical category, e.g. NNG, NNP, VV, VA, SL, SN.
	Tag string
}

// MorphAnalyzer performs language-aware decomposition of text.
// This is an optional service - when nil, the tokenizer uses its fallback path.
type MorphAnalyzer interface {
	// Analyze splits text into tagged morphemes.
	Analyze(ctx context.Context, text string) ([]Morpheme, error)

	// Name returns the analyzer name for logging.
	Name() string
}
