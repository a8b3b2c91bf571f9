// Package tokenizer turns free text into ordered lists of meaningful tokens
// for BM25 indexing, query parsing and attribute overlap.
//
// When a morphological analyzer is configured, only morphemes of meaningful
// grammatical categories are kept (nouns, verb and adjective stems, foreign
// script, hanja, and numerals that look like years). Without an analyzer, or
// when it fails, text is lowercased, stripped of punctuation and split on
// whitespace. Both paths then restore split compound words and drop
// stopwords and tokens shorter than two characters.
//
// The stopword set and compound dictionary form a Lexicon that can be
// replaced at runtime, e.g. when the lexicon file changes on disk.
package tokenizer
