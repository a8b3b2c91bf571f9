package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAnalyzerUnavailable indicates the morphological analyzer is absent or failed.
	// The tokenizer recovers by falling back to simple splitting.
	ErrAnalyzerUnavailable = errors.New("morphological analyzer unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or failed.
	// Vector scoring is skipped for the affected item.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates an embedding length differs from the store's dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexEmpty indicates a keyword index build found nothing to index.
	ErrIndexEmpty = errors.New("index empty")

	// ErrNoValidTokens indicates a query tokenized to nothing.
	ErrNoValidTokens = errors.New("no valid tokens")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)
