// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// SearchService answers free-text queries, SimilarityService scores
// plagiarism risk and recommends candidates, and IndexService keeps
// the derived chunk, vector and keyword indexes in step with the
// document source.
package services
