// Package bm25 provides an in-memory BM25 keyword index over applicant documents.
package bm25

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/logger"
	"github.com/custodia-labs/hirescope/internal/workerpool"
)

// Ensure Index implements the interface.
var _ driven.KeywordIndex = (*Index)(nil)

// Default BM25 parameters and lifecycle settings.
const (
	DefaultK1          = 1.5
	DefaultB           = 0.75
	DefaultTTL         = time.Hour
	DefaultTopK        = 10
	DefaultSuggestSize = 10
)

// Terms extracts index terms from text.
// Terms keeps repeats for term frequency; Tokenize de-duplicates for queries.
type Terms interface {
	Terms(text string) []string
	Tokenize(text string) []string
}

// compoundSplitter is implemented by term extractors that restore compounds.
// Highlighting uses it to mark the split surface form of a merged token.
type compoundSplitter interface {
	CompoundParts(term string) [][2]string
}

// Index is a BM25 index with a TTL-driven lifecycle.
// Built snapshots are immutable and swapped atomically; a single rebuild
// runs at a time and concurrent callers share its result.
type Index struct {
	terms  Terms
	source driven.DocumentSource
	pool   *workerpool.Pool
	ttl    time.Duration
	k1     float64
	b      float64
	marks  highlighter
	now    func() time.Time

	snap  atomic.Pointer[snapshot]
	group singleflight.Group

	mu          sync.Mutex
	state       domain.IndexState
	builtAt     time.Time
	invalidated bool
	generation  uint64
	building    int
}

// Option configures the index.
type Option func(*Index)

// WithSource sets the document source used by Rebuild.
func WithSource(src driven.DocumentSource) Option {
	return func(x *Index) {
		x.source = src
	}
}

// WithPool tokenizes documents on the given worker pool during builds.
func WithPool(p *workerpool.Pool) Option {
	return func(x *Index) {
		x.pool = p
	}
}

// WithTTL sets how long a built index stays fresh.
func WithTTL(d time.Duration) Option {
	return func(x *Index) {
		if d > 0 {
			x.ttl = d
		}
	}
}

// WithParameters sets the BM25 k1 and b parameters.
func WithParameters(k1, b float64) Option {
	return func(x *Index) {
		if k1 > 0 {
			x.k1 = k1
		}
		if b >= 0 && b <= 1 {
			x.b = b
		}
	}
}

// WithHighlightMarkers sets the markers wrapped around matched tokens.
func WithHighlightMarkers(open, close string) Option {
	return func(x *Index) {
		if open != "" && close != "" {
			x.marks = highlighter{open: open, close: close}
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(x *Index) {
		x.now = now
	}
}

// New creates an uninitialized index.
func New(terms Terms, opts ...Option) *Index {
	x := &Index{
		terms: terms,
		ttl:   DefaultTTL,
		k1:    DefaultK1,
		b:     DefaultB,
		marks: highlighter{open: "<mark>", close: "</mark>"},
		now:   time.Now,
		state: domain.IndexStateUninitialized,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// State returns the lifecycle state, accounting for TTL expiry.
func (x *Index) State() domain.IndexState {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.stateLocked()
}

func (x *Index) stateLocked() domain.IndexState {
	if x.building > 0 {
		return domain.IndexStateBuilding
	}
	if x.state == domain.IndexStateReady && (x.invalidated || x.now().Sub(x.builtAt) >= x.ttl) {
		return domain.IndexStateStale
	}
	return x.state
}

// Invalidate marks a built index stale. An invalidation that arrives while
// a build is running also marks the result of that build stale.
func (x *Index) Invalidate() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.invalidated = true
	x.generation++
}

func (x *Index) currentGeneration() uint64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.generation
}

// Build replaces the index with the corpus. Documents with no terms are skipped.
func (x *Index) Build(ctx context.Context, corpus []domain.Document) domain.BuildResult {
	return x.build(ctx, corpus, x.currentGeneration())
}

// build indexes a corpus loaded at generation gen. The result is fresh only
// if nothing invalidated the index since then.
func (x *Index) build(ctx context.Context, corpus []domain.Document, gen uint64) domain.BuildResult {
	x.mu.Lock()
	x.building++
	x.mu.Unlock()

	terms, err := x.tokenize(ctx, corpus)
	if err != nil {
		logger.Warn("keyword index build aborted: %v", err)
		x.mu.Lock()
		x.building--
		x.mu.Unlock()
		return domain.BuildResult{}
	}

	snap := newSnapshot(corpus, terms, x.k1, x.b)
	x.snap.Store(snap)

	x.mu.Lock()
	x.building--
	x.state = domain.IndexStateReady
	x.builtAt = x.now()
	stale := x.generation != gen
	x.invalidated = stale
	x.mu.Unlock()

	if stale {
		logger.Debug("keyword index invalidated during build, result is stale")
	}
	logger.Debug("keyword index built: %d of %d documents, %d terms", snap.size(), len(corpus), len(snap.vocab))

	return domain.BuildResult{Success: snap.size() > 0, DocumentCount: snap.size()}
}

// tokenize extracts terms for every document, on the pool when one is set.
func (x *Index) tokenize(ctx context.Context, corpus []domain.Document) ([][]string, error) {
	out := make([][]string, len(corpus))
	if x.pool == nil {
		for i := range corpus {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = x.terms.Terms(corpus[i].SearchableText())
		}
		return out, nil
	}

	tasks := make([]workerpool.Task, len(corpus))
	for i := range corpus {
		tasks[i] = func(context.Context) error {
			out[i] = x.terms.Terms(corpus[i].SearchableText())
			return nil
		}
	}
	if err := x.pool.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return out, nil
}

// Rebuild loads the full corpus from the source and builds the index.
// Concurrent callers share one build; the build is not cancelled when
// an individual caller's context is.
func (x *Index) Rebuild(ctx context.Context) (domain.BuildResult, error) {
	return x.rebuild(ctx, true)
}

// rebuild runs the shared build. Unless force is set, a build that finds
// the index already fresh returns without reloading the corpus.
func (x *Index) rebuild(ctx context.Context, force bool) (domain.BuildResult, error) {
	if x.source == nil {
		return domain.BuildResult{}, fmt.Errorf("%w: keyword index has no document source", domain.ErrInvalidInput)
	}

	shared := context.WithoutCancel(ctx)
	ch := x.group.DoChan("rebuild", func() (any, error) {
		if !force && x.State() == domain.IndexStateReady {
			n := x.snap.Load().size()
			return domain.BuildResult{Success: n > 0, DocumentCount: n}, nil
		}

		x.mu.Lock()
		x.building++
		x.mu.Unlock()
		defer func() {
			x.mu.Lock()
			x.building--
			x.mu.Unlock()
		}()

		gen := x.currentGeneration()
		docs, err := x.source.Find(shared, domain.DocumentFilter{})
		if err != nil {
			return domain.BuildResult{}, fmt.Errorf("load corpus: %w", err)
		}
		return x.build(shared, docs, gen), nil
	})

	select {
	case <-ctx.Done():
		return domain.BuildResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.BuildResult{}, res.Err
		}
		return res.Val.(domain.BuildResult), nil
	}
}

// current returns a snapshot to serve, rebuilding when needed.
// A stale snapshot is served while another caller rebuilds.
func (x *Index) current(ctx context.Context) (*snapshot, error) {
	x.mu.Lock()
	state := x.stateLocked()
	x.mu.Unlock()

	snap := x.snap.Load()
	switch {
	case state == domain.IndexStateReady:
		return snap, nil
	case state == domain.IndexStateBuilding && snap != nil:
		return snap, nil
	}

	if _, err := x.rebuild(ctx, false); err != nil {
		if snap != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("keyword index rebuild failed, serving previous index: %v", err)
			return snap, nil
		}
		return nil, err
	}
	return x.snap.Load(), nil
}

// Search ranks documents against the query.
func (x *Index) Search(ctx context.Context, query string, topK int) (domain.KeywordSearch, error) {
	tokens := x.terms.Tokenize(query)
	if len(tokens) == 0 {
		return domain.KeywordSearch{Status: domain.KeywordStatusNoValidTokens, Results: []domain.SearchResult{}}, nil
	}

	snap, err := x.current(ctx)
	if err != nil {
		return domain.KeywordSearch{}, fmt.Errorf("keyword search: %w", err)
	}
	if snap.size() == 0 {
		return domain.KeywordSearch{Status: domain.KeywordStatusIndexEmpty, Tokens: tokens, Results: []domain.SearchResult{}}, nil
	}

	if topK <= 0 {
		topK = DefaultTopK
	}

	ranked := rank(snap, snap.score(tokens))
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	var parts func(string) [][2]string
	if cs, ok := x.terms.(compoundSplitter); ok {
		parts = cs.CompoundParts
	}
	pattern := tokenPattern(tokens, parts)

	results := make([]domain.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		result := domain.SearchResult{
			Document: snap.docs[snap.ids[r.pos]],
			Score:    r.score,
			Source:   domain.ResultSourceKeyword,
		}
		if hl := x.marks.snippet(snap.texts[r.pos], pattern); hl != "" {
			result.Highlights = []string{hl}
		}
		results = append(results, result)
	}

	return domain.KeywordSearch{Status: domain.KeywordStatusOK, Tokens: tokens, Results: results}, nil
}

// Score returns the raw BM25 score of every document matching the query.
func (x *Index) Score(ctx context.Context, query string) (map[string]float64, error) {
	tokens := x.terms.Tokenize(query)
	if len(tokens) == 0 {
		return map[string]float64{}, nil
	}

	snap, err := x.current(ctx)
	if err != nil {
		return nil, fmt.Errorf("keyword score: %w", err)
	}

	raw := snap.score(tokens)
	out := make(map[string]float64, len(raw))
	for pos, score := range raw {
		out[snap.ids[pos]] = score
	}
	return out, nil
}

// Suggest returns sorted indexed tokens that start with prefix.
func (x *Index) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestSize
	}

	snap, err := x.current(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return snap.suggest(prefix, limit), nil
}

type ranked struct {
	pos   int
	score float64
}

// rank orders scored positions by score, then by document ID.
func rank(snap *snapshot, scores map[int]float64) []ranked {
	out := make([]ranked, 0, len(scores))
	for pos, score := range scores {
		out = append(out, ranked{pos: pos, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return snap.ids[out[i].pos] < snap.ids[out[j].pos]
	})
	return out
}
