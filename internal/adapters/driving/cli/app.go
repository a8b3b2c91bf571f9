package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/analyzer/remote"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/keyword/bm25"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/hirescope/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/core/services"
	"github.com/custodia-labs/hirescope/internal/logger"
	"github.com/custodia-labs/hirescope/internal/postprocessors"
	"github.com/custodia-labs/hirescope/internal/tokenizer"
	"github.com/custodia-labs/hirescope/internal/workerpool"
)

// App holds the wired services behind the commands.
type App struct {
	Settings   domain.Settings
	Documents  driven.DocumentStore
	Tokenizer  *tokenizer.Tokenizer
	Keyword    *bm25.Index
	Vectors    *vectormem.Store
	Index      *services.IndexService
	Search     *services.SearchService
	Similarity *services.SimilarityService

	store   *sqlite.Store
	pool    *workerpool.Pool
	watcher *file.LexiconWatcher
	cancel  context.CancelFunc
}

// OpenApp opens the SQLite document store under the data directory and wires the services.
func OpenApp(ctx context.Context, s domain.Settings) (*App, error) {
	store, err := sqlite.NewStore(s.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	app, err := NewApp(ctx, s, store.DocumentStore())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	app.store = store
	return app, nil
}

// NewApp wires the services over an existing document store.
func NewApp(ctx context.Context, s domain.Settings, docs driven.DocumentStore) (*App, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	app := &App{Settings: s, Documents: docs, cancel: cancel}

	tok, err := app.newTokenizer()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Tokenizer = tok

	pipeline, err := postprocessors.NewDefaultPipeline(s.MaxChunkRunes)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("build chunk pipeline: %w", err)
	}

	app.pool, err = workerpool.New(s.WorkerPoolSize)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Vectors = vectormem.NewStore()
	app.Keyword = bm25.New(tok,
		bm25.WithSource(docs),
		bm25.WithPool(app.pool),
		bm25.WithTTL(s.Keyword.TTL),
		bm25.WithParameters(s.Keyword.K1, s.Keyword.B),
		bm25.WithHighlightMarkers(s.Keyword.HighlightOpen, s.Keyword.HighlightClose),
	)

	embedder, err := newEmbedder(s.Embedding, tok)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Index = services.NewIndexService(docs, pipeline, app.Vectors, app.Keyword, embedder,
		services.WithEmbedConcurrency(s.Embedding.Concurrency),
		services.WithEmbedTimeout(s.Embedding.Timeout),
	)
	app.Search = services.NewSearchService(docs, app.Keyword, app.Vectors, embedder)
	app.Search.SetSuggestLimit(s.Keyword.SuggestLimit)
	app.Similarity = services.NewSimilarityService(docs, pipeline, app.Vectors, app.Keyword, tok,
		services.WithSimilaritySettings(s.Similarity),
		services.WithScoringPool(app.pool),
	)

	app.watchLexicon(watchCtx)

	logger.Debug("Wired services: embedding=%s dir=%s", s.Embedding.Provider, s.DataDir)
	return app, nil
}

// newTokenizer builds the tokenizer with the configured analyzer and lexicon file.
func (a *App) newTokenizer() (*tokenizer.Tokenizer, error) {
	var opts []tokenizer.Option

	if a.Settings.AnalyzerURL != "" {
		analyzer, err := remote.New(remote.Config{BaseURL: a.Settings.AnalyzerURL})
		if err != nil {
			return nil, err
		}
		opts = append(opts, tokenizer.WithAnalyzer(analyzer))
	}

	path := a.Settings.LexiconPath
	if path == "" {
		return tokenizer.New(opts...), nil
	}

	lex, err := file.LoadLexicon(path)
	if err != nil {
		return nil, err
	}
	return tokenizer.New(append(opts, tokenizer.WithLexicon(lex))...), nil
}

// watchLexicon reloads the lexicon file on change when one is configured.
func (a *App) watchLexicon(ctx context.Context) {
	if a.Settings.LexiconPath == "" {
		return
	}

	w, err := file.NewLexiconWatcher(a.Settings.LexiconPath, func(l *tokenizer.Lexicon) {
		a.reloadLexicon(ctx, l)
	})
	if err != nil {
		logger.Warn("Lexicon hot reload disabled: %v", err)
		return
	}
	a.watcher = w
	go w.Run(ctx)
}

// reloadLexicon swaps the tokenizer lexicon and brings the indexes in line.
// Keyword terms are rebuilt on the next search. Vectors are re-embedded
// when the embedder derives them from tokenizer terms.
func (a *App) reloadLexicon(ctx context.Context, l *tokenizer.Lexicon) {
	a.Tokenizer.SetLexicon(l)
	a.Keyword.Invalidate()

	if a.Settings.Embedding.Provider != domain.EmbeddingProviderLocal {
		return
	}
	if a.Index.Stats(ctx).Vectors.Count == 0 {
		return
	}
	report, err := a.Index.Rebuild(ctx)
	if err != nil {
		logger.Warn("Re-embedding after lexicon change failed: %v", err)
		return
	}
	logger.Info("Re-embedded %d documents after lexicon change", report.Documents)
}

// newEmbedder selects the embedding backend. Remote providers are rate limited.
// A nil service disables the vector path.
func newEmbedder(cfg domain.EmbeddingSettings, tok *tokenizer.Tokenizer) (driven.EmbeddingService, error) {
	limits := ratelimit.Config{RequestsPerSecond: cfg.RequestsPerSecond, Burst: cfg.Burst}

	switch cfg.Provider {
	case domain.EmbeddingProviderNone, "":
		return nil, nil
	case domain.EmbeddingProviderLocal:
		return local.NewEmbeddingService(tok, local.WithDimensions(cfg.Dimensions)), nil
	case domain.EmbeddingProviderOllama:
		svc := ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			Dimensions: cfg.Dimensions,
		})
		return ratelimit.New(svc, limits), nil
	case domain.EmbeddingProviderOpenAI:
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return ratelimit.New(svc, limits), nil
	default:
		return nil, fmt.Errorf("embedding provider %q: %w", cfg.Provider, domain.ErrInvalidInput)
	}
}

// Close stops the watcher and releases the pool, embedder and database.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}

	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	if a.Index != nil {
		errs = append(errs, a.Index.Close())
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
