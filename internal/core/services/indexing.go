package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
	"github.com/custodia-labs/hirescope/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// attrContent is the vector attribute holding a chunk's text.
const attrContent = "content"

// Default embedding fan-out settings.
const (
	defaultEmbedConcurrency = 4
	defaultEmbedTimeout     = 10 * time.Second
)

// IndexService keeps chunks, vectors and the keyword index derived from the
// document source. Vectors are rebuilt on boot; nothing is persisted.
type IndexService struct {
	docs             driven.DocumentSource
	pipeline         driven.ChunkPipeline
	vectorStore      driven.VectorStore
	keywordIndex     driven.KeywordIndex
	embeddingService driven.EmbeddingService
	concurrency      int
	timeout          time.Duration

	mu      sync.Mutex
	indexed map[string]bool
}

// IndexOption configures the index service.
type IndexOption func(*IndexService)

// WithEmbedConcurrency bounds concurrent embedding calls.
func WithEmbedConcurrency(n int) IndexOption {
	return func(s *IndexService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithEmbedTimeout bounds each embedding call.
func WithEmbedTimeout(d time.Duration) IndexOption {
	return func(s *IndexService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewIndexService creates an index service.
// The embeddingService parameter is optional (can be nil); without it only
// the keyword index is maintained.
func NewIndexService(
	docs driven.DocumentSource,
	pipeline driven.ChunkPipeline,
	vectorStore driven.VectorStore,
	keywordIndex driven.KeywordIndex,
	embeddingService driven.EmbeddingService,
	opts ...IndexOption,
) *IndexService {
	s := &IndexService{
		docs:             docs,
		pipeline:         pipeline,
		vectorStore:      vectorStore,
		keywordIndex:     keywordIndex,
		embeddingService: embeddingService,
		concurrency:      defaultEmbedConcurrency,
		timeout:          defaultEmbedTimeout,
		indexed:          make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init indexes every document in the source and builds the keyword index.
func (s *IndexService) Init(ctx context.Context) (driving.IndexReport, error) {
	logger.Section("Index Initialisation")

	docs, err := s.docs.Find(ctx, domain.DocumentFilter{})
	if err != nil {
		return driving.IndexReport{}, fmt.Errorf("load documents: %w", err)
	}
	logger.Info("Indexing %d documents", len(docs))

	var report driving.IndexReport
	for i := range docs {
		r, err := s.index(ctx, &docs[i])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn("Skipping document %s: %v", docs[i].ID, err)
			continue
		}
		addReport(&report, r)
	}

	// The corpus is reloaded so documents changed while embedding are included.
	kw, err := s.keywordIndex.Rebuild(ctx)
	if err != nil {
		return report, fmt.Errorf("build keyword index: %w", err)
	}
	report.Keyword = kw
	logger.Info("Indexed %d documents: %d chunks, %d vectors, %d failed, keyword=%d",
		report.Documents, report.Chunks, report.Embedded, report.Failed, report.Keyword.DocumentCount)

	return report, nil
}

// Index (re)indexes one document. Previous vectors are retired first and
// the keyword index is marked stale.
func (s *IndexService) Index(ctx context.Context, doc *domain.Document) (driving.IndexReport, error) {
	r, err := s.index(ctx, doc)
	if err != nil {
		return driving.IndexReport{}, err
	}
	s.keywordIndex.Invalidate()

	var report driving.IndexReport
	addReport(&report, r)
	return report, nil
}

// Remove drops a document's vectors and marks the keyword index stale.
func (s *IndexService) Remove(ctx context.Context, documentID string) error {
	n, err := s.vectorStore.DeleteByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	s.mu.Lock()
	delete(s.indexed, documentID)
	s.mu.Unlock()

	s.keywordIndex.Invalidate()
	logger.Debug("Removed document %s (%d vectors)", documentID, n)
	return nil
}

// Rebuild discards every derived entry and repopulates from the source.
func (s *IndexService) Rebuild(ctx context.Context) (driving.IndexReport, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.indexed))
	for id := range s.indexed {
		ids = append(ids, id)
	}
	s.indexed = make(map[string]bool)
	s.mu.Unlock()

	for _, id := range ids {
		if _, err := s.vectorStore.DeleteByDocument(ctx, id); err != nil {
			return driving.IndexReport{}, fmt.Errorf("delete vectors of %s: %w", id, err)
		}
	}
	return s.Init(ctx)
}

// Stats reports the sizes of the indexes.
func (s *IndexService) Stats(ctx context.Context) driving.IndexStats {
	return driving.IndexStats{
		Vectors:      s.vectorStore.Stats(ctx),
		KeywordState: s.keywordIndex.State(),
	}
}

// Close releases resources.
func (s *IndexService) Close() error {
	if s.embeddingService != nil {
		return s.embeddingService.Close()
	}
	return nil
}

// embedJob is one text to embed and the metadata it is stored under.
type embedJob struct {
	text     string
	metadata domain.VectorMetadata
}

// index chunks and embeds a document without touching the keyword index.
func (s *IndexService) index(ctx context.Context, doc *domain.Document) (driving.IndexReport, error) {
	if doc == nil || doc.ID == "" {
		return driving.IndexReport{}, fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
	}

	if _, err := s.vectorStore.DeleteByDocument(ctx, doc.ID); err != nil {
		return driving.IndexReport{}, fmt.Errorf("retire vectors: %w", err)
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return driving.IndexReport{}, fmt.Errorf("chunk document %s: %w", doc.ID, err)
	}

	s.mu.Lock()
	s.indexed[doc.ID] = true
	s.mu.Unlock()

	report := driving.IndexReport{Documents: 1, Chunks: len(chunks)}
	if s.embeddingService == nil || len(chunks) == 0 {
		return report, nil
	}

	jobs := make([]embedJob, 0, len(chunks)+1)
	for _, c := range chunks {
		jobs = append(jobs, embedJob{
			text: c.Content,
			metadata: domain.VectorMetadata{
				Kind:        domain.VectorKindChunk,
				DocumentID:  doc.ID,
				ApplicantID: doc.ApplicantID,
				ChunkID:     c.ID,
				ChunkType:   c.Type,
				Attributes:  map[string]string{attrContent: c.Content},
			},
		})
	}
	if text := profileText(doc); text != "" {
		jobs = append(jobs, embedJob{
			text: text,
			metadata: domain.VectorMetadata{
				Kind:        domain.VectorKindProfile,
				DocumentID:  doc.ID,
				ApplicantID: doc.ApplicantID,
			},
		})
	}

	embedded, failed, err := s.embedAll(ctx, jobs)
	report.Embedded, report.Failed = embedded, failed
	if err != nil {
		return report, err
	}

	logger.Debug("Indexed %s: %d chunks, %d vectors, %d failed", doc.ID, len(chunks), embedded, failed)
	return report, nil
}

// embedAll embeds and stores jobs concurrently. Individual failures are
// counted and skipped; only cancellation of ctx is returned.
func (s *IndexService) embedAll(ctx context.Context, jobs []embedJob) (embedded, failed int, err error) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			vec, embedErr := s.embeddingService.Embed(cctx, job.text)
			if embedErr == nil {
				_, embedErr = s.vectorStore.Save(gctx, vec, job.metadata)
			}

			mu.Lock()
			defer mu.Unlock()
			if embedErr != nil {
				failed++
				logger.Warn("Embedding skipped for %s %s: %v", job.metadata.DocumentID, describeJob(job), embedErr)
				return nil
			}
			embedded++
			return nil
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return embedded, failed, waitErr
	}
	return embedded, failed, ctx.Err()
}

func describeJob(job embedJob) string {
	if job.metadata.Kind == domain.VectorKindProfile {
		return "profile"
	}
	return job.metadata.ChunkID
}

// addReport accumulates r into dst.
func addReport(dst *driving.IndexReport, r driving.IndexReport) {
	dst.Documents += r.Documents
	dst.Chunks += r.Chunks
	dst.Embedded += r.Embedded
	dst.Failed += r.Failed
}
