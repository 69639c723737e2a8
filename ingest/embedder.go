package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/jurist/ai"
	"github.com/poiesic/jurist/core"
	"github.com/poiesic/jurist/similarity"
)

const (
	defaultBatchSize  = 32
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// CorpusEmbedder computes embeddings for every article in a corpus.
// Batches are embedded concurrently on a worker pool; within a batch the
// embedding call is retried with exponential backoff.
type CorpusEmbedder struct {
	embedder   ai.Embedder
	poolSize   int
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a CorpusEmbedder.
type Option func(*CorpusEmbedder) error

// WithPoolSize sets the worker pool size for concurrent batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *CorpusEmbedder) error {
		if size < 1 {
			size = 1
		}
		e.poolSize = size
		return nil
	}
}

// WithBatchSize sets the number of articles embedded per request.
func WithBatchSize(size int) Option {
	return func(e *CorpusEmbedder) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		e.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *CorpusEmbedder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		e.maxRetries = maxAttempts
		e.retryDelay = baseDelay
		return nil
	}
}

// WithProgress sets where progress output is written (typically os.Stderr).
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(e *CorpusEmbedder) error {
		if w == nil {
			w = io.Discard
		}
		e.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *CorpusEmbedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewCorpusEmbedder creates a new corpus embedder.
func NewCorpusEmbedder(embedder ai.Embedder, opts ...Option) (*CorpusEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	e := &CorpusEmbedder{
		embedder:   embedder,
		poolSize:   poolSize,
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		progress:   io.Discard,
		logger:     slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Run embeds every article with a non-blank body and returns a new slice
// with the embeddings filled in. Articles with blank bodies are passed
// through untouched. The input slice is not modified.
func (e *CorpusEmbedder) Run(ctx context.Context, articles []core.Article) ([]core.Article, error) {
	out := make([]core.Article, len(articles))
	copy(out, articles)

	var indices []int
	for i := range out {
		if out[i].HasText() {
			indices = append(indices, i)
		}
	}

	if len(indices) == 0 {
		e.logger.Warn("corpus has no embeddable articles", "total", len(out))
		return out, nil
	}

	e.logger.Info("embedding corpus",
		"articles", len(indices),
		"batchSize", e.batchSize,
		"poolSize", e.poolSize)

	tracker := NewProgressTracker(e.progress, len(indices), e.batchSize)
	tracker.Start()

	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(indices); start += e.batchSize {
		end := start + e.batchSize
		if end > len(indices) {
			end = len(indices)
		}
		batch := indices[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := e.embedBatch(ctx, out, batch); err != nil {
				fail(err)
				return
			}
			tracker.Increment(len(batch))
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}

	wg.Wait()
	tracker.Finish()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Info("corpus embedding complete",
		"articles", len(indices),
		"elapsed", tracker.Elapsed().Round(time.Millisecond))

	return out, nil
}

// embedBatch embeds the articles at the given indices and writes the
// normalized vectors back in place. Batches cover disjoint index sets, so
// the writes need no coordination.
func (e *CorpusEmbedder) embedBatch(ctx context.Context, articles []core.Article, batch []int) error {
	texts := make([]string, len(batch))
	for i, idx := range batch {
		texts[i] = articles[idx].Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = e.embedder.EmbedTexts(ctx, texts)
		return err
	}, e.maxRetries, e.retryDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i, idx := range batch {
		articles[idx].Embedding = similarity.Normalize(embeddings[i])
	}

	return nil
}
