package openai

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/jurist/ai"
)

// LazyEmbedder defers construction of an ai.Embedder until its first use and
// memoizes the result for the life of the process.
//
// Constructing an embedder may be expensive (the backing service loads model
// weights), so concurrent first callers must converge on a single attempt:
// they all wait on the same in-flight attempt rather than spawning their own.
// A failed attempt is discarded so a later call retries from scratch instead
// of caching the failure forever.
type LazyEmbedder struct {
	mu      sync.Mutex
	build   func() (ai.Embedder, error)
	attempt *initAttempt
	logger  *slog.Logger
}

// initAttempt is one shared initialization attempt. done is closed when the
// attempt finishes, after which embedder and err are immutable.
type initAttempt struct {
	done     chan struct{}
	embedder ai.Embedder
	err      error
}

var _ ai.Embedder = (*LazyEmbedder)(nil)

// NewLazyEmbedder creates a lazy wrapper around the given constructor.
// The constructor is invoked at most once per attempt, on first use.
func NewLazyEmbedder(build func() (ai.Embedder, error)) *LazyEmbedder {
	return &LazyEmbedder{
		build:  build,
		logger: slog.Default().With("component", "lazy-embedder"),
	}
}

// instance returns the memoized embedder, starting an initialization attempt
// if none is in flight. Waiting respects ctx, but the attempt itself keeps
// running so other callers can still use its result.
func (l *LazyEmbedder) instance(ctx context.Context) (ai.Embedder, error) {
	l.mu.Lock()
	attempt := l.attempt
	if attempt == nil {
		attempt = &initAttempt{done: make(chan struct{})}
		l.attempt = attempt
		l.logger.Debug("starting embedder initialization")

		go func() {
			embedder, err := l.build()
			attempt.embedder = embedder
			attempt.err = err
			if err != nil {
				// Clear the handle so the next caller retries.
				l.mu.Lock()
				if l.attempt == attempt {
					l.attempt = nil
				}
				l.mu.Unlock()
				l.logger.Error("embedder initialization failed", "err", err)
			}
			close(attempt.done)
		}()
	}
	l.mu.Unlock()

	select {
	case <-attempt.done:
		return attempt.embedder, attempt.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether an embedder has been successfully initialized.
func (l *LazyEmbedder) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.attempt == nil {
		return false
	}
	select {
	case <-l.attempt.done:
		return l.attempt.err == nil
	default:
		return false
	}
}

// EmbedText generates a vector embedding for a single text string,
// initializing the underlying embedder on first use.
func (l *LazyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embedder, err := l.instance(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.EmbedText(ctx, text)
}

// EmbedTexts generates vector embeddings for multiple text strings,
// initializing the underlying embedder on first use.
func (l *LazyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embedder, err := l.instance(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.EmbedTexts(ctx, texts)
}
