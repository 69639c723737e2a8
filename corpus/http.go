package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/jurist/core"
)

// defaultFetchTimeout bounds a single corpus fetch when the caller's context
// carries no deadline of its own.
const defaultFetchTimeout = 30 * time.Second

// HTTPLoader fetches the static JSON corpus from a URL.
// The corpus is re-fetched on every Load; wrap the loader in a cache
// (see corpus/badger) when that is too expensive.
type HTTPLoader struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ Loader = (*HTTPLoader)(nil)

// HTTPOption configures an HTTPLoader.
type HTTPOption func(*HTTPLoader) error

// WithHTTPClient sets a custom HTTP client.
// Default is http.DefaultClient.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(l *HTTPLoader) error {
		if client == nil {
			client = http.DefaultClient
		}
		l.client = client
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(l *HTTPLoader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewHTTPLoader creates a loader that fetches the corpus from the given URL.
func NewHTTPLoader(url string, opts ...HTTPOption) (*HTTPLoader, error) {
	if url == "" {
		return nil, ErrSourceRequired
	}

	l := &HTTPLoader{
		url:    url,
		client: http.DefaultClient,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Load fetches and decodes the full corpus.
// A non-success response or a transport failure yields ErrUnavailable; a
// response that cannot be decoded into valid articles yields ErrMalformed.
func (l *HTTPLoader) Load(ctx context.Context) ([]core.Article, error) {
	data, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeArticles(data)
}

// fetch retrieves the raw corpus document.
func (l *HTTPLoader) fetch(ctx context.Context) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultFetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	l.logger.Debug("fetching corpus", "url", l.url)

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Error("corpus fetch failed", "url", l.url, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.logger.Error("corpus fetch returned non-success status", "url", l.url, "status", resp.Status)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUnavailable, err)
	}

	return data, nil
}
