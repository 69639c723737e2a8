// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/jurist/core"
	"github.com/poiesic/jurist/corpus"
)

// Cache wraps a corpus.Loader with a local BadgerDB copy of the corpus.
//
// Every successful load refreshes the cached copy when its content
// fingerprint changes. When the wrapped loader fails, the cached copy is
// served instead, so a transient outage of the corpus host does not take
// question answering down. The cache never invents freshness: if both the
// loader and the cache come up empty, the loader's error is returned.
type Cache struct {
	loader  corpus.Loader
	backend *Backend
	source  string
	logger  *slog.Logger
}

var _ corpus.Loader = (*Cache)(nil)

var (
	// ErrLoaderRequired is returned when a cache is constructed without a loader.
	ErrLoaderRequired = errors.New("corpus loader required")

	// ErrBackendRequired is returned when a cache is constructed without a backend.
	ErrBackendRequired = errors.New("cache backend required")
)

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCache creates a caching loader over the given loader and backend.
// The source string discriminates cache entries when several corpora share
// one backend; the corpus URL is the natural choice.
func NewCache(loader corpus.Loader, backend *Backend, source string, opts ...Option) (*Cache, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if source == "" {
		return nil, corpus.ErrSourceRequired
	}

	c := &Cache{
		loader:  loader,
		backend: backend,
		source:  source,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Load fetches the corpus through the wrapped loader, falling back to the
// cached copy when the loader fails.
func (c *Cache) Load(ctx context.Context) ([]core.Article, error) {
	articles, err := c.loader.Load(ctx)
	if err != nil {
		cached, cacheErr := c.loadCached()
		if cacheErr != nil {
			c.logger.Warn("corpus load failed and cache lookup errored", "source", c.source, "err", cacheErr)
			return nil, err
		}
		if cached == nil {
			return nil, err
		}
		c.logger.Warn("corpus source unavailable, serving cached copy", "source", c.source, "err", err)
		return cached, nil
	}

	if storeErr := c.store(articles); storeErr != nil {
		// Caching is best effort; the fresh corpus is still good.
		c.logger.Warn("failed to refresh corpus cache", "source", c.source, "err", storeErr)
	}

	return articles, nil
}

// Fingerprint returns the content fingerprint of the cached corpus copy,
// or 0 when nothing is cached.
func (c *Cache) Fingerprint() (core.ID, error) {
	data, err := c.backend.get(makeCorpusFingerprintKey(c.source))
	if err != nil {
		return 0, err
	}
	return decodeFingerprint(data), nil
}

// loadCached returns the cached corpus copy, or nil when nothing is cached.
func (c *Cache) loadCached() ([]core.Article, error) {
	data, err := c.backend.get(makeCorpusDocKey(c.source))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return corpus.DecodeArticles(data)
}

// store writes the corpus and its fingerprint, skipping the write when the
// fingerprint is unchanged.
func (c *Cache) store(articles []core.Article) error {
	data, err := corpus.EncodeArticles(articles)
	if err != nil {
		return err
	}

	fingerprint := core.IDFromContent(data)
	previous, err := c.Fingerprint()
	if err != nil {
		return err
	}
	if previous == fingerprint {
		return nil
	}

	if previous != 0 {
		c.logger.Info("corpus content changed, replacing cached copy",
			"source", c.source, "articles", len(articles))
	}

	return c.backend.set(map[string][]byte{
		string(makeCorpusDocKey(c.source)):         data,
		string(makeCorpusFingerprintKey(c.source)): encodeFingerprint(fingerprint),
	})
}
