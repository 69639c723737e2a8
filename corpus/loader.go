package corpus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/jurist/core"
)

// Loader fetches the full article corpus.
// Implementations must be safe for concurrent use.
type Loader interface {
	// Load returns every article record in the corpus, or fails with a
	// distinct unavailable condition. It never returns a partial corpus.
	Load(ctx context.Context) ([]core.Article, error)
}

// articleRecord mirrors the corpus wire format. The embedding is deferred to
// a raw message because producers disagree on its shape; see core.CoerceVector.
type articleRecord struct {
	Number    string          `json:"article_number"`
	Text      string          `json:"text"`
	Embedding json.RawMessage `json:"embedding"`
}

// DecodeArticles decodes a JSON corpus document into validated article records.
// Embedding payloads of any supported shape are coerced into flat vectors at
// this boundary so downstream code only ever sees []float32.
func DecodeArticles(data []byte) ([]core.Article, error) {
	var records []articleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	articles := make([]core.Article, len(records))
	for i, record := range records {
		articles[i] = core.Article{
			Number: record.Number,
			Text:   record.Text,
		}

		if len(record.Embedding) == 0 || string(record.Embedding) == "null" {
			continue
		}

		var raw any
		if err := json.Unmarshal(record.Embedding, &raw); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformed, i, err)
		}
		vector, err := core.CoerceVector(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformed, i, err)
		}
		articles[i].Embedding = vector
	}

	if err := core.ValidateCorpus(articles); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return articles, nil
}

// EncodeArticles encodes article records into the canonical JSON corpus format.
// This is the inverse of DecodeArticles modulo embedding shape: coerced
// vectors always encode as flat arrays.
func EncodeArticles(articles []core.Article) ([]byte, error) {
	return json.Marshal(articles)
}

// StaticLoader serves a fixed, in-process corpus. Useful for tests and for
// callers that load the corpus through other means.
type StaticLoader struct {
	articles []core.Article
}

var _ Loader = (*StaticLoader)(nil)

// NewStaticLoader creates a loader over the given articles.
func NewStaticLoader(articles []core.Article) *StaticLoader {
	return &StaticLoader{articles: articles}
}

// Load returns the static corpus.
func (l *StaticLoader) Load(_ context.Context) ([]core.Article, error) {
	return l.articles, nil
}
