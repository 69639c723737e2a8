package corpus

import (
	"context"
	"testing"

	"github.com/poiesic/jurist/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArticles(t *testing.T) {
	t.Run("flat embeddings", func(t *testing.T) {
		data := []byte(`[
			{"article_number": "1", "text": "Contracts require consent.", "embedding": [1, 0]},
			{"article_number": "2", "text": "A lease ends by notice.", "embedding": [0, 1]}
		]`)

		articles, err := DecodeArticles(data)
		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, "1", articles[0].Number)
		assert.Equal(t, []float32{1, 0}, articles[0].Embedding)
		assert.Equal(t, []float32{0, 1}, articles[1].Embedding)
	})

	t.Run("nested embedding rows are coerced", func(t *testing.T) {
		data := []byte(`[{"article_number": "1", "text": "x", "embedding": [[0.5, 0.5]]}]`)

		articles, err := DecodeArticles(data)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.5}, articles[0].Embedding)
	})

	t.Run("index-keyed embeddings are coerced", func(t *testing.T) {
		data := []byte(`[{"article_number": "1", "text": "x", "embedding": {"0": 0.5, "1": 0.25}}]`)

		articles, err := DecodeArticles(data)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.25}, articles[0].Embedding)
	})

	t.Run("missing embeddings are allowed", func(t *testing.T) {
		data := []byte(`[
			{"article_number": "1", "text": "lexical corpus entry"},
			{"article_number": "2", "text": "another", "embedding": null}
		]`)

		articles, err := DecodeArticles(data)
		require.NoError(t, err)
		assert.False(t, articles[0].HasEmbedding())
		assert.False(t, articles[1].HasEmbedding())
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodeArticles([]byte(`{"not": "an array"}`))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty article number", func(t *testing.T) {
		data := []byte(`[{"article_number": "", "text": "orphan"}]`)
		_, err := DecodeArticles(data)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.ErrorIs(t, err, core.ErrEmptyArticleNumber)
	})

	t.Run("dimension mismatch across entries", func(t *testing.T) {
		data := []byte(`[
			{"article_number": "1", "text": "a", "embedding": [1, 0]},
			{"article_number": "2", "text": "b", "embedding": [1, 0, 0]}
		]`)
		_, err := DecodeArticles(data)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("unusable embedding shape", func(t *testing.T) {
		data := []byte(`[{"article_number": "1", "text": "x", "embedding": "0.5,0.5"}]`)
		_, err := DecodeArticles(data)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.ErrorIs(t, err, core.ErrInvalidVector)
	})
}

func TestEncodeArticles_RoundTrip(t *testing.T) {
	in := []core.Article{
		{Number: "1", Text: "Contracts require consent.", Embedding: []float32{1, 0}},
		{Number: "2", Text: "No embedding here."},
	}

	data, err := EncodeArticles(in)
	require.NoError(t, err)

	out, err := DecodeArticles(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStaticLoader(t *testing.T) {
	articles := []core.Article{{Number: "1", Text: "x"}}
	loader := NewStaticLoader(articles)

	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, articles, loaded)
}
