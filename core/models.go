package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier derived from content.
// It is used to fingerprint corpus snapshots for cache invalidation.
type ID uint64

// IDFromContent generates a deterministic ID from raw content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Article is a single statute provision from the corpus.
// The embedding is precomputed offline and is absent in corpora that are
// ranked with the lexical fallback strategy.
type Article struct {
	Number    string    `json:"article_number"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// HasText reports whether the article body contains anything beyond whitespace.
// Articles without text are excluded from scoring.
func (a *Article) HasText() bool {
	return strings.TrimSpace(a.Text) != ""
}

// HasEmbedding reports whether the article carries a precomputed embedding.
func (a *Article) HasEmbedding() bool {
	return len(a.Embedding) > 0
}

// ScoredArticle is an article paired with its relevance to one question.
// It exists only for the duration of a single request.
type ScoredArticle struct {
	Number     string  `json:"article_number"`
	Similarity float32 `json:"similarity"`
	Text       string  `json:"text"`
}

// QAResult is the structured outcome of processing one legal question.
type QAResult struct {
	Question      string          `json:"question"`
	InitialAnswer string          `json:"initialAnswer"`
	FinalAnswer   string          `json:"finalAnswer"`
	TopArticles   []ScoredArticle `json:"topArticles"`
}
