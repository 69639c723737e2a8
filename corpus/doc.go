// Package corpus loads the read-only collection of statute articles that the
// retrieval pipeline ranks against.
//
// The corpus is a static JSON array of records:
//
//	[{"article_number": "1", "text": "...", "embedding": [0.1, ...]}, ...]
//
// The embedding field is optional; a corpus without embeddings forces the
// lexical ranking strategy. Embeddings are precomputed offline (see the
// ingest package) and must all come from the same model.
//
// HTTPLoader fetches the corpus from a URL on every load. The corpus/badger
// subpackage adds a local availability cache on top of any Loader.
package corpus
