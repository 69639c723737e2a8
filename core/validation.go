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


package core

import (
	"fmt"
	"strings"
)

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - Number must not be empty or whitespace-only
//
// NOT validated:
//   - Text (articles with blank bodies stay in the corpus but are never scored)
//   - Embedding (absent in lexical-fallback corpora)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if strings.TrimSpace(article.Number) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyArticleNumber)
	}

	return nil
}

// ValidateCorpus validates a full corpus of articles.
//
// Every article must pass ValidateArticle, and every article that carries an
// embedding must agree on dimensionality. Comparing vectors of different
// lengths is meaningless, so a mixed corpus is rejected up front rather than
// surfacing as per-article scoring failures.
func ValidateCorpus(articles []Article) error {
	dim := 0
	for i := range articles {
		if err := ValidateArticle(&articles[i]); err != nil {
			return fmt.Errorf("corpus entry %d: %w", i, err)
		}
		if !articles[i].HasEmbedding() {
			continue
		}
		if dim == 0 {
			dim = len(articles[i].Embedding)
			continue
		}
		if len(articles[i].Embedding) != dim {
			return fmt.Errorf("corpus entry %d (article %s): %w: expected %d, got %d",
				i, articles[i].Number, ErrDimensionMismatch, dim, len(articles[i].Embedding))
		}
	}
	return nil
}
