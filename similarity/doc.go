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


// Package similarity provides the pure relevance scoring strategies used to
// rank corpus articles against an answer.
//
// Two interchangeable strategies are available:
//
//   - Cosine: directional similarity between two embedding vectors
//   - LexicalOverlap: Jaccard index over token sets, for corpora that carry
//     no embeddings
//
// Both are deterministic and side-effect free. The caller selects a strategy
// based on whether the corpus records carry embeddings.
package similarity
