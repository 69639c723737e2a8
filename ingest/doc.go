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

// Package ingest prepares article corpora for retrieval by computing
// an embedding for every article body.
//
// Embedding a statute corpus is an offline, batch-oriented job: articles
// are grouped into batches, submitted to a worker pool, and each batch is
// embedded with retry and exponential backoff. Vectors are normalized to
// unit length so that downstream cosine scoring reduces to a dot product.
package ingest
