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


// Package qa implements the retrieval-and-re-ranking pipeline for grounded
// legal question answering.
//
// A question is processed in five stages:
//
//  1. Obtain an unconditioned answer from the chat model
//  2. Load the statute article corpus
//  3. Score every article against the initial answer (cosine similarity
//     over embeddings, or lexical overlap as fallback)
//  4. Rank and keep the top articles
//  5. Obtain a final answer grounded in those articles
//
// A failure in any stage aborts the request with a StageError naming the
// stage; a failure scoring one article drops only that article. The
// PipelineMonitor interface exposes each stage for observability.
package qa
