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


// Package openai implements the ai interfaces against OpenAI-compatible APIs.
//
// It works with any service speaking the OpenAI wire protocol: Ollama,
// LocalAI, vLLM, or OpenAI itself. Two services are provided:
//
//   - Embedder: text embeddings via the embeddings endpoint
//   - Answerer: legal question answering via chat completions, with
//     grounded and ungrounded system instructions
//
// The LazyEmbedder wrapper defers embedder construction to first use and
// guarantees a single shared initialization attempt across concurrent
// callers, with retry after a failed attempt. Providers hand it out so
// purely lexical request paths never touch the embedding backend.
package openai
