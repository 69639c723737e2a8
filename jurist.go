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

package jurist

import (
	"context"
	"log/slog"

	"github.com/poiesic/jurist/ai"
	"github.com/poiesic/jurist/ai/openai"
	"github.com/poiesic/jurist/core"
	"github.com/poiesic/jurist/corpus"
	badgercache "github.com/poiesic/jurist/corpus/badger"
	"github.com/poiesic/jurist/ingest"
	"github.com/poiesic/jurist/qa"
)

// Service bundles a model provider, a corpus loader, and the question
// pipeline behind one handle.
type Service struct {
	provider ai.Provider
	loader   corpus.Loader
	backend  *badgercache.Backend
	pipeline *qa.Pipeline
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig  *ai.Config
	cachePath string
	strategy  qa.Strategy
	topK      int
}

// WithAIConfig sets the model endpoints and model names.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithCorpusCache enables a local corpus cache at the given path. When the
// remote corpus is unreachable the last fetched copy is served instead.
func WithCorpusCache(filePath string) ServiceOption {
	return func(o *serviceOptions) {
		o.cachePath = filePath
	}
}

// WithScoringStrategy fixes the similarity strategy instead of letting the
// pipeline choose per corpus.
func WithScoringStrategy(strategy qa.Strategy) ServiceOption {
	return func(o *serviceOptions) {
		o.strategy = strategy
	}
}

// WithTopArticles sets how many ranked articles ground the final answer.
func WithTopArticles(topK int) ServiceOption {
	return func(o *serviceOptions) {
		o.topK = topK
	}
}

// NewService creates a service that answers questions against the corpus
// published at corpusURL.
func NewService(corpusURL string, opts ...ServiceOption) (*Service, error) {
	// Apply options
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.aiConfig == nil {
		options.aiConfig = ai.DefaultConfig()
	}

	httpLoader, err := corpus.NewHTTPLoader(corpusURL)
	if err != nil {
		return nil, err
	}

	var loader corpus.Loader = httpLoader
	var backend *badgercache.Backend

	if options.cachePath != "" {
		backend, err = badgercache.OpenBackend(options.cachePath, false)
		if err != nil {
			return nil, err
		}

		loader, err = badgercache.NewCache(httpLoader, backend, corpusURL)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		if backend != nil {
			backend.Close()
		}
		return nil, err
	}

	pipelineOpts := []qa.Option{qa.WithStrategy(options.strategy)}
	if options.topK > 0 {
		pipelineOpts = append(pipelineOpts, qa.WithTopK(options.topK))
	}

	pipeline, err := qa.NewPipeline(provider, loader, pipelineOpts...)
	if err != nil {
		provider.Close()
		if backend != nil {
			backend.Close()
		}
		return nil, err
	}

	return &Service{
		provider: provider,
		loader:   loader,
		backend:  backend,
		pipeline: pipeline,
		logger:   slog.Default(),
	}, nil
}

// ProcessLegalQuestion answers a legal question grounded in the corpus.
func (s *Service) ProcessLegalQuestion(ctx context.Context, question string) (*core.QAResult, error) {
	return s.pipeline.ProcessLegalQuestion(ctx, question)
}

// Pipeline exposes the underlying question pipeline for callers that need
// monitored runs.
func (s *Service) Pipeline() *qa.Pipeline {
	return s.pipeline
}

// Loader exposes the configured corpus loader.
func (s *Service) Loader() corpus.Loader {
	return s.loader
}

// NewCorpusEmbedder creates a corpus embedder backed by the service's
// embedding endpoint.
func (s *Service) NewCorpusEmbedder(opts ...ingest.Option) (*ingest.CorpusEmbedder, error) {
	return ingest.NewCorpusEmbedder(s.provider.Embedder(), opts...)
}

func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing corpus cache", "err", err)
			return err
		}
	}
	return nil
}
