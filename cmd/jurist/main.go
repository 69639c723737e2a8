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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/jurist"
	"github.com/poiesic/jurist/ai"
	"github.com/poiesic/jurist/ai/openai"
	"github.com/poiesic/jurist/corpus"
	"github.com/poiesic/jurist/ingest"
	"github.com/poiesic/jurist/qa"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "jurist",
		Usage: "Corpus-grounded legal question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a legal question grounded in the article corpus",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "URL of the article corpus (JSON)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Model service host URL for chat and embeddings",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "chat-model",
						Usage: "Chat model name",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Similarity strategy (auto, embedding, lexical)",
						Value: "auto",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of ranked articles to ground the answer",
						Value: qa.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "cache",
						Usage: "Path to a local corpus cache directory",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
				},
			},
			{
				Name:   "embed-corpus",
				Usage:  "Compute embeddings for a raw article corpus file",
				Action: embedCorpusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the raw corpus JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path to write the embedded corpus JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles to embed in each batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of batches embedded concurrently",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	strategy, err := qa.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	aiOpts := []ai.ConfigOption{ai.WithHost(c.String("host"))}
	if model := c.String("chat-model"); model != "" {
		aiOpts = append(aiOpts, ai.WithChatModel(model))
	}
	if model := c.String("embedding-model"); model != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingModel(model))
	}

	opts := []jurist.ServiceOption{
		jurist.WithAIConfig(ai.NewConfig(aiOpts...)),
		jurist.WithScoringStrategy(strategy),
		jurist.WithTopArticles(c.Int("top-k")),
	}
	if cachePath := c.String("cache"); cachePath != "" {
		opts = append(opts, jurist.WithCorpusCache(cachePath))
	}

	svc, err := jurist.NewService(c.String("corpus"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	result, err := svc.ProcessLegalQuestion(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	fmt.Printf("Question: %s\n\n", result.Question)
	fmt.Printf("Grounding articles (%d):\n", len(result.TopArticles))
	for i, article := range result.TopArticles {
		fmt.Printf("%d: Article %s [%0.3f]\n", i+1, article.Number, article.Similarity)
	}
	fmt.Printf("\n%s\n", result.FinalAnswer)

	return nil
}

func embedCorpusCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read corpus file: %w", err)
	}

	articles, err := corpus.DecodeArticles(data)
	if err != nil {
		return fmt.Errorf("failed to decode corpus: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	ce, err := ingest.NewCorpusEmbedder(embedder,
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithPoolSize(c.Int("pool-size")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingest.WithProgress(os.Stderr),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Corpus: %s (%d articles)\n", c.String("input"), len(articles))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	embedded, err := ce.Run(ctx, articles)
	if err != nil {
		return fmt.Errorf("corpus embedding failed: %w", err)
	}

	out, err := corpus.EncodeArticles(embedded)
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}

	if err := os.WriteFile(c.String("output"), out, 0644); err != nil {
		return fmt.Errorf("failed to write corpus file: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
