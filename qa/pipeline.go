package qa

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/jurist/ai"
	"github.com/poiesic/jurist/core"
	"github.com/poiesic/jurist/corpus"
	"github.com/poiesic/jurist/similarity"
)

// DefaultTopK is the number of ranked articles used to ground the final answer.
const DefaultTopK = 20

// Pipeline answers legal questions by grounding a chat model in the most
// relevant corpus articles.
//
// Processing is strictly sequential per question: initial answer, corpus
// load, scoring, ranking, grounded final answer. Concurrent questions run as
// independent pipeline instances sharing only the loader and the embedder.
type Pipeline struct {
	answerer ai.Answerer
	embedder ai.Embedder
	loader   corpus.Loader
	strategy Strategy
	topK     int
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithStrategy sets the scoring strategy.
// Default is StrategyAuto.
func WithStrategy(strategy Strategy) Option {
	return func(p *Pipeline) error {
		p.strategy = strategy
		return nil
	}
}

// WithTopK sets how many ranked articles ground the final answer.
// Default is DefaultTopK; values below 1 are rejected.
func WithTopK(topK int) Option {
	return func(p *Pipeline) error {
		if topK < 1 {
			return fmt.Errorf("topK must be at least 1, got %d", topK)
		}
		p.topK = topK
		return nil
	}
}

// NewPipeline creates a new question answering pipeline.
func NewPipeline(provider ai.Provider, loader corpus.Loader, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if loader == nil {
		return nil, ErrLoaderRequired
	}

	p := &Pipeline{
		answerer: provider.Answerer(),
		embedder: provider.Embedder(),
		loader:   loader,
		strategy: StrategyAuto,
		topK:     DefaultTopK,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ProcessLegalQuestion runs the full pipeline for one question.
// Returns the structured result, or a StageError naming the stage that failed.
func (p *Pipeline) ProcessLegalQuestion(ctx context.Context, question string) (*core.QAResult, error) {
	return p.ProcessLegalQuestionWithMonitor(ctx, question, nil)
}

// ProcessLegalQuestionWithMonitor runs the full pipeline for one question with
// monitoring. The monitor receives callbacks at each stage of processing.
func (p *Pipeline) ProcessLegalQuestionWithMonitor(ctx context.Context, question string, monitor PipelineMonitor) (*core.QAResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(question) == "" {
		return nil, fatal(StageInitialAnswer, ErrEmptyQuestion)
	}

	monitor.Start(question)

	// 1. Obtain the unconditioned answer. Everything downstream ranks
	// against it, so an empty answer is as fatal as a failed call.
	initialAnswer, err := p.answerer.Answer(ctx, question, "")
	if err != nil {
		p.logger.Error("initial answer failed", "err", err)
		return nil, fatal(StageInitialAnswer, err)
	}
	if strings.TrimSpace(initialAnswer) == "" {
		p.logger.Error("model returned empty initial answer")
		return nil, fatal(StageInitialAnswer, ErrEmptyAnswer)
	}
	monitor.AfterInitialAnswer(initialAnswer)

	// 2. Load the corpus and drop entries with blank bodies.
	articles, err := p.loader.Load(ctx)
	if err != nil {
		p.logger.Error("corpus load failed", "err", err)
		return nil, fatal(StageLoadCorpus, err)
	}
	scorable := make([]core.Article, 0, len(articles))
	for _, article := range articles {
		if article.HasText() {
			scorable = append(scorable, article)
		}
	}
	monitor.AfterCorpusLoad(len(articles), len(scorable))

	// 3. Score under the selected strategy.
	scored, err := p.score(ctx, question, initialAnswer, scorable, monitor)
	if err != nil {
		return nil, err
	}

	// 4. Rank descending; the stable sort keeps corpus order on ties.
	slices.SortStableFunc(scored, func(a, b core.ScoredArticle) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})
	if len(scored) > p.topK {
		scored = scored[:p.topK]
	}
	monitor.AfterRanking(scored)

	// 5. Obtain the grounded answer.
	finalAnswer, err := p.answerer.Answer(ctx, question, buildArticleContext(scored))
	if err != nil {
		p.logger.Error("final answer failed", "err", err)
		return nil, fatal(StageFinalAnswer, err)
	}

	result := &core.QAResult{
		Question:      question,
		InitialAnswer: initialAnswer,
		FinalAnswer:   finalAnswer,
		TopArticles:   scored,
	}
	monitor.Finish(result)

	return result, nil
}

// score computes a similarity for every scorable article. Per-article
// failures are logged and skipped; only answer-level failures are fatal.
func (p *Pipeline) score(ctx context.Context, question, initialAnswer string, scorable []core.Article, monitor PipelineMonitor) ([]core.ScoredArticle, error) {
	strategy := p.resolveStrategy(scorable)

	var answerVector []float32
	if strategy == StrategyEmbedding {
		var err error
		answerVector, err = p.embedder.EmbedText(ctx, initialAnswer)
		if err == nil && len(answerVector) == 0 {
			err = fmt.Errorf("embedder returned an empty vector")
		}
		if err != nil {
			if p.strategy == StrategyAuto {
				// Documented substitution: ranking degrades to lexical
				// overlap rather than failing the whole request.
				p.logger.Warn("embedder unavailable, falling back to lexical strategy", "err", err)
				strategy = StrategyLexical
			} else {
				p.logger.Error("failed to embed initial answer", "err", err)
				return nil, fatal(StageEmbedAnswer, err)
			}
		}
	}
	monitor.StrategySelected(strategy)

	if strategy == StrategyLexical {
		return p.scoreLexical(question, initialAnswer, scorable), nil
	}

	monitor.AfterAnswerEmbedding(len(answerVector))
	return p.scoreEmbedding(answerVector, scorable, monitor)
}

// resolveStrategy decides the effective strategy for this corpus.
func (p *Pipeline) resolveStrategy(scorable []core.Article) Strategy {
	if p.strategy != StrategyAuto {
		return p.strategy
	}
	if len(scorable) == 0 {
		return StrategyLexical
	}
	for _, article := range scorable {
		if !article.HasEmbedding() {
			return StrategyLexical
		}
	}
	return StrategyEmbedding
}

// scoreEmbedding ranks by cosine similarity against precomputed embeddings.
func (p *Pipeline) scoreEmbedding(answerVector []float32, scorable []core.Article, monitor PipelineMonitor) ([]core.ScoredArticle, error) {
	scored := make([]core.ScoredArticle, 0, len(scorable))
	usable := 0

	for _, article := range scorable {
		if !article.HasEmbedding() {
			p.logger.Warn("article has no embedding, skipping", "article", article.Number)
			monitor.ArticleSkipped(article.Number, ErrNoEmbeddings)
			continue
		}
		usable++

		sim, err := similarity.Cosine(answerVector, article.Embedding)
		if err != nil {
			// One bad vector must not abort the batch.
			p.logger.Warn("failed to score article, skipping", "article", article.Number, "err", err)
			monitor.ArticleSkipped(article.Number, err)
			continue
		}

		scored = append(scored, core.ScoredArticle{
			Number:     article.Number,
			Similarity: sim,
			Text:       article.Text,
		})
	}

	if usable == 0 && len(scorable) > 0 {
		return nil, fatal(StageScore, ErrNoEmbeddings)
	}

	return scored, nil
}

// scoreLexical ranks by token overlap between "question answer" and the
// article text. Pure string work, so no per-article failures are possible.
func (p *Pipeline) scoreLexical(question, initialAnswer string, scorable []core.Article) []core.ScoredArticle {
	query := question + " " + initialAnswer

	scored := make([]core.ScoredArticle, 0, len(scorable))
	for _, article := range scorable {
		scored = append(scored, core.ScoredArticle{
			Number:     article.Number,
			Similarity: similarity.LexicalOverlap(query, article.Text),
			Text:       article.Text,
		})
	}
	return scored
}

// buildArticleContext concatenates ranked articles into the grounding block
// supplied to the final model call, preserving rank order.
func buildArticleContext(articles []core.ScoredArticle) string {
	if len(articles) == 0 {
		return ""
	}

	var b strings.Builder
	for i, article := range articles {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Article %s:\n%s", article.Number, article.Text)
	}
	return b.String()
}
