package qa

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/jurist/ai/mock"
	"github.com/poiesic/jurist/core"
	"github.com/poiesic/jurist/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader wraps a static corpus and counts Load calls.
type countingLoader struct {
	articles []core.Article
	err      error
	calls    int
}

func (l *countingLoader) Load(_ context.Context) ([]core.Article, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.articles, nil
}

// recordingMonitor captures pipeline callbacks for assertions.
type recordingMonitor struct {
	started  bool
	strategy Strategy
	skipped  []string
	ranked   []core.ScoredArticle
	finished bool
}

func (m *recordingMonitor) Start(_ string)              { m.started = true }
func (m *recordingMonitor) AfterInitialAnswer(_ string) {}
func (m *recordingMonitor) AfterCorpusLoad(_, _ int)    {}
func (m *recordingMonitor) StrategySelected(s Strategy) { m.strategy = s }
func (m *recordingMonitor) AfterAnswerEmbedding(_ int)  {}
func (m *recordingMonitor) ArticleSkipped(number string, _ error) {
	m.skipped = append(m.skipped, number)
}
func (m *recordingMonitor) AfterRanking(top []core.ScoredArticle) { m.ranked = top }
func (m *recordingMonitor) Finish(_ *core.QAResult)               { m.finished = true }

// fixedEmbedder returns the same vector for every text.
func fixedEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func TestNewPipeline(t *testing.T) {
	provider := mock.NewMockProvider()
	loader := corpus.NewStaticLoader(nil)

	t.Run("valid configuration", func(t *testing.T) {
		pipeline, err := NewPipeline(provider, loader)
		require.NoError(t, err)
		assert.NotNil(t, pipeline)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(nil, loader)
		assert.Equal(t, ErrProviderRequired, err)
	})

	t.Run("nil loader", func(t *testing.T) {
		_, err := NewPipeline(provider, nil)
		assert.Equal(t, ErrLoaderRequired, err)
	})

	t.Run("invalid topK", func(t *testing.T) {
		_, err := NewPipeline(provider, loader, WithTopK(0))
		assert.Error(t, err)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		pipeline, err := NewPipeline(provider, loader, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, pipeline)
	})
}

func TestProcessLegalQuestion_EmbeddingRanking(t *testing.T) {
	// Scenario: two-article corpus, one with a blank body. The initial
	// answer embeds onto the first article's axis exactly.
	articles := []core.Article{
		{Number: "1", Text: "Contracts require consent.", Embedding: []float32{1, 0}},
		{Number: "2", Text: "", Embedding: []float32{0, 1}},
	}

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), mock.NewMockAnswerer())
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result, err := pipeline.ProcessLegalQuestionWithMonitor(context.Background(), "Do contracts require consent?", monitor)
	require.NoError(t, err)

	require.Len(t, result.TopArticles, 1)
	assert.Equal(t, "1", result.TopArticles[0].Number)
	assert.InDelta(t, 1.0, float64(result.TopArticles[0].Similarity), 1e-6)

	assert.Equal(t, StrategyEmbedding, monitor.strategy)
	assert.True(t, monitor.started)
	assert.True(t, monitor.finished)
	assert.NotEmpty(t, result.InitialAnswer)
	assert.NotEmpty(t, result.FinalAnswer)
}

func TestProcessLegalQuestion_LexicalFallbackCorpus(t *testing.T) {
	// Scenario: the corpus carries no embeddings, forcing lexical overlap
	// against question + initial answer.
	articles := []core.Article{
		{Number: "266", Text: "Termination of a lease requires written notice."},
	}

	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(_ context.Context, question, articleContext string) (string, error) {
		if articleContext == "" {
			return "A lease may be terminated by notice.", nil
		}
		return "Per Article 266, written notice terminates a lease.", nil
	}

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, answerer)
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result, err := pipeline.ProcessLegalQuestionWithMonitor(context.Background(), "termination of lease", monitor)
	require.NoError(t, err)

	assert.Equal(t, StrategyLexical, monitor.strategy)
	require.Len(t, result.TopArticles, 1)
	assert.Equal(t, "266", result.TopArticles[0].Number)
	assert.Greater(t, result.TopArticles[0].Similarity, float32(0))

	// The embedder must never be touched on the lexical path.
	assert.Zero(t, embedder.CallCount())
}

func TestProcessLegalQuestion_FailFastBeforeCorpusFetch(t *testing.T) {
	// Scenario: the chat endpoint fails immediately. The corpus must not
	// be fetched at all.
	answerer := mock.NewMockAnswerer()
	providerErr := errors.New("chat endpoint: 500 Internal Server Error")
	answerer.AnswerFunc = func(_ context.Context, _, _ string) (string, error) {
		return "", providerErr
	}

	loader := &countingLoader{}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), answerer)
	pipeline, err := NewPipeline(provider, loader)
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "anything")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageInitialAnswer, stageErr.Stage)
	assert.ErrorIs(t, err, providerErr)
	assert.Zero(t, loader.calls, "corpus must not be fetched after a failed initial answer")
}

func TestProcessLegalQuestion_EmptyInitialAnswerIsFatal(t *testing.T) {
	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(_ context.Context, _, _ string) (string, error) {
		return "   ", nil
	}

	loader := &countingLoader{}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), answerer)
	pipeline, err := NewPipeline(provider, loader)
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Zero(t, loader.calls)
}

func TestProcessLegalQuestion_EmptyQuestion(t *testing.T) {
	pipeline, err := NewPipeline(mock.NewMockProvider(), corpus.NewStaticLoader(nil))
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "  \n ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestProcessLegalQuestion_CorpusUnavailableIsFatal(t *testing.T) {
	loader := &countingLoader{err: corpus.ErrUnavailable}
	pipeline, err := NewPipeline(mock.NewMockProvider(), loader)
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "anything")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageLoadCorpus, stageErr.Stage)
	assert.ErrorIs(t, err, corpus.ErrUnavailable)
}

func TestProcessLegalQuestion_SkipsBadVectorsWithoutAborting(t *testing.T) {
	// One article has a vector of the wrong length; it must be dropped
	// while the rest are still ranked.
	articles := []core.Article{
		{Number: "1", Text: "close match", Embedding: []float32{1, 0}},
		{Number: "2", Text: "mangled entry", Embedding: []float32{1, 0, 0}},
		{Number: "3", Text: "far match", Embedding: []float32{0, 1}},
	}

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), mock.NewMockAnswerer())
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result, err := pipeline.ProcessLegalQuestionWithMonitor(context.Background(), "q", monitor)
	require.NoError(t, err)

	require.Len(t, result.TopArticles, 2)
	assert.Equal(t, "1", result.TopArticles[0].Number)
	assert.Equal(t, "3", result.TopArticles[1].Number)
	assert.Equal(t, []string{"2"}, monitor.skipped)
}

func TestProcessLegalQuestion_RankingAndTopK(t *testing.T) {
	// 25 scorable articles with strictly increasing alignment to the
	// answer vector: only the best 20 survive, in descending order.
	articles := make([]core.Article, 0, 26)
	for i := 0; i < 25; i++ {
		x := float32(i + 1)
		articles = append(articles, core.Article{
			Number:    fmt.Sprintf("%d", i+1),
			Text:      fmt.Sprintf("article body %d", i+1),
			Embedding: []float32{x, 50 - x},
		})
	}
	articles = append(articles, core.Article{Number: "blank", Text: "   ", Embedding: []float32{1, 0}})

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), mock.NewMockAnswerer())
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	result, err := pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, result.TopArticles, DefaultTopK)
	assert.Equal(t, "25", result.TopArticles[0].Number)
	for i := 1; i < len(result.TopArticles); i++ {
		assert.GreaterOrEqual(t, result.TopArticles[i-1].Similarity, result.TopArticles[i].Similarity,
			"topArticles must be sorted by non-increasing similarity")
	}
	for _, scored := range result.TopArticles {
		assert.NotEqual(t, "blank", scored.Number, "blank articles must never be ranked")
	}
}

func TestProcessLegalQuestion_StableTieOrder(t *testing.T) {
	// Identical embeddings score identically; corpus order must decide.
	articles := []core.Article{
		{Number: "first", Text: "a", Embedding: []float32{1, 0}},
		{Number: "second", Text: "b", Embedding: []float32{1, 0}},
		{Number: "third", Text: "c", Embedding: []float32{1, 0}},
	}

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), mock.NewMockAnswerer())
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	result, err := pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, result.TopArticles, 3)
	assert.Equal(t, "first", result.TopArticles[0].Number)
	assert.Equal(t, "second", result.TopArticles[1].Number)
	assert.Equal(t, "third", result.TopArticles[2].Number)
}

func TestProcessLegalQuestion_ContextBlockFormat(t *testing.T) {
	articles := []core.Article{
		{Number: "1", Text: "Contracts require consent.", Embedding: []float32{1, 0}},
		{Number: "2", Text: "A lease ends by notice.", Embedding: []float32{0.9, 0.1}},
	}

	var captured string
	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(_ context.Context, _, articleContext string) (string, error) {
		if articleContext != "" {
			captured = articleContext
		}
		return "answer text", nil
	}

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), answerer)
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.NoError(t, err)

	expected := "Article 1:\nContracts require consent.\n\nArticle 2:\nA lease ends by notice."
	assert.Equal(t, expected, captured)
}

func TestProcessLegalQuestion_AutoFallsBackOnEmbedderFailure(t *testing.T) {
	articles := []core.Article{
		{Number: "1", Text: "termination of a lease", Embedding: []float32{1, 0}},
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("model weights unavailable")
	}

	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(_ context.Context, _, articleContext string) (string, error) {
		return "a lease can be terminated", nil
	}

	provider := mock.NewMockProviderWithServices(embedder, answerer)
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result, err := pipeline.ProcessLegalQuestionWithMonitor(context.Background(), "lease termination", monitor)
	require.NoError(t, err)

	assert.Equal(t, StrategyLexical, monitor.strategy)
	require.Len(t, result.TopArticles, 1)
	assert.Greater(t, result.TopArticles[0].Similarity, float32(0))
}

func TestProcessLegalQuestion_ExplicitEmbeddingStrategyFailureIsFatal(t *testing.T) {
	articles := []core.Article{
		{Number: "1", Text: "x", Embedding: []float32{1, 0}},
	}

	embedder := mock.NewMockEmbedder()
	embedErr := errors.New("model weights unavailable")
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, embedErr
	}

	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockAnswerer())
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles), WithStrategy(StrategyEmbedding))
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageEmbedAnswer, stageErr.Stage)
	assert.ErrorIs(t, err, embedErr)
}

func TestProcessLegalQuestion_EmbeddingStrategyWithoutEmbeddings(t *testing.T) {
	articles := []core.Article{
		{Number: "1", Text: "no vector here"},
	}

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), mock.NewMockAnswerer())
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles), WithStrategy(StrategyEmbedding))
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEmbeddings)
}

func TestProcessLegalQuestion_FinalAnswerFailureIsFatal(t *testing.T) {
	articles := []core.Article{
		{Number: "1", Text: "x", Embedding: []float32{1, 0}},
	}

	finalErr := errors.New("chat endpoint: 502 Bad Gateway")
	answerer := mock.NewMockAnswerer()
	answerer.AnswerFunc = func(_ context.Context, _, articleContext string) (string, error) {
		if articleContext != "" {
			return "", finalErr
		}
		return "initial answer", nil
	}

	provider := mock.NewMockProviderWithServices(fixedEmbedder([]float32{1, 0}), answerer)
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(articles))
	require.NoError(t, err)

	_, err = pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageFinalAnswer, stageErr.Stage)
	assert.ErrorIs(t, err, finalErr)
}

func TestProcessLegalQuestion_EmptyCorpus(t *testing.T) {
	answerer := mock.NewMockAnswerer()
	var groundedContext *string
	answerer.AnswerFunc = func(_ context.Context, _, articleContext string) (string, error) {
		if groundedContext == nil {
			// First call is ungrounded.
			groundedContext = new(string)
			return "initial", nil
		}
		*groundedContext = articleContext
		return "final", nil
	}

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), answerer)
	pipeline, err := NewPipeline(provider, corpus.NewStaticLoader(nil))
	require.NoError(t, err)

	result, err := pipeline.ProcessLegalQuestion(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, result.TopArticles)
	assert.Equal(t, "", *groundedContext, "no articles means no grounding block")
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"auto", StrategyAuto, false},
		{"", StrategyAuto, false},
		{"embedding", StrategyEmbedding, false},
		{"lexical", StrategyLexical, false},
		{"vibes", StrategyAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
