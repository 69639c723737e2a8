package qa

import "github.com/poiesic/jurist/core"

// PipelineMonitor provides hooks to observe the question answering pipeline.
// Implement this interface to track intermediate steps and results during
// processing.
type PipelineMonitor interface {
	Start(question string)
	AfterInitialAnswer(answer string)
	AfterCorpusLoad(total, scorable int)
	StrategySelected(strategy Strategy)
	AfterAnswerEmbedding(dimension int)
	ArticleSkipped(articleNumber string, err error)
	AfterRanking(top []core.ScoredArticle)
	Finish(result *core.QAResult)
}

// noopMonitor is a no-op implementation of PipelineMonitor
type noopMonitor struct{}

var _ PipelineMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterInitialAnswer(_ string)          {}
func (n *noopMonitor) AfterCorpusLoad(_, _ int)             {}
func (n *noopMonitor) StrategySelected(_ Strategy)          {}
func (n *noopMonitor) AfterAnswerEmbedding(_ int)           {}
func (n *noopMonitor) ArticleSkipped(_ string, _ error)     {}
func (n *noopMonitor) AfterRanking(_ []core.ScoredArticle)  {}
func (n *noopMonitor) Finish(_ *core.QAResult)              {}
