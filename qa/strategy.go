package qa

import "fmt"

// Strategy selects how corpus articles are scored against the initial answer.
type Strategy int

const (
	// StrategyAuto picks StrategyEmbedding when every scorable corpus entry
	// carries an embedding and StrategyLexical otherwise. If the embedder
	// cannot be initialized it downgrades to StrategyLexical instead of
	// failing the request.
	StrategyAuto Strategy = iota

	// StrategyEmbedding ranks by cosine similarity between the embedded
	// initial answer and the precomputed article embeddings. Embedder
	// failure is fatal under this strategy.
	StrategyEmbedding

	// StrategyLexical ranks by Jaccard token overlap between
	// "question + answer" and the article text. Needs no embeddings.
	StrategyLexical
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyEmbedding:
		return "embedding"
	case StrategyLexical:
		return "lexical"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseStrategy converts a configuration name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "auto", "":
		return StrategyAuto, nil
	case "embedding":
		return StrategyEmbedding, nil
	case "lexical":
		return StrategyLexical, nil
	default:
		return StrategyAuto, fmt.Errorf("unknown strategy %q", name)
	}
}
