// Package scorer provides the relevance-scoring strategies behind the
// reranker: a local embedding heuristic and a delegated remote endpoint.
package scorer

import (
	"context"
	"fmt"
	"math"

	"docchat/internal/domain"
)

// MaxCandidates bounds how many candidates any scoring strategy accepts per
// rerank. A fixed cost-control policy, not a tunable.
const MaxCandidates = 10

// EmbeddingScorer derives relevance from a secondary embedding of the
// (query, document) pair: the embedding's root-mean-square magnitude and the
// mean of its positive components, averaged. A heuristic signal, selectable
// next to the remote scorer.
type EmbeddingScorer struct {
	inference domain.Inference
	model     string
}

func NewEmbeddingScorer(inference domain.Inference, model string) *EmbeddingScorer {
	return &EmbeddingScorer{inference: inference, model: model}
}

func (s *EmbeddingScorer) Score(ctx context.Context, query, document string) (float64, error) {
	prompt := fmt.Sprintf("Query: %s\n\nDocument: %s\n\nRelevance:", query, document)
	embedding, err := s.inference.Embed(ctx, s.model, prompt)
	if err != nil {
		return 0, fmt.Errorf("scoring embedding: %w", err)
	}
	return relevanceScore(embedding), nil
}

func relevanceScore(embedding []float64) float64 {
	var sumPositive, sumSquares float64
	for _, v := range embedding {
		sumSquares += v * v
		if v > 0 {
			sumPositive += v
		}
	}
	if sumSquares == 0 {
		return 0
	}
	n := float64(len(embedding))
	magnitude := math.Sqrt(sumSquares) / n
	positiveRatio := sumPositive / n
	return (magnitude + positiveRatio) / 2
}
