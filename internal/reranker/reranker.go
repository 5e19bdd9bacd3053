// Package reranker orders retrieval candidates by a second relevance signal
// and truncates them to a small top-K result.
package reranker

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docchat/internal/domain"
	"docchat/internal/scorer"
)

const (
	defaultTopK = 3
	// Scoring calls are independent; keep a few in flight for latency.
	scoreConcurrency = 4
)

// Service reranks candidates with an injected scoring strategy.
type Service struct {
	scorer domain.Scorer
	topK   int
	logger *zap.Logger
}

func NewService(sc domain.Scorer, topK int, logger *zap.Logger) *Service {
	if topK <= 0 {
		topK = defaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scorer: sc, topK: topK, logger: logger}
}

type scored struct {
	candidate domain.RetrievalCandidate
	score     float64
	ok        bool
}

// Rerank scores every candidate, sorts descending by score (stable, so ties
// keep candidate order), and returns the top K with contiguous 1-based
// ranks. A candidate whose scoring fails is dropped, not fatal.
func (s *Service) Rerank(ctx context.Context, query string, candidates []domain.RetrievalCandidate) ([]domain.RankedResult, error) {
	if len(candidates) > scorer.MaxCandidates {
		candidates = candidates[:scorer.MaxCandidates]
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := make([]scored, len(candidates))
	if batch, ok := s.scorer.(domain.BatchScorer); ok {
		documents := make([]string, len(candidates))
		for i, c := range candidates {
			documents[i] = c.Content
		}
		scores, err := batch.ScoreBatch(ctx, query, documents)
		if err != nil {
			// Degrade to zero results rather than failing the turn.
			s.logger.Warn("batch scoring failed, dropping all candidates", zap.Error(err))
			return nil, nil
		}
		if len(scores) != len(candidates) {
			s.logger.Warn("batch scorer returned wrong score count, dropping all candidates",
				zap.Int("candidates", len(candidates)),
				zap.Int("scores", len(scores)))
			return nil, nil
		}
		for i := range candidates {
			results[i] = scored{candidate: candidates[i], score: scores[i], ok: true}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(scoreConcurrency)
		for i := range candidates {
			i := i
			g.Go(func() error {
				score, err := s.scorer.Score(gctx, query, candidates[i].Content)
				if err != nil {
					s.logger.Warn("scoring candidate failed, dropping it", zap.Error(err))
					return nil
				}
				results[i] = scored{candidate: candidates[i], score: score, ok: true}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	kept := results[:0]
	for _, r := range results {
		if r.ok {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })
	if len(kept) > s.topK {
		kept = kept[:s.topK]
	}

	ranked := make([]domain.RankedResult, len(kept))
	for i, r := range kept {
		ranked[i] = domain.RankedResult{
			Rank:    i + 1,
			Content: r.candidate.Content,
			Score:   r.score,
		}
	}
	return ranked, nil
}
