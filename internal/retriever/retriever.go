// Package retriever queries the vector index with an optional metadata
// filter and graceful filter fallback.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/vectorstore"
)

const defaultCandidates = 10

// Service retrieves similarity candidates from one collection.
type Service struct {
	collection vectorstore.Collection
	logger     *zap.Logger
}

func NewService(collection vectorstore.Collection, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{collection: collection, logger: logger}
}

// Retrieve issues a similarity query for the given queries. A non-empty
// filename restricts the search to that document; when the filtered query
// returns zero candidates it is reissued exactly once without the filter.
// The index answers each query separately, so a chunk matching several
// queries comes back several times; the result is deduplicated by content,
// keeping the closest occurrence. Index errors are surfaced, never retried
// here.
func (s *Service) Retrieve(ctx context.Context, queries []string, filename string, k int) ([]domain.RetrievalCandidate, error) {
	if k <= 0 {
		k = defaultCandidates
	}
	var where map[string]string
	if filename != "" {
		where = map[string]string{"filename": filename}
	}

	candidates, err := s.collection.Query(ctx, queries, k, where)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	if filename != "" && len(candidates) == 0 {
		s.logger.Debug("filtered query empty, retrying without filter",
			zap.String("filename", filename))
		candidates, err = s.collection.Query(ctx, queries, k, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
		}
	}
	return dedupe(candidates), nil
}

// dedupe collapses candidates with identical content, keeping the one with
// the lowest distance. Candidate order is preserved otherwise.
func dedupe(candidates []domain.RetrievalCandidate) []domain.RetrievalCandidate {
	seen := make(map[string]int, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if i, ok := seen[c.Content]; ok {
			if c.Distance < out[i].Distance {
				out[i] = c
			}
			continue
		}
		seen[c.Content] = len(out)
		out = append(out, c)
	}
	return out
}
