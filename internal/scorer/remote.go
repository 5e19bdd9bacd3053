package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteScorer delegates scoring to a reranker endpoint and returns its
// scores verbatim. The endpoint accepts the query with the full candidate
// list, capped at MaxCandidates.
type RemoteScorer struct {
	endpoint   string
	httpClient *http.Client
}

// RemoteConfig configures the remote scorer.
type RemoteConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewRemoteScorer(cfg RemoteConfig) *RemoteScorer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RemoteScorer{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Score scores a single pair through the batch endpoint.
func (s *RemoteScorer) Score(ctx context.Context, query, document string) (float64, error) {
	scores, err := s.ScoreBatch(ctx, query, []string{document})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// ScoreBatch forwards the query and candidate documents to the endpoint and
// returns one score per document, in order.
func (s *RemoteScorer) ScoreBatch(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) > MaxCandidates {
		documents = documents[:MaxCandidates]
	}
	body, err := json.Marshal(rerankRequest{Query: query, Documents: documents})
	if err != nil {
		return nil, fmt.Errorf("marshaling rerank request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling reranker endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reranker endpoint error (status %d): %s", resp.StatusCode, msg)
	}
	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}
	if len(out.Scores) != len(documents) {
		return nil, fmt.Errorf("reranker returned %d scores for %d documents", len(out.Scores), len(documents))
	}
	return out.Scores, nil
}
