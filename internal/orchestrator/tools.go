package orchestrator

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// ToolRunner executes the pending tool requests of a turn. Failures never
// escape: a failed search becomes a search_error message and the turn goes
// on to the response stage.
type ToolRunner struct {
	retriever  domain.Retriever
	reranker   domain.Reranker
	candidates int
	logger     *zap.Logger
}

func NewToolRunner(retriever domain.Retriever, reranker domain.Reranker, candidates int, logger *zap.Logger) *ToolRunner {
	if candidates <= 0 {
		candidates = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolRunner{retriever: retriever, reranker: reranker, candidates: candidates, logger: logger}
}

// searchPayload is the serialized body of a search_results message.
type searchPayload struct {
	Query      []string           `json:"query"`
	Results    []searchResultItem `json:"results"`
	TotalFound int                `json:"totalFound"`
}

type searchResultItem struct {
	ID       int            `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Run executes every pending request and clears the pending list regardless
// of outcome. Unrecognized tool names and malformed arguments are no-ops.
func (t *ToolRunner) Run(ctx context.Context, state *domain.ConversationState) {
	defer func() { state.PendingTools = nil }()

	for _, req := range state.PendingTools {
		if req.Name != domain.ToolDocumentSearch {
			t.logger.Warn("ignoring unrecognized tool request", zap.String("name", req.Name))
			continue
		}
		args, err := domain.DecodeSearchArgs(req.Args)
		if err != nil {
			t.logger.Warn("skipping malformed tool request", zap.Error(err))
			continue
		}
		payload, err := t.search(ctx, args)
		if err != nil {
			t.logger.Warn("document search failed", zap.Error(err))
			state.Append(domain.Message{
				Role:    domain.RoleAssistant,
				Content: "Document search failed.",
				Tag:     domain.TagSearchError,
			})
			continue
		}
		state.Append(domain.Message{
			Role:    domain.RoleAssistant,
			Content: payload,
			Tag:     domain.TagSearchResults,
		})
	}
}

func (t *ToolRunner) search(ctx context.Context, args domain.SearchArgs) (string, error) {
	candidates, err := t.retriever.Retrieve(ctx, args.Query, args.Filename, t.candidates)
	if err != nil {
		return "", err
	}

	payload := searchPayload{Query: args.Query, Results: []searchResultItem{}}
	if len(candidates) > 0 {
		ranked, err := t.reranker.Rerank(ctx, args.Query[0], candidates)
		if err != nil {
			return "", err
		}
		limit := len(ranked)
		if args.Limit > 0 && args.Limit < limit {
			limit = args.Limit
		}
		for _, r := range ranked[:limit] {
			payload.Results = append(payload.Results, searchResultItem{
				ID:       r.Rank,
				Content:  r.Content,
				Metadata: metadataFor(candidates, r.Content),
				Score:    r.Score,
			})
		}
	}
	payload.TotalFound = len(payload.Results)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// metadataFor recovers the metadata of a ranked result by locating the
// original candidate with the same content.
func metadataFor(candidates []domain.RetrievalCandidate, content string) map[string]any {
	for _, c := range candidates {
		if c.Content == content {
			return c.Metadata
		}
	}
	return map[string]any{}
}
