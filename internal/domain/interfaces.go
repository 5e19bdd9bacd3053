package domain

import "context"

// Chunker splits raw document text into overlapping windows for indexing.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Inference is the opaque inference-service contract. Implementations are
// expected to block on each call; timeout and retry live behind this
// interface, not in the orchestrator.
type Inference interface {
	// ListInstalled returns the ids of the locally available models.
	ListInstalled(ctx context.Context) ([]string, error)

	// EnsureAvailable checks that a model is installed and fetches it if
	// not. Idempotent; may block while the model downloads.
	EnsureAvailable(ctx context.Context, model string) error

	// Invoke runs a chat completion and returns the full response content.
	// When stream is true the transport delivers incremental deltas that
	// are gathered before returning.
	Invoke(ctx context.Context, model string, messages []Message, stream bool) (string, error)

	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, model, text string) ([]float64, error)
}

// Retriever queries the vector index for candidates similar to the queries.
// A non-empty filename restricts the search to that document; if the
// filtered query yields nothing the retriever reissues it unfiltered once.
// Returned candidates have unique content.
type Retriever interface {
	Retrieve(ctx context.Context, queries []string, filename string, k int) ([]RetrievalCandidate, error)
}

// Scorer is the pluggable relevance-scoring strategy used by the reranker.
// Higher scores mean more relevant.
type Scorer interface {
	Score(ctx context.Context, query, document string) (float64, error)
}

// BatchScorer scores a whole candidate list in one call. Scorers that talk
// to a remote scoring endpoint implement it in addition to Scorer; the
// reranker prefers it when present. Implementations return exactly one
// score per document, in order.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, query string, documents []string) ([]float64, error)
}

// Reranker scores and truncates retrieval candidates to a top-K ordered
// result. Per-candidate scoring failures drop the candidate, they do not
// fail the operation.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []RetrievalCandidate) ([]RankedResult, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
