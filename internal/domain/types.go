package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message tags marking the provenance of tool-produced messages.
const (
	TagSearchResults = "search_results"
	TagSearchError   = "search_error"
)

// Message is a single entry in a conversation log. It is immutable once
// appended to a ConversationState.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Tag     string `json:"tag,omitempty"`
}

// Chunk is a bounded contiguous substring of a source document with its
// character offsets. Offsets are rune positions in the source text.
type Chunk struct {
	Text        string
	StartOffset int
	EndOffset   int
	Index       int
	DocumentID  string
}

// DocumentMetadata describes the document a chunk was derived from. It is
// attached to every chunk stored in the vector index.
type DocumentMetadata struct {
	Filename    string
	Source      string
	Category    string
	PageCount   int
	Author      string
	Title       string
	TotalChunks int
	Timestamp   time.Time
}

// RetrievalCandidate is a chunk returned by the vector index, not yet
// reranked. Distance is the index's similarity metric: lower is more similar.
type RetrievalCandidate struct {
	Content  string
	Metadata map[string]any
	Distance float64
}

// RankedResult is a reranked candidate. Ranks are contiguous starting at 1;
// Score is the reranker's relevance signal, higher is more relevant.
type RankedResult struct {
	Rank    int     `json:"rank"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
