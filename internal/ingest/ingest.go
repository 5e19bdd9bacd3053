// Package ingest turns raw document text into indexed chunks.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/vectorstore"
)

// Result reports what a single ingestion produced.
type Result struct {
	DocumentID string `json:"documentId"`
	ChunkCount int    `json:"chunkCount"`
	Summary    string `json:"summary"`
}

// Pipeline chunks a document, attaches metadata to every chunk, and stores
// the batch in the vector index.
type Pipeline struct {
	chunker      domain.Chunker
	collection   vectorstore.Collection
	summarizer   domain.Summarizer
	maxSentences int
	logger       *zap.Logger
}

func NewPipeline(chunker domain.Chunker, collection vectorstore.Collection, summarizer domain.Summarizer, maxSentences int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		chunker:      chunker,
		collection:   collection,
		summarizer:   summarizer,
		maxSentences: maxSentences,
		logger:       logger,
	}
}

// IngestDocument chunks text, indexes every chunk with its document metadata,
// and returns the document id, chunk count, and a short extractive summary.
// Text that yields no chunks is rejected with ErrEmptyDocument.
func (p *Pipeline) IngestDocument(ctx context.Context, text string, meta domain.DocumentMetadata) (Result, error) {
	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrEmptyDocument, meta.Filename)
	}

	docID := uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.TotalChunks = len(chunks)

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		ids[i] = fmt.Sprintf("%s_%d", docID, chunk.Index)
		documents[i] = chunk.Text
		metadatas[i] = chunkMetadata(chunk, meta)
	}

	if err := p.collection.Add(ctx, ids, documents, metadatas); err != nil {
		return Result{}, fmt.Errorf("indexing %q: %w", meta.Filename, err)
	}

	summary := ""
	if p.summarizer != nil {
		s, err := p.summarizer.Summarize(text, p.maxSentences)
		if err != nil {
			p.logger.Warn("summarizing document failed", zap.Error(err))
		} else {
			summary = s
		}
	}

	p.logger.Info("document ingested",
		zap.String("document_id", docID),
		zap.String("filename", meta.Filename),
		zap.Int("chunks", len(chunks)))

	return Result{DocumentID: docID, ChunkCount: len(chunks), Summary: summary}, nil
}

func chunkMetadata(chunk domain.Chunk, meta domain.DocumentMetadata) map[string]any {
	m := map[string]any{
		"filename":     meta.Filename,
		"chunk_index":  chunk.Index,
		"start_offset": chunk.StartOffset,
		"end_offset":   chunk.EndOffset,
		"total_chunks": meta.TotalChunks,
		"timestamp":    meta.Timestamp.Format(time.RFC3339),
	}
	if meta.Source != "" {
		m["source"] = meta.Source
	}
	if meta.Category != "" {
		m["category"] = meta.Category
	}
	if meta.PageCount > 0 {
		m["page_count"] = meta.PageCount
	}
	if meta.Author != "" {
		m["author"] = meta.Author
	}
	if meta.Title != "" {
		m["title"] = meta.Title
	}
	return m
}
