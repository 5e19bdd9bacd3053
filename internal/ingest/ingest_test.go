package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docchat/internal/chunker"
	"docchat/internal/domain"
)

type recordingCollection struct {
	ids       []string
	documents []string
	metadatas []map[string]any
	addErr    error
}

func (c *recordingCollection) Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) error {
	c.ids = ids
	c.documents = documents
	c.metadatas = metadatas
	return c.addErr
}

func (c *recordingCollection) Query(ctx context.Context, queries []string, k int, where map[string]string) ([]domain.RetrievalCandidate, error) {
	return nil, nil
}

type staticSummarizer struct{ out string }

func (s staticSummarizer) Summarize(text string, maxSentences int) (string, error) {
	return s.out, nil
}

func TestIngestDocument(t *testing.T) {
	coll := &recordingCollection{}
	p := NewPipeline(chunker.NewWindowChunker(5, 2), coll, staticSummarizer{out: "a summary"}, 3, zap.NewNop())

	res, err := p.IngestDocument(context.Background(), "ABCDEFGHIJKL", domain.DocumentMetadata{
		Filename: "doc.pdf",
		Source:   "upload",
		Category: "manual",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.ChunkCount)
	assert.NotEmpty(t, res.DocumentID)
	assert.Equal(t, "a summary", res.Summary)

	require.Len(t, coll.ids, 4)
	require.Len(t, coll.documents, 4)
	require.Len(t, coll.metadatas, 4)
	assert.Equal(t, res.DocumentID+"_0", coll.ids[0])
	assert.Equal(t, res.DocumentID+"_3", coll.ids[3])
	assert.Equal(t, "ABCDE", coll.documents[0])

	meta := coll.metadatas[1]
	assert.Equal(t, "doc.pdf", meta["filename"])
	assert.Equal(t, "upload", meta["source"])
	assert.Equal(t, "manual", meta["category"])
	assert.Equal(t, 1, meta["chunk_index"])
	assert.Equal(t, 3, meta["start_offset"])
	assert.Equal(t, 8, meta["end_offset"])
	assert.Equal(t, 4, meta["total_chunks"])
	assert.NotEmpty(t, meta["timestamp"])
}

func TestIngestDocument_EmptyText(t *testing.T) {
	coll := &recordingCollection{}
	p := NewPipeline(chunker.NewWindowChunker(5, 2), coll, nil, 3, zap.NewNop())

	_, err := p.IngestDocument(context.Background(), "", domain.DocumentMetadata{Filename: "empty.txt"})
	require.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Empty(t, coll.ids)
}

func TestIngestDocument_IndexError(t *testing.T) {
	coll := &recordingCollection{addErr: errors.New("index unavailable")}
	p := NewPipeline(chunker.NewWindowChunker(5, 2), coll, nil, 3, zap.NewNop())

	_, err := p.IngestDocument(context.Background(), "some text", domain.DocumentMetadata{Filename: "x"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "index unavailable"))
}

func TestIngestDocument_OptionalMetadataOmitted(t *testing.T) {
	coll := &recordingCollection{}
	p := NewPipeline(chunker.NewWindowChunker(100, 10), coll, nil, 3, zap.NewNop())

	_, err := p.IngestDocument(context.Background(), "short document", domain.DocumentMetadata{Filename: "f.txt"})
	require.NoError(t, err)

	meta := coll.metadatas[0]
	_, hasSource := meta["source"]
	_, hasAuthor := meta["author"]
	_, hasPages := meta["page_count"]
	assert.False(t, hasSource)
	assert.False(t, hasAuthor)
	assert.False(t, hasPages)
}
