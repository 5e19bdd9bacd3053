package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_OverlappingWindows(t *testing.T) {
	c := NewWindowChunker(5, 2)
	chunks := c.Chunk("ABCDEFGHIJKL")

	require.Len(t, chunks, 4)
	assert.Equal(t, "ABCDE", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 5, chunks[0].EndOffset)
	assert.Equal(t, "DEFGH", chunks[1].Text)
	assert.Equal(t, 3, chunks[1].StartOffset)
	assert.Equal(t, "GHIJK", chunks[2].Text)
	assert.Equal(t, 6, chunks[2].StartOffset)
	assert.Equal(t, "JKL", chunks[3].Text)
	assert.Equal(t, 9, chunks[3].StartOffset)
	assert.Equal(t, 12, chunks[3].EndOffset)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

func TestChunk_EmptyText(t *testing.T) {
	c := NewWindowChunker(1000, 200)
	assert.Empty(t, c.Chunk(""))
}

func TestChunk_ShorterThanWindow(t *testing.T) {
	c := NewWindowChunker(1000, 200)
	chunks := c.Chunk("short text")

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 10, chunks[0].EndOffset)
}

func TestChunk_FullCoverageNoGaps(t *testing.T) {
	text := ""
	for i := 0; i < 257; i++ {
		text += string(rune('a' + i%26))
	}
	c := NewWindowChunker(50, 10)
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	// Every non-final chunk spans exactly the window size and consecutive
	// starts advance by the stride.
	for i, ch := range chunks {
		if i < len(chunks)-1 {
			assert.Equal(t, 50, ch.EndOffset-ch.StartOffset)
			assert.Equal(t, ch.StartOffset+40, chunks[i+1].StartOffset)
			assert.GreaterOrEqual(t, ch.EndOffset, chunks[i+1].StartOffset, "no gap between chunks")
		}
	}
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len([]rune(text)), chunks[len(chunks)-1].EndOffset)
}

func TestChunk_MultibyteRuneOffsets(t *testing.T) {
	c := NewWindowChunker(4, 1)
	chunks := c.Chunk("가나다라마바")

	require.Len(t, chunks, 2)
	assert.Equal(t, "가나다라", chunks[0].Text)
	assert.Equal(t, "라마바", chunks[1].Text)
	assert.Equal(t, 3, chunks[1].StartOffset)
	assert.Equal(t, 6, chunks[1].EndOffset)
}

func TestNewWindowChunker_ClampsOverlap(t *testing.T) {
	c := NewWindowChunker(10, 10)
	chunks := c.Chunk("abcdefghijkl")
	// Stride must stay positive, otherwise chunking never terminates.
	require.NotEmpty(t, chunks)
	assert.Less(t, chunks[0].StartOffset, chunks[len(chunks)-1].EndOffset)
}
