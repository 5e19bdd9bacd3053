package chunker

import "docchat/internal/domain"

const (
	defaultChunkSize = 1000
	defaultOverlap   = 200
)

// WindowChunker splits text into fixed-size character windows with overlap.
// Offsets are rune positions so multi-byte text windows stay aligned.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

func NewWindowChunker(chunkSize, overlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &WindowChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk emits windows of [offset, offset+chunkSize) advancing by
// chunkSize-overlap until the text is covered. The final chunk is shorter
// whenever the text length is not an exact multiple of the stride. Empty
// text yields zero chunks.
func (c *WindowChunker) Chunk(text string) []domain.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	stride := c.chunkSize - c.overlap
	var chunks []domain.Chunk
	for offset, idx := 0, 0; offset < len(runes); offset, idx = offset+stride, idx+1 {
		end := offset + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			Text:        string(runes[offset:end]),
			StartOffset: offset,
			EndOffset:   end,
			Index:       idx,
		})
	}
	return chunks
}
