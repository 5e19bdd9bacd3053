// Package memory is an in-process vector index using brute-force cosine
// distance. It backs tests and offline runs where no Chroma server exists.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"docchat/internal/domain"
	"docchat/internal/vectorstore"
)

type Index struct {
	mu          sync.Mutex
	collections map[string]*collection
}

func NewIndex() *Index {
	return &Index{collections: make(map[string]*collection)}
}

func (x *Index) GetOrCreateCollection(_ context.Context, name, metric string, embed vectorstore.EmbedFunc) (vectorstore.Collection, error) {
	if metric != vectorstore.DistanceCosine {
		return nil, fmt.Errorf("unsupported distance metric %q", metric)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if col, ok := x.collections[name]; ok {
		col.embed = embed
		return col, nil
	}
	col := &collection{embed: embed}
	x.collections[name] = col
	return col, nil
}

type record struct {
	id       string
	document string
	metadata map[string]any
	vector   []float64
}

type collection struct {
	mu      sync.RWMutex
	embed   vectorstore.EmbedFunc
	records []record
}

func (c *collection) Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return errors.New("ids, documents and metadatas length mismatch")
	}
	vectors := make([][]float64, len(documents))
	for i, doc := range documents {
		vec, err := c.embed(ctx, doc)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", ids[i], err)
		}
		vectors[i] = vec
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range ids {
		c.records = append(c.records, record{
			id:       ids[i],
			document: documents[i],
			metadata: metadatas[i],
			vector:   vectors[i],
		})
	}
	return nil
}

func (c *collection) Query(ctx context.Context, queries []string, k int, where map[string]string) ([]domain.RetrievalCandidate, error) {
	if k <= 0 {
		k = 10
	}
	var out []domain.RetrievalCandidate
	for _, q := range queries {
		vec, err := c.embed(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		out = append(out, c.search(vec, k, where)...)
	}
	return out, nil
}

func (c *collection) search(query []float64, k int, where map[string]string) []domain.RetrievalCandidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []domain.RetrievalCandidate
	for _, rec := range c.records {
		if !metadataMatches(rec.metadata, where) {
			continue
		}
		matches = append(matches, domain.RetrievalCandidate{
			Content:  rec.document,
			Metadata: rec.metadata,
			Distance: cosineDistance(query, rec.vector),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

func metadataMatches(metadata map[string]any, where map[string]string) bool {
	for key, want := range where {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if s, ok := got.(string); !ok || s != want {
			return false
		}
	}
	return true
}

// cosineDistance is 1 - cosine similarity, so lower means more similar.
func cosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
