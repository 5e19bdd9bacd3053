// Package chroma is a minimal REST client to ChromaDB.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/vectorstore"
)

// Index is a ChromaDB-backed vector index speaking the v1 HTTP API.
type Index struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

type Config struct {
	URL     string
	Timeout time.Duration
}

func NewIndex(cfg Config, logger *zap.Logger) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	url := cfg.URL
	if url == "" {
		url = "http://localhost:8000"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Heartbeat checks that the Chroma server is reachable.
func (x *Index) Heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.url+"/api/v1/heartbeat", nil)
	if err != nil {
		return err
	}
	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("chroma heartbeat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chroma heartbeat failed: %s", resp.Status)
	}
	return nil
}

// GetOrCreateCollection resolves the named collection, creating it with the
// given distance metric if it does not exist yet.
func (x *Index) GetOrCreateCollection(ctx context.Context, name, metric string, embed vectorstore.EmbedFunc) (vectorstore.Collection, error) {
	body := map[string]any{
		"name":          name,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": metric},
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := x.postJSON(ctx, "/api/v1/collections", body, &created); err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", name, err)
	}
	return &collection{index: x, id: created.ID, name: name, embed: embed}, nil
}

type collection struct {
	index *Index
	id    string
	name  string
	embed vectorstore.EmbedFunc
}

func (c *collection) Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("ids, documents and metadatas length mismatch")
	}
	embeddings := make([][]float64, len(documents))
	for i, doc := range documents {
		vec, err := c.embed(ctx, doc)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", ids[i], err)
		}
		embeddings[i] = vec
	}
	body := map[string]any{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
		"metadatas":  metadatas,
	}
	path := fmt.Sprintf("/api/v1/collections/%s/add", c.id)
	return c.index.postJSON(ctx, path, body, nil)
}

func (c *collection) Query(ctx context.Context, queries []string, k int, where map[string]string) ([]domain.RetrievalCandidate, error) {
	if k <= 0 {
		k = 10
	}
	embeddings := make([][]float64, len(queries))
	for i, q := range queries {
		vec, err := c.embed(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		embeddings[i] = vec
	}
	body := map[string]any{
		"query_embeddings": embeddings,
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	if len(where) > 0 {
		body["where"] = where
	}

	// Chroma returns parallel arrays, one row per query embedding.
	var out struct {
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", c.id)
	if err := c.index.postJSON(ctx, path, body, &out); err != nil {
		return nil, err
	}

	var candidates []domain.RetrievalCandidate
	for row := range out.Documents {
		for i, doc := range out.Documents[row] {
			cand := domain.RetrievalCandidate{Content: doc}
			if row < len(out.Metadatas) && i < len(out.Metadatas[row]) {
				cand.Metadata = out.Metadatas[row][i]
			}
			if row < len(out.Distances) && i < len(out.Distances[row]) {
				cand.Distance = out.Distances[row][i]
			}
			candidates = append(candidates, cand)
		}
	}
	return candidates, nil
}

func (x *Index) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.url+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma POST %s failed: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
