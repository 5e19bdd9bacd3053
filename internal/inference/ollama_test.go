package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docchat/internal/domain"
)

func TestListInstalled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"qwen3:1.7b"},{"name":"exaone3.5:2.4b"}]}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	models, err := c.ListInstalled(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"qwen3:1.7b", "exaone3.5:2.4b"}, models)
}

func TestEnsureAvailable_AlreadyInstalled(t *testing.T) {
	pulls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"qwen3:1.7b"}]}`)
		case "/api/pull":
			pulls++
			fmt.Fprint(w, `{"status":"success"}`)
		}
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, c.EnsureAvailable(context.Background(), "qwen3:1.7b"))
	assert.Zero(t, pulls, "installed model must not be pulled again")
}

func TestEnsureAvailable_PullsMissingModel(t *testing.T) {
	var pulled string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[]}`)
		case "/api/pull":
			var req struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			pulled = req.Name
			fmt.Fprint(w, `{"status":"success"}`)
		}
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, c.EnsureAvailable(context.Background(), "mxbai-embed-large"))
	assert.Equal(t, "mxbai-embed-large", pulled)
}

func TestEnsureAvailable_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	err := c.EnsureAvailable(context.Background(), "qwen3:1.7b")

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestInvoke_GathersStreamedChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "exaone3.5:2.4b", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hello"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":" world"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	out, err := c.Invoke(context.Background(), "exaone3.5:2.4b", []domain.Message{
		{Role: domain.RoleUser, Content: "hi"},
	}, true)

	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		fmt.Fprint(w, `{"embedding":[0.1,0.2,0.3]}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	vec, err := c.Embed(context.Background(), "mxbai-embed-large", "some text")

	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
}

func TestEmbed_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[]}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(Config{BaseURL: srv.URL}, zap.NewNop())
	_, err := c.Embed(context.Background(), "mxbai-embed-large", "some text")

	assert.Error(t, err)
}
