package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docchat/internal/chunker"
	"docchat/internal/domain"
	"docchat/internal/ingest"
	"docchat/internal/service"
	"docchat/internal/session"
)

type stubInference struct{}

func (stubInference) ListInstalled(ctx context.Context) ([]string, error)     { return nil, nil }
func (stubInference) EnsureAvailable(ctx context.Context, model string) error { return nil }
func (stubInference) Invoke(ctx context.Context, model string, messages []domain.Message, stream bool) (string, error) {
	return "", nil
}
func (stubInference) Embed(ctx context.Context, model, text string) ([]float64, error) {
	return []float64{1}, nil
}

type stubRunner struct{ reply string }

func (r stubRunner) RunTurn(ctx context.Context, state *domain.ConversationState) error {
	state.Append(domain.Message{Role: domain.RoleAssistant, Content: r.reply})
	return nil
}

type nullCollection struct{ added int }

func (c *nullCollection) Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) error {
	c.added += len(ids)
	return nil
}
func (c *nullCollection) Query(ctx context.Context, queries []string, k int, where map[string]string) ([]domain.RetrievalCandidate, error) {
	return nil, nil
}

func newTestServer(reply string) (*Server, *nullCollection) {
	store := session.NewStore("sys")
	chat := service.NewChatService(stubRunner{reply: reply}, store, stubInference{}, service.Models{}, zap.NewNop())
	coll := &nullCollection{}
	pipeline := ingest.NewPipeline(chunker.NewWindowChunker(1000, 200), coll, nil, 3, zap.NewNop())
	return NewServer(chat, pipeline, zap.NewNop()), coll
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := newTestServer("hello back")
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/chat", `{"sessionId":"s1","userInput":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AIResponse string `json:"aiResponse"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello back", resp.AIResponse)
}

func TestChatEndpoint_DefaultSession(t *testing.T) {
	srv, _ := newTestServer("ok")
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/chat", `{"userInput":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		SessionID string           `json:"sessionId"`
		Messages  []domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, "default", history.SessionID)
	assert.Len(t, history.Messages, 3)
}

func TestChatEndpoint_BadBody(t *testing.T) {
	srv, _ := newTestServer("ok")
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetEndpoint(t *testing.T) {
	srv, _ := newTestServer("ok")
	router := srv.Router()

	doJSON(t, router, http.MethodPost, "/api/chat", `{"sessionId":"s1","userInput":"hi"}`)

	rec := doJSON(t, router, http.MethodDelete, "/api/chat?sessionId=s1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/chat?sessionId=s1", "")
	var history struct {
		Messages []domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.Messages, 1)
}

func TestModelsEndpoint(t *testing.T) {
	srv, _ := newTestServer("ok")
	rec := doJSON(t, srv.Router(), http.MethodPut, "/api/models", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestEndpoint(t *testing.T) {
	srv, coll := newTestServer("ok")
	router := srv.Router()

	body := `{"text":"Some document text to index.","filename":"doc.pdf","source":"upload","category":"report"}`
	rec := doJSON(t, router, http.MethodPost, "/api/documents", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DocumentID string `json:"documentId"`
		ChunkCount int    `json:"chunkCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, 1, resp.ChunkCount)
	assert.Equal(t, 1, coll.added)
}

func TestIngestEndpoint_Validation(t *testing.T) {
	srv, _ := newTestServer("ok")
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/documents", `{"text":"body without filename"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/documents", `{"text":"","filename":"empty.txt"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty")
}
