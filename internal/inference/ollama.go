// Package inference provides the Ollama-backed inference service adapter.
package inference

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// OllamaClient talks to a local Ollama server over its REST API.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config configures the Ollama client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewOllamaClient(cfg Config, logger *zap.Logger) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Timeout == 0 {
		// Model pulls and long generations need a generous timeout.
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListInstalled returns the names of the locally installed models.
func (c *OllamaClient) ListInstalled(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, body)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}
	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

// EnsureAvailable checks whether the model is installed and pulls it if not.
// Idempotent; a pull of an installed model is skipped entirely.
func (c *OllamaClient) EnsureAvailable(ctx context.Context, model string) error {
	installed, err := c.ListInstalled(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	for _, name := range installed {
		if name == model {
			return nil
		}
	}

	c.logger.Info("pulling model", zap.String("model", model))
	body, _ := json.Marshal(pullRequest{Name: model, Stream: false})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pulling %s: %v", domain.ErrModelUnavailable, model, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: pulling %s (status %d): %s", domain.ErrModelUnavailable, model, resp.StatusCode, msg)
	}
	c.logger.Info("model ready", zap.String("model", model))
	return nil
}

// Invoke runs a chat completion. Ollama streams line-delimited JSON chunks;
// they are gathered into the full response before returning.
func (c *OllamaClient) Invoke(ctx context.Context, model string, messages []domain.Message, stream bool) (string, error) {
	chatMsgs := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMsgs[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}
	body, err := json.Marshal(chatRequest{Model: model, Messages: chatMsgs, Stream: stream})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, msg)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk chatResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("parsing response chunk: %w", err)
		}
		full.WriteString(chunk.Message.Content)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading response stream: %w", err)
	}
	return full.String(), nil
}

// Embed returns an embedding vector for the given text.
func (c *OllamaClient) Embed(ctx context.Context, model, text string) ([]float64, error) {
	body, _ := json.Marshal(embeddingRequest{Model: model, Prompt: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, msg)
	}
	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return out.Embedding, nil
}
