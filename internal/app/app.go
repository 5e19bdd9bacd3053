// Package app assembles the application from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/inference"
	"docchat/internal/ingest"
	"docchat/internal/orchestrator"
	"docchat/internal/reranker"
	"docchat/internal/retriever"
	"docchat/internal/scorer"
	"docchat/internal/service"
	"docchat/internal/session"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore"
	"docchat/internal/vectorstore/chroma"
	"docchat/internal/vectorstore/memory"
)

const systemPrompt = "You are a helpful assistant that answers questions about the user's documents."

// App holds the assembled top-level components.
type App struct {
	Chat   *service.ChatService
	Ingest *ingest.Pipeline
}

// Build wires every component from the config. The context bounds the
// initial collection handshake with the vector store.
func Build(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	llm := inference.NewOllamaClient(inference.Config{
		BaseURL: cfg.Ollama.URL,
		Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	}, logger)

	var index vectorstore.Index
	switch cfg.VectorStore.Type {
	case "chroma", "":
		if cfg.VectorStore.Chroma == nil {
			return nil, fmt.Errorf("chroma config missing")
		}
		chromaIndex := chroma.NewIndex(chroma.Config{
			URL:     cfg.VectorStore.Chroma.URL,
			Timeout: time.Duration(cfg.VectorStore.Chroma.TimeoutSecs) * time.Second,
		}, logger)
		if err := chromaIndex.Heartbeat(ctx); err != nil {
			return nil, fmt.Errorf("chroma unreachable at %s: %w", cfg.VectorStore.Chroma.URL, err)
		}
		index = chromaIndex
	case "memory":
		index = memory.NewIndex()
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	embeddingModel := cfg.Models.Embedding
	embed := func(ctx context.Context, text string) ([]float64, error) {
		return llm.Embed(ctx, embeddingModel, text)
	}
	collectionName := "pdfs"
	if cfg.VectorStore.Chroma != nil && cfg.VectorStore.Chroma.Collection != "" {
		collectionName = cfg.VectorStore.Chroma.Collection
	}
	collection, err := index.GetOrCreateCollection(ctx, collectionName, vectorstore.DistanceCosine, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collectionName, err)
	}

	var sc domain.Scorer
	switch cfg.Scorer.Type {
	case "embedding", "":
		sc = scorer.NewEmbeddingScorer(llm, cfg.Models.Reranker)
	case "remote":
		if cfg.Scorer.Remote == nil {
			return nil, fmt.Errorf("remote scorer config missing")
		}
		sc = scorer.NewRemoteScorer(scorer.RemoteConfig{
			Endpoint: cfg.Scorer.Remote.Endpoint,
			Timeout:  time.Duration(cfg.Scorer.Remote.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown scorer: %s", cfg.Scorer.Type)
	}

	orch := orchestrator.New(
		orchestrator.NewClassifier(llm, cfg.Models.Decision, logger),
		orchestrator.NewToolRunner(
			retriever.NewService(collection, logger),
			reranker.NewService(sc, cfg.Retrieval.TopK, logger),
			cfg.Retrieval.Candidates,
			logger,
		),
		orchestrator.NewResponder(llm, cfg.Models.Chat, cfg.Models.Language, logger),
		logger,
	)

	chat := service.NewChatService(orch, session.NewStore(systemPrompt), llm, service.Models{
		Decision:  cfg.Models.Decision,
		Chat:      cfg.Models.Chat,
		Embedding: cfg.Models.Embedding,
		Reranker:  cfg.Models.Reranker,
	}, logger)

	pipeline := ingest.NewPipeline(
		chunker.NewWindowChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
		collection,
		summarizer.NewFrequencySummarizer(),
		cfg.Summary.MaxSentences,
		logger,
	)

	return &App{Chat: chat, Ingest: pipeline}, nil
}
