// Package service exposes the chat and ingestion operations consumed by the
// HTTP API and the terminal UI.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/session"
)

// goodbyeResponse is returned for empty input and the exit command. No model
// is consulted for it.
const goodbyeResponse = "Goodbye! Feel free to come back when you have more questions."

// TurnRunner drives one conversation turn against the given state.
type TurnRunner interface {
	RunTurn(ctx context.Context, state *domain.ConversationState) error
}

// Models names the model for each role the service uses.
type Models struct {
	Decision  string
	Chat      string
	Embedding string
	Reranker  string
}

// ChatService owns session state and turn execution.
type ChatService struct {
	orch     TurnRunner
	sessions *session.Store
	llm      domain.Inference
	models   Models
	logger   *zap.Logger
}

func NewChatService(orch TurnRunner, sessions *session.Store, llm domain.Inference, models Models, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{orch: orch, sessions: sessions, llm: llm, models: models, logger: logger}
}

// EnsureModelsReady verifies every configured model is installed, pulling
// missing ones. Blocks until all are available or one fails.
func (s *ChatService) EnsureModelsReady(ctx context.Context) error {
	for _, model := range []string{s.models.Decision, s.models.Chat, s.models.Embedding, s.models.Reranker} {
		if model == "" {
			continue
		}
		if err := s.llm.EnsureAvailable(ctx, model); err != nil {
			return fmt.Errorf("ensuring model %q: %w", model, err)
		}
	}
	return nil
}

// ProcessTurn runs one conversation turn for the session and returns the
// assistant's answer. Empty input and the exit command short-circuit to a
// fixed goodbye without touching any model or the session log.
func (s *ChatService) ProcessTurn(ctx context.Context, sessionID, userInput string) (string, error) {
	trimmed := strings.TrimSpace(userInput)
	if trimmed == "" || trimmed == "exit" {
		return goodbyeResponse, nil
	}

	var answer string
	err := s.sessions.WithSession(sessionID, func(state *domain.ConversationState) error {
		state.Append(domain.Message{Role: domain.RoleUser, Content: trimmed})
		if err := s.orch.RunTurn(ctx, state); err != nil {
			return err
		}
		reply, ok := state.LastAssistantReply()
		if !ok {
			return fmt.Errorf("turn produced no assistant reply")
		}
		answer = reply.Content
		return nil
	})
	if err != nil {
		s.logger.Error("turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return "", err
	}
	return answer, nil
}

// Reset discards the session's conversation, keeping only the system prompt.
func (s *ChatService) Reset(sessionID string) {
	s.sessions.Reset(sessionID)
}

// History returns the session's message log.
func (s *ChatService) History(sessionID string) []domain.Message {
	return s.sessions.History(sessionID)
}
