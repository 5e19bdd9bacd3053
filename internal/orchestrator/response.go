package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// Responder is the response stage: it composes the synthesis prompt, with
// or without retrieved context, and invokes the chat model once.
type Responder struct {
	llm      domain.Inference
	model    string
	language string
	logger   *zap.Logger
}

func NewResponder(llm domain.Inference, model, language string, logger *zap.Logger) *Responder {
	if language == "" {
		language = "the user's language"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{llm: llm, model: model, language: language, logger: logger}
}

// Respond builds the final prompt from the latest user message and, when
// present, the latest search results, then returns the model's answer as an
// untagged assistant message. Errors here propagate: there is no fallback
// answer-generation path.
func (r *Responder) Respond(ctx context.Context, state *domain.ConversationState) (domain.Message, error) {
	userInput := ""
	if msg, ok := state.LastUser(); ok {
		userInput = msg.Content
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Answer the user helpfully and accurately in %s.\n\n", r.language)
	fmt.Fprintf(&prompt, "User message: %s", userInput)

	if results, ok := state.LastTagged(domain.TagSearchResults); ok {
		prompt.WriteString("\n\nDocument search results:\n")
		prompt.WriteString(results.Content)
		prompt.WriteString("\n\nGround your answer in the search results above. ")
		prompt.WriteString("If the results are empty or irrelevant, say so explicitly and answer as best you can.")
	} else {
		prompt.WriteString("\n\nNo document search was needed for this message. ")
		prompt.WriteString("Respond as ordinary conversation and do not invent citations.")
	}

	content, err := r.llm.Invoke(ctx, r.model, []domain.Message{
		{Role: domain.RoleUser, Content: prompt.String()},
	}, false)
	if err != nil {
		return domain.Message{}, fmt.Errorf("generating response: %w", err)
	}
	return domain.Message{Role: domain.RoleAssistant, Content: content}, nil
}
