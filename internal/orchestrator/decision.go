package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// Classifier is the decision stage: it asks a lightweight model whether the
// current turn needs document retrieval.
type Classifier struct {
	llm    domain.Inference
	model  string
	logger *zap.Logger
}

func NewClassifier(llm domain.Inference, model string, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{llm: llm, model: model, logger: logger}
}

const decisionInstruction = `Analyze the user's message and decide whether a document search is needed to answer it.

User message: %s

Document search is NOT needed (NO) for:
- simple greetings ("hello", "thanks", "goodbye")
- expressions of emotion ("great", "that's funny")
- system commands ("help", "exit", "reset")

Document search IS needed (YES) for:
- most other cases, including any factual question.

When in doubt, try the document search (YES).

Respond with exactly one of:
- "YES"
- "NO"

Answer:`

// Decide classifies the most recent user message. It runs only when the
// turn has not been classified yet, and marking the turn classified is its
// one unconditional side effect: that guard is what bounds the
// orchestrator's loop. Retrieval is requested iff the normalized response
// ends with "YES"; anything else means no retrieval.
func (c *Classifier) Decide(ctx context.Context, state *domain.ConversationState) error {
	if state.DecisionMade {
		return nil
	}
	state.DecisionMade = true

	userInput := ""
	if msg, ok := state.LastUser(); ok {
		userInput = msg.Content
	}

	raw, err := c.llm.Invoke(ctx, c.model, []domain.Message{
		{Role: domain.RoleUser, Content: fmt.Sprintf(decisionInstruction, userInput)},
	}, false)
	if err != nil {
		return fmt.Errorf("classifying turn: %w", err)
	}

	decision := strings.ToUpper(strings.TrimSpace(raw))
	needsSearch := strings.HasSuffix(decision, "YES")
	c.logger.Debug("retrieval decision",
		zap.String("decision", decision),
		zap.Bool("needs_search", needsSearch))

	if needsSearch {
		state.PendingTools = append(state.PendingTools, domain.NewDocumentSearchRequest(userInput))
	}
	return nil
}
